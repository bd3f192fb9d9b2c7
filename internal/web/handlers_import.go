package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/JonMunkholm/lineimport/internal/logging"
	"github.com/JonMunkholm/lineimport/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// handleImport runs one import from the request body.
//
// The file is either the raw body or the multipart field "file".
// ?dry_run=true validates and rolls back.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	def, ok := core.Get(format)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", core.ErrUnknownFormat, format), http.StatusNotFound)
		return
	}

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	content, source, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	env := s.env
	env.Reader = core.StaticReader{Content: content, MaxSize: s.cfg.Import.MaxFileSize}
	env.Logger = logging.WithFields(ctx, "upload_bytes", len(content))

	n, err := def.NewRunner(env).ImportFrom(ctx, source, dryRun)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	summary := templates.ImportSummary{Format: format, Source: source, DryRun: dryRun, Records: n}
	if wantsHTML(r) {
		s.render(w, r, templates.ImportResult(summary))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// readUpload returns the uploaded file and a name for it. Files larger
// than the configured limit fail with core.ErrFileTooLarge.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	maxSize := s.cfg.Import.MaxFileSize
	source := "request body"

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		// Leave room for the multipart framing around the file.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
		if err := r.ParseMultipartForm(maxSize); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return nil, "", fmt.Errorf("%w: exceeds %d bytes", core.ErrFileTooLarge, maxSize)
			}
			return nil, "", fmt.Errorf("%w: %v", errNoContent, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", errNoContent
		}
		defer file.Close()
		body = file
		source = header.Filename
	}

	data, err := io.ReadAll(io.LimitReader(body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", fmt.Errorf("%w: exceeds %d bytes", core.ErrFileTooLarge, maxSize)
	}
	if len(data) == 0 {
		return nil, "", errNoContent
	}
	return data, source, nil
}

// handleListFormats lists the registered import formats.
func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	infos := make([]core.FormatInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}

	if wantsHTML(r) {
		s.render(w, r, templates.FormatList(infos))
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleListRuns lists recent import runs. ?limit= caps the result.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.catalog.ListRuns(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if wantsHTML(r) {
		s.render(w, r, templates.RunTable(runs))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
