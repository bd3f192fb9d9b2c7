package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// utf8BOM is the byte order mark some Windows editors prepend.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileReader loads the full text of an import source.
type FileReader interface {
	ReadAllText(ctx context.Context, path string) (string, error)
}

// OSFileReader reads import files from the local filesystem.
// A missing file yields the *fs.PathError from os.Open unchanged.
type OSFileReader struct {
	// MaxSize limits the file size in bytes. Zero means no limit.
	MaxSize int64
}

// ReadAllText implements FileReader.
func (r OSFileReader) ReadAllText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return ReadText(f, r.MaxSize)
}

// StaticReader serves content already held in memory, e.g. an HTTP upload.
// The path argument is ignored.
type StaticReader struct {
	Content []byte
	MaxSize int64
}

// ReadAllText implements FileReader.
func (r StaticReader) ReadAllText(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return ReadText(bytes.NewReader(r.Content), r.MaxSize)
}

// ReadText reads src up to maxSize bytes, drops a leading UTF-8 BOM and
// replaces invalid UTF-8 with U+FFFD.
func ReadText(src io.Reader, maxSize int64) (string, error) {
	if maxSize > 0 {
		src = io.LimitReader(src, maxSize+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read import file: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, maxSize)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return string(sanitizeUTF8(data)), nil
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
		} else {
			buf.Write(data[:size])
		}
		data = data[size:]
	}

	return buf.Bytes()
}
