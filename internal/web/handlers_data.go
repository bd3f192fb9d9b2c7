package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/a-h/templ"
)

// listHandler serves the result of list as JSON.
func listHandler[T any](s *Server, list func(ctx context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	listHandler(s, s.catalog.ListTodos)(w, r)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	listHandler(s, s.catalog.ListEmployees)(w, r)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	listHandler(s, s.catalog.ListProjects)(w, r)
}

func (s *Server) handleListGiftCategories(w http.ResponseWriter, r *http.Request) {
	listHandler(s, s.catalog.ListGiftCategories)(w, r)
}

func (s *Server) handleListWishlists(w http.ResponseWriter, r *http.Request) {
	listHandler(s, s.catalog.ListWishlists)(w, r)
}

// handleListTimeEntries supports ?employeeId= and ?projectId= filters.
func (s *Server) handleListTimeEntries(w http.ResponseWriter, r *http.Request) {
	var filter core.TimeEntryFilter
	var err error
	if filter.EmployeeID, err = parseIDParam(r, "employeeId"); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Message: err.Error(), Code: "REQ001"})
		return
	}
	if filter.ProjectID, err = parseIDParam(r, "projectId"); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Message: err.Error(), Code: "REQ001"})
		return
	}

	listHandler(s, func(ctx context.Context) ([]*core.TimeEntry, error) {
		return s.catalog.ListTimeEntries(ctx, filter)
	})(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Imports: s.limiter.Status(), Time: time.Now().UTC()}
	code := http.StatusOK
	if err := s.catalog.Ping(ctx); err != nil {
		status.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// render writes an HTML fragment.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseIDParam parses an optional positive id query parameter; absent is zero.
func parseIDParam(r *http.Request, name string) (int64, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: %q", name, val)
	}
	return id, nil
}
