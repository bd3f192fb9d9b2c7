package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/lineimport/internal/config"
	"github.com/JonMunkholm/lineimport/internal/core"
)

// =============================================================================
// Test doubles
// =============================================================================

type fakeCatalog struct {
	mu       sync.Mutex
	todos    []*core.TodoItem
	entries  []*core.TimeEntry
	filter   core.TimeEntryFilter
	runs     []core.ImportRun
	pingErr  error
	listErr  error
	runLimit int
}

func (c *fakeCatalog) Ping(context.Context) error { return c.pingErr }

func (c *fakeCatalog) ListTodos(context.Context) ([]*core.TodoItem, error) {
	return c.todos, c.listErr
}

func (c *fakeCatalog) ListEmployees(context.Context) ([]*core.Employee, error) {
	return nil, c.listErr
}

func (c *fakeCatalog) ListProjects(context.Context) ([]*core.Project, error) {
	return []*core.Project{{ID: 1, Code: "PROJ1"}}, c.listErr
}

func (c *fakeCatalog) ListTimeEntries(_ context.Context, f core.TimeEntryFilter) ([]*core.TimeEntry, error) {
	c.filter = f
	return c.entries, c.listErr
}

func (c *fakeCatalog) ListGiftCategories(context.Context) ([]*core.GiftCategory, error) {
	return nil, c.listErr
}

func (c *fakeCatalog) ListWishlists(context.Context) ([]*core.Wishlist, error) {
	return nil, c.listErr
}

func (c *fakeCatalog) ListRuns(_ context.Context, limit int) ([]core.ImportRun, error) {
	c.runLimit = limit
	return c.runs, c.listErr
}

func (c *fakeCatalog) RecordRun(_ context.Context, run core.ImportRun) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, run)
	return nil
}

// todoStore is an in-memory todo writer.
type todoStore struct {
	mu      sync.Mutex
	open    bool
	pending []*core.TodoItem
	saved   []*core.TodoItem
	block   chan struct{}
}

func (s *todoStore) BeginTransaction(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return core.ErrTransactionOpen
	}
	s.open = true
	s.pending = nil
	return nil
}

func (s *todoStore) ClearAll(context.Context) error { return nil }

func (s *todoStore) LoadReferences(context.Context) (core.References, error) {
	return core.References{}, nil
}

func (s *todoStore) WriteRecords(_ context.Context, items []*core.TodoItem) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = items
	return nil
}

func (s *todoStore) CommitTransaction(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		s.saved = s.pending
	}
	s.open = false
	return nil
}

func (s *todoStore) RollbackTransaction(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Import: config.ImportConfig{
			MaxFileSize:   1024,
			MaxConcurrent: 1,
			MaxWaitTime:   20 * time.Millisecond,
			Timeout:       time.Second,
		},
	}
}

// newTestServer registers a "todo" format backed by an in-memory store.
func newTestServer(t *testing.T) (*Server, *fakeCatalog, *todoStore) {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)

	catalog := &fakeCatalog{}
	todos := &todoStore{}
	core.Register(core.FormatDefinition{
		Info: core.FormatInfo{Key: "todo", Label: "Todo lists", Description: "Todo items"},
		NewRunner: func(env core.Env) core.Runner {
			return core.NewImporter[*core.TodoItem]("todo", env.Reader, core.TodoParser{}, todos).
				WithRecorder(env.Recorder).
				WithLogger(env.Logger)
		},
	})

	env := core.Env{
		Recorder: catalog,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return NewServer(testConfig(), catalog, env), catalog, todos
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

// =============================================================================
// Import endpoint
// =============================================================================

func TestImport_RawBody(t *testing.T) {
	s, catalog, todos := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/todo", strings.NewReader("Assignee: Alice\nTodos:\n* Buy milk\n* Walk dog\n"))
	rec := do(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Format  string `json:"format"`
		Records int    `json:"records"`
		DryRun  bool   `json:"dryRun"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Format != "todo" || got.Records != 2 || got.DryRun {
		t.Errorf("response = %+v", got)
	}
	if len(todos.saved) != 2 {
		t.Errorf("saved %d items, want 2", len(todos.saved))
	}
	if len(catalog.runs) != 1 || catalog.runs[0].Status != core.RunCommitted {
		t.Errorf("recorded runs = %+v", catalog.runs)
	}
}

func TestImport_LogsUploadSize(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	s, _, _ := newTestServer(t)
	body := "Assignee: Alice\n* Buy milk\n"
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/import/todo", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	out := buf.String()
	if !strings.Contains(out, "import finished") || !strings.Contains(out, "upload_bytes=27") {
		t.Errorf("import log missing upload size: %q", out)
	}
}

func TestImport_DryRun(t *testing.T) {
	s, _, todos := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/todo?dry_run=true", strings.NewReader("Assignee: Alice\n* Buy milk\n"))
	rec := do(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"records":1`) {
		t.Errorf("body = %s, want one record", rec.Body.String())
	}
	if todos.saved != nil {
		t.Error("dry run must not persist records")
	}
}

func TestImport_Multipart(t *testing.T) {
	s, catalog, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "todos.txt")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("Assignee: Bob\n* Fix bike\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import/todo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if catalog.runs[0].Source != "todos.txt" {
		t.Errorf("Source = %q, want the uploaded file name", catalog.runs[0].Source)
	}
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
		wantLine int
	}{
		{"parse error", "/api/import/todo", "Assignee: Alice\n", http.StatusUnprocessableEntity, "IMP405", 1},
		{"unknown format", "/api/import/csv", "x", http.StatusNotFound, "RUN002", 0},
		{"empty body", "/api/import/todo", "", http.StatusBadRequest, "FILE003", 0},
		{"too large", "/api/import/todo", strings.Repeat("x", 1025), http.StatusRequestEntityTooLarge, "FILE001", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, todos := newTestServer(t)

			rec := do(s, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			resp := decodeError(t, rec)
			if resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}
			if resp.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", resp.Line, tt.wantLine)
			}
			if todos.saved != nil {
				t.Error("failed import must not persist records")
			}
		})
	}
}

func TestImport_Busy(t *testing.T) {
	s, _, todos := newTestServer(t)
	todos.block = make(chan struct{})

	done := make(chan int)
	go func() {
		rec := do(s, httptest.NewRequest(http.MethodPost, "/api/import/todo", strings.NewReader("Assignee: A\n* x\n")))
		done <- rec.Code
	}()

	deadline := time.Now().Add(time.Second)
	for s.LimiterStatus().Active == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/import/todo", strings.NewReader("Assignee: B\n* y\n")))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("concurrent import status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 should carry Retry-After")
	}

	close(todos.block)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first import status = %d, want 200", code)
	}
}

func TestImport_HTMLFragment(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/todo", strings.NewReader("Assignee: Alice\n"))
	req.Header.Set("HX-Request", "true")
	rec := do(s, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "Line 1:") {
		t.Errorf("fragment = %s, want the line number", rec.Body.String())
	}
}

// =============================================================================
// Listings
// =============================================================================

func TestListFormats(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/formats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var infos []core.FormatInfo
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Key != "todo" {
		t.Errorf("formats = %+v", infos)
	}
}

func TestListTimeEntries_Filter(t *testing.T) {
	s, catalog, _ := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/timeentries?employeeId=3&projectId=9", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if catalog.filter != (core.TimeEntryFilter{EmployeeID: 3, ProjectID: 9}) {
		t.Errorf("filter = %+v", catalog.filter)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty listing body = %q, want []", rec.Body.String())
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/timeentries?employeeId=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid filter status = %d, want 400", rec.Code)
	}
}

func TestListings(t *testing.T) {
	for _, path := range []string{"/api/todos", "/api/employees", "/api/projects", "/api/gift-categories", "/api/wishlists", "/api/imports"} {
		t.Run(path, func(t *testing.T) {
			s, _, _ := newTestServer(t)
			rec := do(s, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestListings_StoreError(t *testing.T) {
	s, catalog, _ := newTestServer(t)
	catalog.listErr = errors.New("dial tcp: connection refused")

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "DB004" {
		t.Errorf("code = %q, want DB004", resp.Code)
	}
}

func TestListRuns_Limit(t *testing.T) {
	s, catalog, _ := newTestServer(t)

	do(s, httptest.NewRequest(http.MethodGet, "/api/imports?limit=5", nil))
	if catalog.runLimit != 5 {
		t.Errorf("limit = %d, want 5", catalog.runLimit)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/imports", nil)
	req.Header.Set("Accept", "text/html")
	rec := do(s, req)
	if !strings.Contains(rec.Body.String(), "No imports yet") {
		t.Errorf("HTML run table = %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s, catalog, _ := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthy = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	catalog.pingErr = errors.New("down")
	rec = do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.ImportError{Kind: core.EmptyField, Line: 2}, http.StatusUnprocessableEntity},
		{core.ErrUnknownFormat, http.StatusNotFound},
		{core.ErrTooManyImports, http.StatusTooManyRequests},
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{errNoContent, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
