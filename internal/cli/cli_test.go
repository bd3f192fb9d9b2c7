package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/JonMunkholm/lineimport/internal/config"
	"github.com/JonMunkholm/lineimport/internal/core"
	_ "github.com/JonMunkholm/lineimport/internal/formats"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"
)

// run executes the command tree with args and returns stdout.
func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := a.rootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func testApp() *app {
	return &app{
		loadConfig: func() (*config.Config, error) {
			return nil, errors.New("config should not be loaded")
		},
		connect: func(context.Context, *config.Config) (*pgxpool.Pool, error) {
			return nil, errors.New("database should not be used")
		},
	}
}

// =============================================================================
// formats
// =============================================================================

func TestFormats_Text(t *testing.T) {
	out, err := run(t, testApp(), "formats")
	if err != nil {
		t.Fatalf("formats error = %v", err)
	}
	for _, want := range []string{"timesheet - Timesheets", "todo - Todo lists", "wishlist - Wishlists", "    EMP-ID: 12345"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormats_JSON(t *testing.T) {
	out, err := run(t, testApp(), "formats", "--output", "json")
	if err != nil {
		t.Fatalf("formats error = %v", err)
	}
	var infos []core.FormatInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(infos) != 3 || infos[0].Key != "timesheet" {
		t.Errorf("formats = %+v", infos)
	}
}

func TestFormats_YAML(t *testing.T) {
	out, err := run(t, testApp(), "formats", "-o", "yaml")
	if err != nil {
		t.Fatalf("formats error = %v", err)
	}
	var infos []core.FormatInfo
	if err := yaml.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if len(infos) != 3 || infos[2].Key != "wishlist" {
		t.Errorf("formats = %+v", infos)
	}
}

func TestFormats_UnknownOutput(t *testing.T) {
	if _, err := run(t, testApp(), "formats", "-o", "xml"); err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v, want unknown output format", err)
	}
}

// =============================================================================
// import
// =============================================================================

func TestImport_UnknownFormat(t *testing.T) {
	_, err := run(t, testApp(), "import", "csv", "file.csv")
	if !errors.Is(err, core.ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}

func TestImport_Args(t *testing.T) {
	if _, err := run(t, testApp(), "import", "todo"); err == nil {
		t.Error("import with one argument should fail")
	}
}

func TestImport_ConfigError(t *testing.T) {
	a := testApp()
	want := errors.New("validation failed")
	a.loadConfig = func() (*config.Config, error) { return nil, want }

	if _, err := run(t, a, "import", "todo", "todos.txt", "--dry-run"); !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}

func TestMigrate_ConnectError(t *testing.T) {
	a := testApp()
	a.loadConfig = func() (*config.Config, error) { return &config.Config{}, nil }
	want := errors.New("connection refused")
	a.connect = func(context.Context, *config.Config) (*pgxpool.Pool, error) { return nil, want }

	if _, err := run(t, a, "migrate"); !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}

// =============================================================================
// render
// =============================================================================

func TestRender(t *testing.T) {
	v := importResult{Format: "todo", Source: "t.txt", Records: 2}
	text := func(w io.Writer) error { _, err := w.Write([]byte("plain\n")); return err }

	tests := []struct {
		format string
		want   string
	}{
		{"", "plain\n"},
		{"text", "plain\n"},
		{"json", `"records": 2`},
		{"yaml", "records: 2"},
	}
	for _, tt := range tests {
		var b bytes.Buffer
		if err := render(&b, tt.format, v, text); err != nil {
			t.Errorf("render(%q) error = %v", tt.format, err)
			continue
		}
		if !strings.Contains(b.String(), tt.want) {
			t.Errorf("render(%q) = %q, want %q", tt.format, b.String(), tt.want)
		}
	}
}
