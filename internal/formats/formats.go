// Package formats registers the import formats with the core registry.
// Import it for its side effects.
package formats

import (
	"github.com/JonMunkholm/lineimport/internal/core"
)

// newImporter wires env into an importer for one format.
func newImporter[T any](key string, env core.Env, parser core.Parser[T], writer core.Writer[T]) core.Runner {
	reader := env.Reader
	if reader == nil {
		reader = core.OSFileReader{}
	}
	return core.NewImporter(key, reader, parser, writer).
		WithRecorder(env.Recorder).
		WithLogger(env.Logger)
}
