// Package core implements the line-oriented text import pipeline.
//
// It holds the domain logic independent of storage and transport, so the
// CLI, the HTTP server and the tests all drive the same code.
//
// # Pipeline
//
// An import runs through five stages:
//
//  1. [Tokenize] splits raw text into classified tokens (headers, details
//     and markers) using a per-format [Grammar].
//  2. A format parser ([TodoParser], [TimesheetParser], [WishlistParser])
//     walks the tokens with a section state machine and builds records.
//  3. A [Resolver] links records to reference entities (employees,
//     projects, gift categories) so each natural key maps to one instance.
//  4. A [Writer] clears the previous data set and writes the new records
//     inside one transaction.
//  5. [Importer] orchestrates the stages, committing on success, rolling
//     back on failure or on a dry run.
//
// # Format Registry
//
// Formats are registered at init time with [Register]. A
// [FormatDefinition] builds a [Runner] from an [Env]:
//
//	core.Register(core.FormatDefinition{
//	    Info: core.FormatInfo{Key: "todo", Label: "Todo lists"},
//	    NewRunner: func(env core.Env) core.Runner {
//	        return core.NewImporter("todo", env.Reader, core.TodoParser{}, store.NewTodoWriter(env.DB))
//	    },
//	})
//
// # Error Handling
//
// Content errors are *[ImportError] values carrying an [ErrorKind] and a
// line number. They match with errors.Is against the kind itself:
//
//	if errors.Is(err, core.EmptyTimesheetSection) { ... }
//
// [MapError] turns any error into a [UserMessage] with a support code.
package core
