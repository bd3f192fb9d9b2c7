// Package templates renders the HTML fragments served to browser and
// htmx clients. Components live in .templ files; run `templ generate`
// after editing them.
package templates

import "github.com/JonMunkholm/lineimport/internal/core"

// ImportSummary is the outcome of a successful import request.
type ImportSummary struct {
	Format  string `json:"format"`
	Source  string `json:"source"`
	DryRun  bool   `json:"dryRun"`
	Records int    `json:"records"`
}

func resultVerb(dryRun bool) string {
	if dryRun {
		return "Validated (dry run)"
	}
	return "Imported"
}

func runStatus(r core.ImportRun) string {
	status := string(r.Status)
	if r.DryRun {
		status += " (dry run)"
	}
	return status
}
