package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/navjots35/newsxai/internal/article"
)

// successTmpl is the fixed five-line report layout. Keywords are joined
// with commas in their original order.
const successTmpl = `--- News Report ---
Headline: {{.Headline}}
Summary: {{.Summary}}
Keywords: {{join .Keywords ", "}}
-------------------`

// errorTmpl is a single clear line. It deliberately omits the headline,
// summary, and keyword labels: a failed run should not look like a report.
const errorTmpl = `News report unavailable: {{.Err}}`

var (
	successT = template.Must(template.New("report").
			Funcs(template.FuncMap{"join": strings.Join}).
			Parse(successTmpl))
	errorT = template.Must(template.New("errorReport").Parse(errorTmpl))
)

// Format renders a record as the human-readable report string. Pure
// function: the same record always yields the same report.
func Format(rec article.Record) string {
	var b strings.Builder
	// The templates reference only fields that exist; execution cannot fail
	// on a strings.Builder.
	if rec.IsError() {
		_ = errorT.Execute(&b, rec)
	} else {
		_ = successT.Execute(&b, rec)
	}
	return b.String()
}

// Write renders the report to the given writer with a trailing newline.
func Write(w io.Writer, rec article.Record) error {
	if _, err := io.WriteString(w, Format(rec)+"\n"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteJSON writes the record itself, for machine consumers.
func WriteJSON(w io.Writer, rec article.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
