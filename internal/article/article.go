package article

import "strings"

// ErrorMarker prefixes the content of every error-variant Text. Downstream
// stages rely on this literal to distinguish diagnostics from article prose.
const ErrorMarker = "Error:"

// ErrContentUnavailable is the generic message carried by an error-variant
// Record when the upstream diagnostic is not preserved.
const ErrContentUnavailable = "Could not process article content."

// Text is the output of the content extraction stage: either article prose
// pulled from one URL, or a human-readable diagnostic when the fetch failed.
// Failures travel as data so later stages can decide how to present them.
type Text struct {
	// SourceURL is the URL the content was fetched from. Empty when the
	// pipeline never selected a source (e.g. the finder returned nothing).
	SourceURL string

	// Content is the extracted plain text, or a diagnostic beginning with
	// ErrorMarker when Failed is set.
	Content string

	// Failed marks Content as a diagnostic rather than article prose.
	Failed bool
}

// NewText returns a success-variant Text.
func NewText(sourceURL, content string) *Text {
	return &Text{SourceURL: sourceURL, Content: content}
}

// NewErrorText returns an error-variant Text. The diagnostic is prefixed
// with ErrorMarker if it does not already carry it.
func NewErrorText(sourceURL, diagnostic string) *Text {
	if !strings.HasPrefix(diagnostic, ErrorMarker) {
		diagnostic = ErrorMarker + " " + diagnostic
	}
	return &Text{SourceURL: sourceURL, Content: diagnostic, Failed: true}
}

// IsError reports whether the Text carries a diagnostic instead of content.
// Both the flag and the marker convention are honored, so a Text built by
// hand from a raw diagnostic string is still recognized.
func (t *Text) IsError() bool {
	if t == nil {
		return true
	}
	return t.Failed || strings.HasPrefix(t.Content, ErrorMarker)
}

// Record is the structured outcome of the summarization stage. Exactly one
// variant is populated: either Headline/Summary/Keywords, or Err.
type Record struct {
	Headline string   `json:"headline,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Err      string   `json:"error,omitempty"`
}

// NewErrorRecord returns an error-variant Record.
func NewErrorRecord(msg string) Record {
	return Record{Err: msg}
}

// IsError reports whether the Record is the error variant.
func (r Record) IsError() bool {
	return r.Err != ""
}
