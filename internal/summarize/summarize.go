package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/navjots35/newsxai/internal/article"
)

// ErrMalformedSummary reports a summarization result that does not match
// the expected record shape. It is a stage defect, kept distinct from
// content errors so callers and tests can tell them apart.
var ErrMalformedSummary = errors.New("malformed summary record")

// Summarizer derives a structured record (headline, summary, keywords) from
// extracted article text. Inputs carrying a fetch diagnostic are passed
// through as error records without any processing.
type Summarizer interface {
	Summarize(ctx context.Context, text *article.Text) (article.Record, error)
}

// errorRecord converts a failed extraction into the error-variant record.
// By default the upstream diagnostic is replaced with a generic message;
// preserve keeps it for deployments that want the detail.
func errorRecord(text *article.Text, preserve bool) article.Record {
	if preserve && text != nil && strings.TrimSpace(text.Content) != "" {
		return article.NewErrorRecord(text.Content)
	}
	return article.NewErrorRecord(article.ErrContentUnavailable)
}

// maxKeywords caps the keyword list of a record. Models occasionally return
// more than asked for; extra entries are dropped rather than rejected.
const maxKeywords = 5

// validate checks a success record's shape and normalizes the keyword list.
func validate(rec article.Record) (article.Record, error) {
	if strings.TrimSpace(rec.Headline) == "" {
		return rec, fmt.Errorf("%w: missing headline", ErrMalformedSummary)
	}
	if strings.TrimSpace(rec.Summary) == "" {
		return rec, fmt.Errorf("%w: missing summary", ErrMalformedSummary)
	}
	if len(rec.Keywords) == 0 {
		return rec, fmt.Errorf("%w: missing keywords", ErrMalformedSummary)
	}
	if len(rec.Keywords) > maxKeywords {
		rec.Keywords = rec.Keywords[:maxKeywords]
	}
	return rec, nil
}
