package storage

import (
	"context"
	"time"
)

// RunResult records the outcome of a single pipeline run: which topic was
// asked, which source served it, and what report came out. Content-level
// failures are stored like any other run, with Succeeded false and the
// error report text preserved.
type RunResult struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"`
	SourceURL    string        `json:"source_url,omitempty"`
	Report       string        `json:"report"`
	ContentChars int           `json:"content_chars"`
	Succeeded    bool          `json:"succeeded"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Filter selects stored runs.
type Filter struct {
	Topic     string
	Succeeded *bool
	Since     *time.Time
	Limit     int
	Offset    int
}

// Backend stores and queries pipeline run results.
type Backend interface {
	Save(ctx context.Context, result *RunResult) error
	Query(ctx context.Context, filter Filter) ([]*RunResult, error)
	Close() error
}
