package sources

import (
	"context"
	"net/url"
)

// Finder locates candidate article URLs for a topic. Implementations may
// call a search API, an LLM, or return canned data. An empty result is a
// valid terminal outcome, not an error: the pipeline degrades it into an
// error report rather than retrying.
type Finder interface {
	Find(ctx context.Context, topic string, limit int) ([]string, error)
}

// Static is a Finder that returns a fixed list of URLs, capped at the
// requested limit. Used for tests and offline runs.
type Static struct {
	URLs []string
}

var _ Finder = (*Static)(nil)

// Find returns the configured URLs, at most limit of them.
func (s *Static) Find(ctx context.Context, topic string, limit int) ([]string, error) {
	if limit <= 0 || limit > len(s.URLs) {
		limit = len(s.URLs)
	}
	out := make([]string, limit)
	copy(out, s.URLs[:limit])
	return out, nil
}

// validURL reports whether raw parses as an absolute http(s) URL.
// Finders drop anything else so a hallucinated or relative link never
// reaches the extractor.
func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
