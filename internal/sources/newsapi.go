package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/navjots35/newsxai/internal/config"
)

const defaultNewsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIFinder searches newsapi.org for recent articles about a topic.
// It is the deterministic alternative to the LLM-backed finder.
type NewsAPIFinder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Finder = (*NewsAPIFinder)(nil)

// NewNewsAPIFinder builds a NewsAPI-backed finder. A missing API key is a
// configuration error raised before any network call.
func NewNewsAPIFinder(cfg config.Config) (*NewsAPIFinder, error) {
	if cfg.NewsAPIKey == "" {
		return nil, &config.Error{Field: "NewsAPIKey"}
	}
	return &NewsAPIFinder{
		apiKey:     cfg.NewsAPIKey,
		baseURL:    defaultNewsAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		URL string `json:"url"`
	} `json:"articles"`
}

// Find queries the /everything endpoint sorted by publication date and
// returns up to limit article URLs.
func (f *NewsAPIFinder) Find(ctx context.Context, topic string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}

	q := url.Values{}
	q.Set("q", topic)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", fmt.Sprintf("%d", limit))
	endpoint := f.baseURL + "/everything?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	req.Header.Set("X-Api-Key", f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}
	if raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", raw.Message)
	}

	urls := make([]string, 0, limit)
	for _, a := range raw.Articles {
		if !validURL(a.URL) {
			continue
		}
		urls = append(urls, a.URL)
		if len(urls) == limit {
			break
		}
	}
	return urls, nil
}
