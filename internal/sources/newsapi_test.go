package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navjots35/newsxai/internal/config"
)

func TestNewNewsAPIFinder_RequiresKey(t *testing.T) {
	cfg := config.Default()
	if _, err := NewNewsAPIFinder(cfg); err == nil {
		t.Fatal("expected configuration error for missing API key")
	}
}

func TestNewsAPIFinder_Find(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("expected API key header, got %q", r.Header.Get("X-Api-Key"))
		}
		if got := r.URL.Query().Get("q"); got != "AI safety" {
			t.Errorf("expected topic query, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"url": "https://news.example/one"},
				{"url": "https://news.example/two"},
				{"url": "not-a-url"},
				{"url": "https://news.example/three"}
			]
		}`))
	}))
	defer ts.Close()

	f := &NewsAPIFinder{
		apiKey:     "test-key",
		baseURL:    ts.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	got, err := f.Find(context.Background(), "AI safety", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"https://news.example/one", "https://news.example/two", "https://news.example/three"}
	if len(got) != len(want) {
		t.Fatalf("expected %d URLs, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNewsAPIFinder_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status": "error", "message": "apiKey invalid"}`))
	}))
	defer ts.Close()

	f := &NewsAPIFinder{
		apiKey:     "bad",
		baseURL:    ts.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	if _, err := f.Find(context.Background(), "anything", 3); err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestNewsAPIFinder_NoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "articles": []}`))
	}))
	defer ts.Close()

	f := &NewsAPIFinder{
		apiKey:     "test-key",
		baseURL:    ts.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	got, err := f.Find(context.Background(), "obscure topic", 3)
	if err != nil {
		t.Fatalf("empty result must not be an error, got: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no URLs, got %v", got)
	}
}
