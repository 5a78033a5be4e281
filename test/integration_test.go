//go:build integration

package test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/navjots35/newsxai/internal/config"
	"github.com/navjots35/newsxai/internal/extract"
	"github.com/navjots35/newsxai/internal/fingerprint"
	"github.com/navjots35/newsxai/internal/pipeline"
	"github.com/navjots35/newsxai/internal/sources"
	"github.com/navjots35/newsxai/internal/storage"
	"github.com/navjots35/newsxai/internal/summarize"
)

// mockBackend is an in-memory storage.Backend for verifying recorded runs
type mockBackend struct {
	mu   sync.Mutex
	runs []*storage.RunResult
}

func (m *mockBackend) Save(ctx context.Context, run *storage.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs, nil
}

func (m *mockBackend) Close() error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExtractor(t *testing.T, cfg extract.Config) *extract.Extractor {
	t.Helper()
	// httptest servers do not speak a browser TLS ClientHello.
	cfg.Fingerprint = fingerprint.ProfileGo
	ex, err := extract.New(cfg, quietLogger())
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}
	return ex
}

func newPipeline(t *testing.T, cfg config.Config, finder sources.Finder, ex *extract.Extractor, backend storage.Backend) *pipeline.Pipeline {
	t.Helper()
	opts := []pipeline.Option{pipeline.WithLogger(quietLogger())}
	if backend != nil {
		opts = append(opts, pipeline.WithBackend(backend))
	}
	p, err := pipeline.New(cfg, finder, ex, summarize.NewHeuristic(cfg), opts...)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	return p
}

func TestPipeline_EndToEnd(t *testing.T) {
	const page = `<html><head><title>News</title><style>p{color:red}</style></head><body>
		<script>track()</script>
		<p>Regulators approve new fusion reactor design.</p>
		<p>The commission said the reactor passed every safety review.</p>
		<p>Commercial fusion output could double within a decade.</p>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	cfg := config.Default()
	backend := &mockBackend{}
	p := newPipeline(t, cfg, &sources.Static{URLs: []string{srv.URL}}, newExtractor(t, extract.Config{}), backend)

	res, err := p.Run(context.Background(), "fusion power")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Record.IsError() {
		t.Fatalf("unexpected error record: %s", res.Record.Err)
	}
	if res.Record.Headline != "Regulators approve new fusion reactor design." {
		t.Errorf("unexpected headline: %q", res.Record.Headline)
	}
	if !strings.Contains(res.Report, "--- News Report ---") {
		t.Errorf("report missing frame:\n%s", res.Report)
	}
	if strings.Contains(res.Report, "track()") || strings.Contains(res.Report, "color:red") {
		t.Errorf("script or style text leaked into the report:\n%s", res.Report)
	}

	if len(backend.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(backend.runs))
	}
	if !backend.runs[0].Succeeded || backend.runs[0].SourceURL != srv.URL {
		t.Errorf("recorded run mismatch: %+v", backend.runs[0])
	}
}

func TestPipeline_NoSources(t *testing.T) {
	cfg := config.Default()
	// The extractor would only be exercised if a fetch were attempted.
	p := newPipeline(t, cfg, &sources.Static{}, newExtractor(t, extract.Config{}), nil)

	res, err := p.Run(context.Background(), "a topic nobody writes about")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !res.Record.IsError() {
		t.Fatal("expected an error record")
	}
	if res.Report != "News report unavailable: Could not process article content." {
		t.Errorf("unexpected report: %q", res.Report)
	}
}

func TestPipeline_SlowSourceBecomesErrorReport(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.FetchTimeout = 100 * time.Millisecond
	backend := &mockBackend{}
	p := newPipeline(t, cfg, &sources.Static{URLs: []string{srv.URL}}, newExtractor(t, extract.Config{Timeout: cfg.FetchTimeout}), backend)

	res, err := p.Run(context.Background(), "fusion power")
	if err != nil {
		t.Fatalf("a slow source must degrade, not abort: %v", err)
	}

	if !res.Record.IsError() {
		t.Fatal("expected an error record")
	}
	if strings.Contains(res.Report, "Headline:") {
		t.Errorf("error report carries success labels:\n%s", res.Report)
	}
	if len(backend.runs) != 1 || backend.runs[0].Succeeded {
		t.Errorf("expected a recorded failed run, got %+v", backend.runs)
	}
}

func TestPipeline_CancellationAborts(t *testing.T) {
	started := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	p := newPipeline(t, cfg, &sources.Static{URLs: []string{srv.URL}}, newExtractor(t, extract.Config{}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	if _, err := p.Run(ctx, "fusion power"); err == nil {
		t.Fatal("expected cancellation to abort the run")
	}
}
