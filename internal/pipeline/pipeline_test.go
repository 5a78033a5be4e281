package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/navjots35/newsxai/internal/article"
	"github.com/navjots35/newsxai/internal/config"
	"github.com/navjots35/newsxai/internal/storage"
	"github.com/navjots35/newsxai/internal/summarize"
)

type fakeFinder struct {
	urls []string
	err  error
}

func (f *fakeFinder) Find(ctx context.Context, topic string, limit int) ([]string, error) {
	return f.urls, f.err
}

type fakeExtractor struct {
	text   *article.Text
	err    error
	called bool
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (*article.Text, error) {
	f.called = true
	return f.text, f.err
}

type fakeSummarizer struct {
	rec article.Record
	err error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text *article.Text) (article.Record, error) {
	if f.err != nil {
		return article.Record{}, f.err
	}
	if text.IsError() {
		return article.NewErrorRecord(article.ErrContentUnavailable), nil
	}
	return f.rec, f.err
}

type memBackend struct {
	saved []*storage.RunResult
}

func (m *memBackend) Save(ctx context.Context, r *storage.RunResult) error {
	m.saved = append(m.saved, r)
	return nil
}

func (m *memBackend) Query(ctx context.Context, f storage.Filter) ([]*storage.RunResult, error) {
	return m.saved, nil
}

func (m *memBackend) Close() error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(t *testing.T, finder *fakeFinder, ex *fakeExtractor, sum *fakeSummarizer, opts ...Option) *Pipeline {
	t.Helper()
	opts = append(opts, WithLogger(quietLogger()))
	p, err := New(config.Default(), finder, ex, sum, opts...)
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}
	return p
}

func TestRun_Success(t *testing.T) {
	finder := &fakeFinder{urls: []string{"https://news.example/a", "https://news.example/b"}}
	ex := &fakeExtractor{text: article.NewText("https://news.example/a", "Reactor approved. It is safe. Output doubled.")}
	sum := &fakeSummarizer{rec: article.Record{
		Headline: "Reactor approved.",
		Summary:  "It is safe. Output doubled.",
		Keywords: []string{"reactor", "safety"},
	}}
	backend := &memBackend{}

	p := newPipeline(t, finder, ex, sum, WithBackend(backend))
	res, err := p.Run(context.Background(), "fusion power")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !ex.called {
		t.Error("expected extractor to run")
	}
	if res.SourceURL != "https://news.example/a" {
		t.Errorf("expected first source to be used, got %s", res.SourceURL)
	}
	if !strings.Contains(res.Report, "Headline: Reactor approved.") {
		t.Errorf("report missing headline:\n%s", res.Report)
	}
	if res.Record.IsError() {
		t.Errorf("unexpected error record: %s", res.Record.Err)
	}
	if res.ContentChars == 0 {
		t.Error("expected content chars to be counted")
	}

	if len(backend.saved) != 1 {
		t.Fatalf("expected 1 stored run, got %d", len(backend.saved))
	}
	saved := backend.saved[0]
	if saved.ID != res.RunID || !saved.Succeeded || saved.Topic != "fusion power" {
		t.Errorf("stored run mismatch: %+v", saved)
	}
}

func TestRun_NoSourcesSkipsFetch(t *testing.T) {
	finder := &fakeFinder{urls: nil}
	ex := &fakeExtractor{text: article.NewText("", "should never be used")}
	sum := &fakeSummarizer{}

	p := newPipeline(t, finder, ex, sum)
	res, err := p.Run(context.Background(), "obscure topic")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if ex.called {
		t.Error("extractor must not run when there are no sources")
	}
	if !res.Record.IsError() {
		t.Error("expected an error record")
	}
	if res.Report != "News report unavailable: "+article.ErrContentUnavailable {
		t.Errorf("unexpected report: %q", res.Report)
	}
	if res.ContentChars != 0 {
		t.Errorf("expected 0 content chars, got %d", res.ContentChars)
	}
}

func TestRun_ContentErrorBecomesErrorReport(t *testing.T) {
	finder := &fakeFinder{urls: []string{"https://news.example/a"}}
	ex := &fakeExtractor{text: article.NewErrorText("https://news.example/a", "Could not fetch content from URL. Status 404 Not Found.")}
	sum := &fakeSummarizer{}
	backend := &memBackend{}

	p := newPipeline(t, finder, ex, sum, WithBackend(backend))
	res, err := p.Run(context.Background(), "fusion power")
	if err != nil {
		t.Fatalf("content failures must not abort the run: %v", err)
	}

	if !res.Record.IsError() {
		t.Error("expected an error record")
	}
	if strings.Contains(res.Report, "Headline:") {
		t.Errorf("error report must not carry success labels:\n%s", res.Report)
	}
	if len(backend.saved) != 1 || backend.saved[0].Succeeded {
		t.Errorf("expected a stored failed run, got %+v", backend.saved)
	}
}

func TestRun_FinderErrorAborts(t *testing.T) {
	finder := &fakeFinder{err: errors.New("search backend down")}
	ex := &fakeExtractor{}
	sum := &fakeSummarizer{}

	p := newPipeline(t, finder, ex, sum)
	_, err := p.Run(context.Background(), "fusion power")
	if err == nil {
		t.Fatal("expected run to fail")
	}
	if ex.called {
		t.Error("extractor must not run after a finder failure")
	}
}

func TestRun_CancellationAborts(t *testing.T) {
	finder := &fakeFinder{urls: []string{"https://news.example/a"}}
	ex := &fakeExtractor{err: context.Canceled}
	sum := &fakeSummarizer{}

	p := newPipeline(t, finder, ex, sum)
	_, err := p.Run(context.Background(), "fusion power")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_MalformedSummaryAborts(t *testing.T) {
	finder := &fakeFinder{urls: []string{"https://news.example/a"}}
	ex := &fakeExtractor{text: article.NewText("https://news.example/a", "Some content.")}
	sum := &fakeSummarizer{err: summarize.ErrMalformedSummary}

	p := newPipeline(t, finder, ex, sum)
	_, err := p.Run(context.Background(), "fusion power")
	if !errors.Is(err, summarize.ErrMalformedSummary) {
		t.Fatalf("expected ErrMalformedSummary, got %v", err)
	}
}

func TestRun_EmptyTopic(t *testing.T) {
	p := newPipeline(t, &fakeFinder{}, &fakeExtractor{}, &fakeSummarizer{})

	for _, topic := range []string{"", "   "} {
		if _, err := p.Run(context.Background(), topic); !errors.Is(err, ErrEmptyTopic) {
			t.Errorf("topic %q: expected ErrEmptyTopic, got %v", topic, err)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	finder := &fakeFinder{}
	ex := &fakeExtractor{}
	sum := &fakeSummarizer{}

	bad := config.Default()
	bad.FetchTimeout = 0
	if _, err := New(bad, finder, ex, sum); err == nil {
		t.Error("expected invalid config to be rejected")
	}

	var cfgErr *config.Error
	if _, err := New(config.Default(), nil, ex, sum); !errors.As(err, &cfgErr) {
		t.Errorf("expected config error for nil finder, got %v", err)
	}
	if _, err := New(config.Default(), finder, nil, sum); err == nil {
		t.Error("expected nil extractor to be rejected")
	}
	if _, err := New(config.Default(), finder, ex, nil); err == nil {
		t.Error("expected nil summarizer to be rejected")
	}
}
