package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/navjots35/newsxai/internal/article"
	"github.com/navjots35/newsxai/internal/config"
	"github.com/navjots35/newsxai/internal/metrics"
	"github.com/navjots35/newsxai/internal/report"
	"github.com/navjots35/newsxai/internal/sources"
	"github.com/navjots35/newsxai/internal/storage"
	"github.com/navjots35/newsxai/internal/summarize"
)

// ErrEmptyTopic rejects a run before any stage executes.
var ErrEmptyTopic = errors.New("topic must not be empty")

// Extractor is the content extraction capability the pipeline depends on.
// The error return is reserved for cancellation; fetch and parse problems
// arrive as error-variant Text values.
type Extractor interface {
	Extract(ctx context.Context, url string) (*article.Text, error)
}

// Pipeline sequences the four stages of a run: find sources, extract
// content from the first one, summarize it, format the report. Content
// problems at any stage degrade into an error report; only cancellation,
// stage defects, and configuration errors abort a run.
//
// A Pipeline is immutable after construction and safe for concurrent runs.
type Pipeline struct {
	cfg        config.Config
	finder     sources.Finder
	extractor  Extractor
	summarizer summarize.Summarizer
	backend    storage.Backend
	logger     *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithBackend records every run to the given storage backend.
func WithBackend(b storage.Backend) Option {
	return func(p *Pipeline) { p.backend = b }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New validates the configuration and wires the stages. All configuration
// problems surface here, before any network call is attempted.
func New(cfg config.Config, finder sources.Finder, extractor Extractor, summarizer summarize.Summarizer, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if finder == nil {
		return nil, &config.Error{Field: "Finder"}
	}
	if extractor == nil {
		return nil, &config.Error{Field: "Extractor"}
	}
	if summarizer == nil {
		return nil, &config.Error{Field: "Summarizer"}
	}

	p := &Pipeline{
		cfg:        cfg,
		finder:     finder,
		extractor:  extractor,
		summarizer: summarizer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result is the terminal artifact of one run.
type Result struct {
	RunID        string
	Topic        string
	SourceURL    string
	Record       article.Record
	Report       string
	ContentChars int
	Duration     time.Duration
}

// Run executes the pipeline for one topic and returns the formatted report.
// Each run is independent: no state is shared between runs beyond the
// read-only configuration.
func (p *Pipeline) Run(ctx context.Context, topic string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	runID := uuid.New().String()
	logger := p.logger.With("run_id", runID, "topic", topic)
	logger.Info("starting news pipeline run")

	start := time.Now()

	urls, err := p.findSources(ctx, logger, topic)
	if err != nil {
		metrics.RecordRun("failed")
		return nil, err
	}

	text, err := p.extractContent(ctx, logger, topic, urls)
	if err != nil {
		metrics.RecordRun("failed")
		return nil, err
	}

	rec, err := p.summarizeText(ctx, logger, text)
	if err != nil {
		metrics.RecordRun("failed")
		return nil, err
	}

	rep := report.Format(rec)
	logger.Info("pipeline run finished", "duration", time.Since(start))
	logger.Info("final report", "report", rep)

	res := &Result{
		RunID:     runID,
		Topic:     topic,
		SourceURL: text.SourceURL,
		Record:    rec,
		Report:    rep,
		Duration:  time.Since(start),
	}
	if !text.IsError() {
		res.ContentChars = utf8.RuneCountInString(text.Content)
	}

	if rec.IsError() {
		metrics.RecordRun("content_error")
	} else {
		metrics.RecordRun("ok")
	}

	p.record(ctx, logger, res)

	return res, nil
}

func (p *Pipeline) findSources(ctx context.Context, logger *slog.Logger, topic string) ([]string, error) {
	start := time.Now()
	urls, err := p.finder.Find(ctx, topic, p.cfg.MaxSources)
	metrics.ObserveStage("find_sources", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("source search failed: %w", err)
	}

	logger.Info("found candidate sources", "count", len(urls))
	return urls, nil
}

func (p *Pipeline) extractContent(ctx context.Context, logger *slog.Logger, topic string, urls []string) (*article.Text, error) {
	// No sources is a valid terminal outcome: it becomes an error report,
	// and no fetch is attempted.
	if len(urls) == 0 {
		logger.Warn("no sources found, skipping fetch")
		return article.NewErrorText("", fmt.Sprintf("Error: No article sources found for topic %q.", topic)), nil
	}

	start := time.Now()
	text, err := p.extractor.Extract(ctx, urls[0])
	metrics.ObserveStage("extract", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("content extraction aborted: %w", err)
	}

	return text, nil
}

func (p *Pipeline) summarizeText(ctx context.Context, logger *slog.Logger, text *article.Text) (article.Record, error) {
	start := time.Now()
	rec, err := p.summarizer.Summarize(ctx, text)
	metrics.ObserveStage("summarize", time.Since(start))
	if err != nil {
		return article.Record{}, fmt.Errorf("summarization failed: %w", err)
	}

	if rec.IsError() {
		logger.Warn("summarization produced an error record", "error", rec.Err)
	} else {
		logger.Info("summarization complete", "headline", rec.Headline, "keywords", len(rec.Keywords))
	}
	return rec, nil
}

// record persists the run if a backend is configured. Storage is a side
// channel: a failed save is logged, never turned into a run failure.
func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, res *Result) {
	if p.backend == nil {
		return
	}

	run := &storage.RunResult{
		ID:           res.RunID,
		Topic:        res.Topic,
		SourceURL:    res.SourceURL,
		Report:       res.Report,
		ContentChars: res.ContentChars,
		Succeeded:    !res.Record.IsError(),
		Error:        res.Record.Err,
		Duration:     res.Duration,
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.backend.Save(ctx, run); err != nil {
		logger.Error("failed to record run", "err", err)
	}
}
