package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/navjots35/newsxai/internal/config"
	"github.com/navjots35/newsxai/internal/extract"
	"github.com/navjots35/newsxai/internal/metrics"
	"github.com/navjots35/newsxai/internal/pipeline"
	"github.com/navjots35/newsxai/internal/report"
	"github.com/navjots35/newsxai/internal/sources"
	"github.com/navjots35/newsxai/internal/storage"
	"github.com/navjots35/newsxai/internal/storage/jsonbackend"
	"github.com/navjots35/newsxai/internal/storage/postgres"
	"github.com/navjots35/newsxai/internal/storage/sqlite"
	"github.com/navjots35/newsxai/internal/summarize"
	"github.com/navjots35/newsxai/pkg/ratelimit"
)

func main() {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "newsxai",
		Usage: "find, extract and summarize news articles into short reports",
		Commands: []*cli.Command{
			runCommand(),
			historyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "newsxai: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run the news pipeline for one or more topics",
		ArgsUsage: "TOPIC [TOPIC...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sources", Value: "openai", Usage: "source finder: openai, newsapi or static"},
			&cli.StringSliceFlag{Name: "url", Usage: "article URL for the static finder (repeatable)"},
			&cli.StringFlag{Name: "summarizer", Value: "openai", Usage: "summarizer: openai or heuristic"},
			&cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text or json"},
			&cli.StringFlag{Name: "store", Usage: "record runs: sqlite, json or postgres"},
			&cli.StringFlag{Name: "dsn", Usage: "DSN or file path for the selected store"},
			&cli.IntFlag{Name: "metrics-port", Usage: "expose Prometheus metrics on this port"},
			&cli.BoolFlag{Name: "preserve-diagnostics", Usage: "keep fetch diagnostics in error reports"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	topics := c.Args().Slice()
	if len(topics) == 0 {
		return cli.Exit("at least one topic is required", 1)
	}

	logger := newLogger(c.Bool("verbose"))

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if c.Bool("preserve-diagnostics") {
		cfg.PreserveDiagnostics = true
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port := c.Int("metrics-port"); port > 0 {
		srv := metrics.Start(port)
		defer srv.Stop(context.Background())
		logger.Info("metrics server started", "port", port)
	}

	finder, err := buildFinder(c, cfg)
	if err != nil {
		return err
	}

	summarizer, err := buildSummarizer(c, cfg)
	if err != nil {
		return err
	}

	var limiter *ratelimit.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.NewLimiter(cfg.RequestsPerSecond, 0.1)
		defer limiter.Stop()
	}

	extractor, err := extract.New(extract.Config{
		Timeout:         cfg.FetchTimeout,
		MaxContentChars: cfg.MaxContentChars,
		Limiter:         limiter,
	}, logger)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	backend, err := openBackend(ctx, c.String("store"), c.String("dsn"))
	if err != nil {
		return err
	}
	if backend != nil {
		defer backend.Close()
		opts = append(opts, pipeline.WithBackend(backend))
	}

	p, err := pipeline.New(cfg, finder, extractor, summarizer, opts...)
	if err != nil {
		return err
	}

	// Topics run concurrently; output order follows the command line.
	results := make([]*pipeline.Result, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	for i, topic := range topics {
		g.Go(func() error {
			res, err := p.Run(gctx, topic)
			if err != nil {
				return fmt.Errorf("topic %q: %w", topic, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		if c.String("format") == "json" {
			if err := report.WriteJSON(os.Stdout, res.Record); err != nil {
				return err
			}
			continue
		}
		if err := report.Write(os.Stdout, res.Record); err != nil {
			return err
		}
	}

	return nil
}

func buildFinder(c *cli.Context, cfg config.Config) (sources.Finder, error) {
	switch c.String("sources") {
	case "openai":
		return sources.NewOpenAIFinder(cfg)
	case "newsapi":
		return sources.NewNewsAPIFinder(cfg)
	case "static":
		urls := c.StringSlice("url")
		if len(urls) == 0 {
			return nil, cli.Exit("the static finder needs at least one --url", 1)
		}
		return &sources.Static{URLs: urls}, nil
	default:
		return nil, cli.Exit(fmt.Sprintf("unknown source finder %q", c.String("sources")), 1)
	}
}

func buildSummarizer(c *cli.Context, cfg config.Config) (summarize.Summarizer, error) {
	switch c.String("summarizer") {
	case "openai":
		return summarize.NewOpenAISummarizer(cfg)
	case "heuristic":
		return summarize.NewHeuristic(cfg), nil
	default:
		return nil, cli.Exit(fmt.Sprintf("unknown summarizer %q", c.String("summarizer")), 1)
	}
}

// openBackend returns nil when no store is selected.
func openBackend(ctx context.Context, store, dsn string) (storage.Backend, error) {
	switch store {
	case "":
		return nil, nil
	case "sqlite":
		if dsn == "" {
			dsn = "newsxai.db"
		}
		return sqlite.New(dsn)
	case "json":
		if dsn == "" {
			dsn = "newsxai_runs.ndjson"
		}
		return jsonbackend.New(dsn)
	case "postgres":
		if dsn == "" {
			return nil, cli.Exit("the postgres store needs --dsn", 1)
		}
		return postgres.New(ctx, dsn)
	default:
		return nil, cli.Exit(fmt.Sprintf("unknown store %q", store), 1)
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recorded pipeline runs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Value: "sqlite", Usage: "store to read: sqlite, json or postgres"},
			&cli.StringFlag{Name: "dsn", Usage: "DSN or file path for the selected store"},
			&cli.StringFlag{Name: "topic", Usage: "only runs for this topic"},
			&cli.BoolFlag{Name: "failed", Usage: "only failed runs"},
			&cli.DurationFlag{Name: "since", Usage: "only runs newer than this age, e.g. 24h"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum number of runs"},
			&cli.BoolFlag{Name: "json", Usage: "print runs as JSON"},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	ctx := c.Context

	backend, err := openBackend(ctx, c.String("store"), c.String("dsn"))
	if err != nil {
		return err
	}
	if backend == nil {
		return cli.Exit("a store is required", 1)
	}
	defer backend.Close()

	filter := storage.Filter{
		Topic: c.String("topic"),
		Limit: c.Int("limit"),
	}
	if c.Bool("failed") {
		failed := false
		filter.Succeeded = &failed
	}
	if age := c.Duration("since"); age > 0 {
		since := time.Now().Add(-age)
		filter.Since = &since
	}

	runs, err := backend.Query(ctx, filter)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		status := "ok"
		if !r.Succeeded {
			status = "failed"
		}
		fmt.Printf("%s  %-6s  %-30s  %s\n", r.CreatedAt.Format(time.RFC3339), status, r.Topic, r.SourceURL)
	}
	fmt.Printf("%d run(s)\n", len(runs))

	return nil
}
