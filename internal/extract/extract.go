package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/navjots35/newsxai/internal/article"
	"github.com/navjots35/newsxai/internal/blockwall"
	"github.com/navjots35/newsxai/internal/fingerprint"
	"github.com/navjots35/newsxai/internal/metrics"
	"github.com/navjots35/newsxai/pkg/httpclient"
	"github.com/navjots35/newsxai/pkg/ratelimit"
	"github.com/navjots35/newsxai/pkg/useragent"
)

// Config configures the content extractor.
type Config struct {
	// Timeout bounds a single fetch. Default: 15s.
	Timeout time.Duration

	// MaxContentChars caps the extracted text length. Longer content is
	// truncated, never rejected. Default: 8000.
	MaxContentChars int

	// MaxRedirects limits redirect following. Default: 5.
	MaxRedirects int

	// UAPool supplies browser User-Agent strings; defaults to the built-in pool.
	UAPool *useragent.Pool

	// Limiter paces fetches across concurrent pipeline runs. Optional.
	Limiter *ratelimit.Limiter

	// Fingerprint selects the TLS ClientHello profile. Default: chrome.
	Fingerprint fingerprint.Profile
}

// Extractor turns a URL into plain article text. Fetch and parse problems
// are returned as error-variant Text values, not errors: downstream stages
// decide how to present them. The error return is reserved for caller
// cancellation, which must abort the run rather than degrade it.
type Extractor struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

// New creates an Extractor. A single underlying client is shared across
// fetches so connections are pooled.
func New(cfg Config, logger *slog.Logger) (*Extractor, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 8000
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Extractor{cfg: cfg, client: client, logger: logger}, nil
}

// Extract fetches the URL and reduces the HTML body to plain text: scripts
// and styles stripped, paragraph texts joined in document order, full
// document text as a fallback, truncated to the configured maximum.
func (e *Extractor) Extract(ctx context.Context, targetURL string) (*article.Text, error) {
	if e.cfg.Limiter != nil {
		if err := e.cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch aborted: %w", err)
		}
	}

	e.logger.Info("fetching article content", "url", targetURL)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		// An unparseable URL fails like any other bad fetch.
		return article.NewErrorText(targetURL, fmt.Sprintf("Error: Could not fetch content from URL. %v", err)), nil
	}
	req.Header.Set("User-Agent", e.cfg.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			// Caller cancellation is not a content error.
			return nil, fmt.Errorf("fetch of %s aborted: %w", targetURL, ctx.Err())
		}
		e.logger.Error("article fetch failed", "url", targetURL, "err", err)
		metrics.RecordFetch(domainOf(targetURL), "error", time.Since(start), 0)
		return article.NewErrorText(targetURL, fmt.Sprintf("Error: Could not fetch content from URL. %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch of %s aborted: %w", targetURL, ctx.Err())
		}
		metrics.RecordFetch(domainOf(targetURL), "error", time.Since(start), 0)
		return article.NewErrorText(targetURL, fmt.Sprintf("Error: Could not fetch content from URL. %v", err)), nil
	}

	metrics.RecordFetch(domainOf(targetURL), resp.Status, time.Since(start), len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		diag := fmt.Sprintf("Error: Could not fetch content from URL. Status %s.", resp.Status)
		if vendor := blockwall.Identify(resp.StatusCode, resp.Header, body, blockwall.DefaultDetectors()); vendor != "" {
			diag = fmt.Sprintf("Error: Could not fetch content from URL. Status %s (blocked by %s).", resp.Status, vendor)
		}
		e.logger.Error("article fetch rejected", "url", targetURL, "status", resp.StatusCode)
		return article.NewErrorText(targetURL, diag), nil
	}

	text, err := PlainText(body)
	if err != nil {
		e.logger.Error("article parse failed", "url", targetURL, "err", err)
		return article.NewErrorText(targetURL, fmt.Sprintf("Error: Could not process content from URL. %v", err)), nil
	}

	text = truncate(text, e.cfg.MaxContentChars)
	e.logger.Info("fetched article content", "url", targetURL, "chars", utf8.RuneCountInString(text), "duration", time.Since(start))

	return article.NewText(targetURL, text), nil
}

// truncate caps s at max characters without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
