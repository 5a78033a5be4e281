package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Error reports a missing or invalid configuration value. It is fatal: a
// pipeline cannot be constructed from a broken Config, so the run fails
// before any network activity.
type Error struct {
	Field string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("config: %s is required", e.Field)
}

func (e *Error) Unwrap() error { return e.Cause }

// Config holds all pipeline configuration. It is populated once at startup
// and treated as read-only afterwards; concurrent runs share it safely.
type Config struct {
	// OpenAIAPIKey authenticates the LLM-backed finder and summarizer.
	OpenAIAPIKey string

	// OpenAIModel selects the chat model. Default: "gpt-4o".
	OpenAIModel string

	// NewsAPIKey authenticates the NewsAPI source finder.
	NewsAPIKey string

	// FetchTimeout bounds a single article fetch. Default: 15s.
	FetchTimeout time.Duration

	// MaxContentChars caps extracted text length; longer content is
	// truncated, never rejected. Default: 8000.
	MaxContentChars int

	// MaxSources caps the number of candidate URLs per run. Default: 3.
	MaxSources int

	// RequestsPerSecond paces article fetches across concurrent runs.
	// Zero disables pacing.
	RequestsPerSecond float64

	// PreserveDiagnostics keeps the extractor's diagnostic text in error
	// records instead of the generic failure message.
	PreserveDiagnostics bool
}

// Default returns a Config with reference defaults and no credentials.
func Default() Config {
	return Config{
		OpenAIModel:     "gpt-4o",
		FetchTimeout:    15 * time.Second,
		MaxContentChars: 8000,
		MaxSources:      3,
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset. Invalid numeric values are an Error rather
// than a silent fallback.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.NewsAPIKey = os.Getenv("NEWSAPI_KEY")
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}

	if v := os.Getenv("NEWSXAI_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, &Error{Field: "NEWSXAI_FETCH_TIMEOUT", Cause: err}
		}
		cfg.FetchTimeout = d
	}
	if v := os.Getenv("NEWSXAI_MAX_CONTENT_CHARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, &Error{Field: "NEWSXAI_MAX_CONTENT_CHARS", Cause: err}
		}
		cfg.MaxContentChars = n
	}
	if v := os.Getenv("NEWSXAI_MAX_SOURCES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, &Error{Field: "NEWSXAI_MAX_SOURCES", Cause: err}
		}
		cfg.MaxSources = n
	}
	if v := os.Getenv("NEWSXAI_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, &Error{Field: "NEWSXAI_REQUESTS_PER_SECOND", Cause: err}
		}
		cfg.RequestsPerSecond = f
	}
	if v := os.Getenv("NEWSXAI_PRESERVE_DIAGNOSTICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, &Error{Field: "NEWSXAI_PRESERVE_DIAGNOSTICS", Cause: err}
		}
		cfg.PreserveDiagnostics = b
	}

	return cfg, nil
}

// Validate checks the tunables every pipeline needs regardless of which
// finder/summarizer implementations are selected. Credential checks live in
// the constructors of the implementations that need them.
func (c Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return &Error{Field: "FetchTimeout", Cause: fmt.Errorf("must be positive, got %s", c.FetchTimeout)}
	}
	if c.MaxContentChars <= 0 {
		return &Error{Field: "MaxContentChars", Cause: fmt.Errorf("must be positive, got %d", c.MaxContentChars)}
	}
	if c.MaxSources < 0 {
		return &Error{Field: "MaxSources", Cause: fmt.Errorf("cannot be negative, got %d", c.MaxSources)}
	}
	return nil
}
