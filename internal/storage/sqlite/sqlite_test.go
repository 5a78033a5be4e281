package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/navjots35/newsxai/internal/storage"
)

func TestSQLiteBackend(t *testing.T) {
	b, err := New("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to create sqlite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	run := &storage.RunResult{
		ID:           "run-1",
		Topic:        "AI safety",
		SourceURL:    "https://news.example/article",
		Report:       "--- News Report ---\nHeadline: X\nSummary: Y\nKeywords: a, b\n-------------------",
		ContentChars: 4200,
		Succeeded:    true,
		Duration:     1200 * time.Millisecond,
		CreatedAt:    now,
	}

	if err := b.Save(ctx, run); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	results, err := b.Query(ctx, storage.Filter{Topic: "AI safety"})
	if err != nil {
		t.Fatalf("failed to query runs: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.ID != run.ID {
		t.Errorf("expected ID %s, got %s", run.ID, got.ID)
	}
	if got.Topic != run.Topic {
		t.Errorf("expected topic %s, got %s", run.Topic, got.Topic)
	}
	if got.Report != run.Report {
		t.Errorf("report mismatch: %q", got.Report)
	}
	if got.ContentChars != run.ContentChars {
		t.Errorf("expected %d chars, got %d", run.ContentChars, got.ContentChars)
	}
	if !got.Succeeded {
		t.Error("expected succeeded run")
	}
	if got.Duration.Milliseconds() != run.Duration.Milliseconds() {
		t.Errorf("expected duration %v, got %v", run.Duration, got.Duration)
	}
	if got.CreatedAt.Unix() != run.CreatedAt.Unix() {
		t.Errorf("expected created at %v, got %v", run.CreatedAt, got.CreatedAt)
	}
}

func TestSQLiteBackend_Filters(t *testing.T) {
	b, err := New("file:filters?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to create sqlite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	runs := []*storage.RunResult{
		{ID: "a", Topic: "fusion", Report: "r1", Succeeded: true, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "b", Topic: "fusion", Report: "r2", Succeeded: false, Error: "Could not process article content.", CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "c", Topic: "quantum", Report: "r3", Succeeded: true, CreatedAt: now},
	}
	for _, r := range runs {
		if err := b.Save(ctx, r); err != nil {
			t.Fatalf("failed to save run %s: %v", r.ID, err)
		}
	}

	failed := false
	got, err := b.Query(ctx, storage.Filter{Topic: "fusion", Succeeded: &failed})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected run b, got %v", got)
	}

	since := now.Add(-90 * time.Minute)
	got, err = b.Query(ctx, storage.Filter{Since: &since})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recent runs, got %d", len(got))
	}
	// Newest first.
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("expected order [c b], got [%s %s]", got[0].ID, got[1].ID)
	}

	got, err = b.Query(ctx, storage.Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("expected run b with limit/offset, got %v", got)
	}
}
