package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tarbackup/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.October, 18, 2, 0, 0, 0, time.UTC)

	first := history.Run{
		ID:         "run-1",
		Mode:       "full",
		StartedAt:  base,
		FinishedAt: base.Add(90 * time.Second),
		ItemCount:  2,
		Steps: []history.Step{
			{Item: "docs", Seq: 0, Kind: "archive", Command: "tar -zcP", StartedAt: base, Duration: 80 * time.Second, ExitCode: 0},
			{Item: "db", Seq: 0, Kind: "pre_action", Command: "dump", StartedAt: base, Duration: time.Second, ExitCode: 2, Error: "exit status 2"},
		},
	}
	second := history.Run{
		ID:           "run-2",
		Mode:         "incremental",
		StartedAt:    base.Add(24 * time.Hour),
		FinishedAt:   base.Add(24*time.Hour + time.Minute),
		ItemCount:    1,
		SkippedItems: 1,
	}
	for _, run := range []history.Run{first, second} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record(%s): %v", run.ID, err)
		}
	}

	summaries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(summaries))
	}
	if summaries[0].ID != "run-2" || summaries[1].ID != "run-1" {
		t.Fatalf("expected newest first, got %s, %s", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].StepCount != 0 || summaries[0].SkippedItems != 1 {
		t.Fatalf("unexpected summary for run-2: %+v", summaries[0])
	}
	if summaries[1].StepCount != 2 || summaries[1].FailedSteps != 1 {
		t.Fatalf("unexpected summary for run-1: %+v", summaries[1])
	}
	if summaries[1].Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %s", summaries[1].Duration())
	}

	steps, err := store.Steps(ctx, "run-1")
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Item != "db" || steps[0].Error != "exit status 2" || steps[0].ExitCode != 2 {
		t.Fatalf("unexpected first step %+v", steps[0])
	}
	if steps[1].Duration != 80*time.Second || steps[1].Error != "" {
		t.Fatalf("unexpected second step %+v", steps[1])
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.Record(context.Background(), history.Run{Mode: "full"}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestRecordRejectsDuplicateRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	run := history.Run{ID: "dup", Mode: "full", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, run); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), history.Run{ID: "keep", Mode: "full", StartedAt: time.Now(), FinishedAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		if errors.Is(err, history.ErrSchemaMismatch) {
			t.Fatalf("unexpected schema mismatch: %v", err)
		}
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	summaries, err := reopened.Recent(context.Background(), 0)
	if err != nil || len(summaries) != 1 {
		t.Fatalf("expected 1 run after reopen, got %d err=%v", len(summaries), err)
	}
}
