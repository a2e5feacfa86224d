package main

import (
	"strings"
	"testing"
	"time"

	"tarbackup/internal/history"
)

func TestRenderSteps(t *testing.T) {
	steps := []history.Step{
		{Item: "docs", Kind: "archive", Command: "tar -zcP", Duration: 1500 * time.Millisecond},
		{Item: "docs", Kind: "post_action", Command: "notify done", ExitCode: 2, Error: "exit status 2"},
	}

	plain := renderSteps(steps, false)
	for _, want := range []string{"ITEM", "tar -zcP", "1.5s", "exit status 2"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("expected %q in\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("plain output must not be coloured:\n%s", plain)
	}

	lines := strings.Split(plain, "\n")
	var archiveRow string
	for _, line := range lines {
		if strings.Contains(line, "archive") {
			archiveRow = line
		}
	}
	if !strings.Contains(archiveRow, "│ ok ") {
		t.Fatalf("successful step should show ok, got %q", archiveRow)
	}
}

func TestRenderRuns(t *testing.T) {
	started := time.Date(2026, time.October, 18, 1, 30, 0, 0, time.UTC)
	out := renderRuns([]history.Summary{{
		ID:          "run-1",
		Mode:        "incremental",
		StartedAt:   started,
		FinishedAt:  started.Add(90 * time.Second),
		ItemCount:   3,
		FailedSteps: 1,
	}})
	for _, want := range []string{"run-1", "Incremental", "01 mins 30 seconds", "FAILED STEPS"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}
