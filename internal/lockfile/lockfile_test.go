package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tarbackup/internal/logging"
)

func TestAcquireTwiceReportsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "backup.lock")
	guard := New(path, logging.NewNop())

	if err := guard.Acquire(); err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}
	if !guard.Held() {
		t.Fatal("expected guard to report held")
	}
	if err := guard.Acquire(); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked on re-acquire, got %v", err)
	}

	other := New(path, logging.NewNop())
	if err := other.Acquire(); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked from second guard, got %v", err)
	}

	if err := guard.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected marker removed, stat err=%v", err)
	}
	if err := other.Acquire(); err != nil {
		t.Fatalf("Acquire after release returned error: %v", err)
	}
	_ = other.Release()
}

func TestReleaseWithoutMarkerIsNoop(t *testing.T) {
	guard := New(filepath.Join(t.TempDir(), "backup.lock"), logging.NewNop())
	if err := guard.Release(); err != nil {
		t.Fatalf("Release of missing marker returned error: %v", err)
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("second Release returned error: %v", err)
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lock")

	status, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if status.Exists || status.Active {
		t.Fatalf("expected no marker, got %+v", status)
	}

	guard := New(path, logging.NewNop())
	if err := guard.Acquire(); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	status, err = Inspect(path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if !status.Exists || !status.Active {
		t.Fatalf("expected active marker, got %+v", status)
	}
	if status.PID != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), status.PID)
	}
	if err := guard.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	if err := os.WriteFile(path, []byte("12345\n"), 0o644); err != nil {
		t.Fatalf("write leftover marker: %v", err)
	}
	status, err = Inspect(path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if !status.Exists || status.Active {
		t.Fatalf("expected leftover marker to be inactive, got %+v", status)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Inspect must not remove the marker: %v", err)
	}
}
