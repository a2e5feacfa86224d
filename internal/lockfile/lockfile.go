// Package lockfile guards a run with a marker file.
//
// The marker's existence is the lock: Acquire fails when it is already present
// and Release deletes it. There is no stale-lock detection; a marker left by a
// crashed run must be removed by hand. While a guard holds the marker it also
// keeps an advisory flock on it, which lets Inspect tell an operator whether a
// marker belongs to a live run.
package lockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"tarbackup/internal/logging"
)

// ErrLocked reports that the marker already exists.
var ErrLocked = errors.New("lock file already exists")

// Guard owns one lock marker.
type Guard struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
	flock  *flock.Flock
	held   bool
}

// New returns a guard for the marker at path.
func New(path string, logger *slog.Logger) *Guard {
	return &Guard{
		path:   path,
		logger: logging.NewComponentLogger(logger, "lock"),
	}
}

// Path returns the marker location.
func (g *Guard) Path() string {
	return g.path
}

// Acquire creates the marker. It returns ErrLocked when the marker exists,
// including when this guard already holds it.
func (g *Guard) Acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	file, err := os.OpenFile(g.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrLocked, g.path)
		}
		return fmt.Errorf("create lock file: %w", err)
	}
	_, writeErr := fmt.Fprintf(file, "%d\n", os.Getpid())
	closeErr := file.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(g.path)
		return fmt.Errorf("write lock file: %w", err)
	}

	g.held = true
	g.flock = flock.New(g.path)
	if ok, err := g.flock.TryLock(); err != nil || !ok {
		// The marker alone still provides exclusion.
		g.logger.Debug("advisory lock unavailable", logging.String("lock", g.path), logging.Error(err))
		g.flock = nil
	}
	g.logger.Debug("lock file created", logging.String("lock", g.path))
	return nil
}

// Release deletes the marker. A missing marker is logged and otherwise ignored.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.flock != nil {
		_ = g.flock.Unlock()
		g.flock = nil
	}
	g.held = false

	if err := os.Remove(g.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.logger.Debug("could not find lock file to release", logging.String("lock", g.path))
			return nil
		}
		return fmt.Errorf("remove lock file: %w", err)
	}
	g.logger.Debug("lock file removed", logging.String("lock", g.path))
	return nil
}

// Held reports whether this guard created the marker and has not released it.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// Status describes a marker found on disk.
type Status struct {
	Path   string
	Exists bool
	// Active is true when a live process holds the advisory lock.
	Active bool
	PID    int
	Since  time.Time
}

// Inspect reports on the marker at path without modifying it.
func Inspect(path string) (Status, error) {
	status := Status{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return status, nil
		}
		return status, fmt.Errorf("stat lock file: %w", err)
	}
	status.Exists = true
	status.Since = info.ModTime()

	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			status.PID = pid
		}
	}

	probe := flock.New(path, flock.SetFlag(os.O_RDONLY))
	locked, err := probe.TryRLock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			status.Exists = false
			return status, nil
		}
		return status, fmt.Errorf("probe lock file: %w", err)
	}
	if locked {
		_ = probe.Unlock()
	} else {
		status.Active = true
	}
	return status, nil
}
