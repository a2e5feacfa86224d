package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrUnwritableDestination reports a log file that cannot be written.
var ErrUnwritableDestination = errors.New("log destination is not writable")

// CheckDestination verifies that path can be opened for appending, creating the
// parent directory when it is missing.
func CheckDestination(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return fmt.Errorf("%w: no log file configured", ErrUnwritableDestination)
	}
	dir := filepath.Dir(trimmed)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrUnwritableDestination, dir, err)
	}

	info, err := os.Stat(trimmed)
	switch {
	case err == nil:
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrUnwritableDestination, trimmed)
		}
		if err := unix.Access(trimmed, unix.W_OK); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnwritableDestination, trimmed, err)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnwritableDestination, dir, err)
		}
	default:
		return fmt.Errorf("%w: stat %s: %v", ErrUnwritableDestination, trimmed, err)
	}
	return nil
}
