package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"tarbackup/internal/config"
)

// Options selects the record format, the minimum level and the destination.
type Options struct {
	// Level is one of debug, info, warn or error; info when empty.
	Level string
	// Format is "console" or "json"; console when empty.
	Format string
	// Path is the log file records are appended to. Empty means stdout.
	Path string
}

// RunOptions carries the command-line switches that shape run logging.
type RunOptions struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// Console routes output to stdout instead of the configured log file.
	Console bool
}

// New builds a logger from opts. Debug loggers also record the caller.
func New(opts Options) (*slog.Logger, error) {
	var level slog.Level
	if name := strings.TrimSpace(opts.Level); name != "" {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	out, terminal, err := openDestination(opts.Path)
	if err != nil {
		return nil, err
	}
	withSource := level <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(out, level, withSource, terminal)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       level,
			AddSource:   withSource,
			ReplaceAttr: jsonAttr,
		})), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewForRun creates the logger for one backup run. Unless the console switch
// is set, records go to cfg.LogFile, which must be writable.
func NewForRun(cfg *config.Config, opts RunOptions) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	var path string
	if !opts.Console {
		if err := CheckDestination(cfg.LogFile); err != nil {
			return nil, err
		}
		path = cfg.LogFile
	}
	return New(Options{Level: level, Format: cfg.Logging.Format, Path: path})
}

// openDestination opens path for appending, or returns stdout for an empty
// path. The flag reports whether the writer is an interactive terminal.
func openDestination(path string) (io.Writer, bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		fd := os.Stdout.Fd()
		return os.Stdout, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, false, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, false, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, false, nil
}

// jsonAttr renames the built-in keys to ts/level/msg and shortens the source
// to file:line.
func jsonAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return attr
}
