package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tarbackup/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.LogFile = filepath.Join(base, "logs", "tarbackup.log")
	cfgVal.LockFile = filepath.Join(base, "run", "backup.lock")
	cfgVal.History.Path = filepath.Join(base, "history.db")
	cfgVal.History.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithItem appends a backup item. Relative source and destination paths are
// resolved against the config's temp directory.
func WithItem(item config.Item) ConfigOption {
	return func(b *configBuilder) {
		if item.Enabled == nil {
			enabled := true
			item.Enabled = &enabled
		}
		if item.SourcePath != "" && !filepath.IsAbs(item.SourcePath) {
			item.SourcePath = filepath.Join(b.baseDir, item.SourcePath)
			if err := os.MkdirAll(item.SourcePath, 0o755); err != nil {
				b.t.Fatalf("mkdir source %s: %v", item.SourcePath, err)
			}
		}
		if item.DestPath != "" && !filepath.IsAbs(item.DestPath) {
			item.DestPath = filepath.Join(b.baseDir, item.DestPath)
		}
		b.cfg.Items = append(b.cfg.Items, item)
	}
}

// WithHistory enables the run history database.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub appends its name and arguments to
// calls.log in the stub directory, then exits 0. If names is empty, tar is
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"tar"}
		}
		binDir := StubDir(b.baseDir)
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		logPath := filepath.Join(binDir, "calls.log")
		for _, name := range names {
			script := []byte("#!/bin/sh\necho \"" + name + " $*\" >> '" + logPath + "'\nexit 0\n")
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// StubDir returns the directory holding stub executables for baseDir.
func StubDir(baseDir string) string {
	return filepath.Join(baseDir, "bin")
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.History.Path)
}

// StubCalls returns the lines recorded by stub executables, in call order.
func StubCalls(t testing.TB, cfg *config.Config) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(StubDir(BaseDir(cfg)), "calls.log"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read stub calls: %v", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
