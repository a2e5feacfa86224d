package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tarbackup/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	tarStub    string
	tarCalls   string
	lockPath   string
	logPath    string
	historyDB  string
	sourceDir  string
	destDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		tarStub:    filepath.Join(base, "bin", "tar"),
		tarCalls:   filepath.Join(base, "tar-calls.log"),
		lockPath:   filepath.Join(base, "run", "backup.lock"),
		logPath:    filepath.Join(base, "logs", "tarbackup.log"),
		historyDB:  filepath.Join(base, "history.db"),
		sourceDir:  filepath.Join(base, "src"),
		destDir:    filepath.Join(base, "dest"),
	}
	testsupport.WriteScript(t, env.tarStub, fmt.Sprintf("echo \"$*\" >> '%s'", env.tarCalls))
	if err := os.MkdirAll(env.sourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	return env
}

// writeConfig writes a config with the environment's paths plus extra TOML.
func (e *cliTestEnv) writeConfig(t *testing.T, extra string) {
	t.Helper()
	content := fmt.Sprintf(
		"log_file = %q\nlock_file = %q\ntar_binary = %q\n\n[history]\nenabled = true\npath = %q\n\n%s",
		e.logPath,
		e.lockPath,
		e.tarStub,
		e.historyDB,
		extra,
	)
	testsupport.WriteFile(t, e.configPath, content)
}

func (e *cliTestEnv) docsItem() string {
	return fmt.Sprintf("[[backup_list]]\nname = \"docs\"\nsrc_path = %q\ndest_path = %q\nenabled = true\n", e.sourceDir, e.destDir)
}

func (e *cliTestEnv) tarInvocations(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.tarCalls)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read tar calls: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
