package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tarbackup/internal/config"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, "config.toml", `
[[backup_list]]
name = "docs"
src_path = "~/Documents"
dest_path = "~/backups"
enabled = true
`)

	cfg, resolved, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, path)
	}
	if len(cfg.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cfg.Items))
	}
	item := cfg.Items[0]
	if item.SourcePath != filepath.Join(tempHome, "Documents") {
		t.Fatalf("unexpected src path: %q", item.SourcePath)
	}
	if item.DestPath != filepath.Join(tempHome, "backups") {
		t.Fatalf("unexpected dest path: %q", item.DestPath)
	}
	if !item.IsEnabled() {
		t.Fatal("expected item to be enabled")
	}
	if item.HookOnly() {
		t.Fatal("expected archive item, got hook-only")
	}
	if cfg.LockFile != filepath.Join(tempHome, ".local", "share", "tarbackup", "backup.lock") {
		t.Fatalf("unexpected lock file: %q", cfg.LockFile)
	}
	if cfg.TarBinary != "tar" {
		t.Fatalf("unexpected tar binary: %q", cfg.TarBinary)
	}
	if cfg.ExitPolicy != config.ExitPolicyLenient || cfg.Strict() {
		t.Fatalf("expected lenient exit policy, got %q", cfg.ExitPolicy)
	}
	if cfg.MissingState != config.MissingStateError {
		t.Fatalf("unexpected missing_state: %q", cfg.MissingState)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "config.toml", `
show_script_tme = true

[[backup_list]]
name = "docs"
enabled = true
`)

	_, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "show_script_tme") {
		t.Fatalf("expected error to name the unknown key, got %v", err)
	}
}

func TestLoadExcludesInvalidItems(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[[backup_list]]
name = "good"
enabled = true

[[backup_list]]
name = "no-enabled"

[[backup_list]]
enabled = true

[[backup_list]]
name = "good"
enabled = false

[[backup_list]]
name = "../escape"
enabled = true

[[backup_list]]
name = "badhook"
enabled = true
pre_action = "dump | gzip"
`)

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Items) != 1 || cfg.Items[0].Name != "good" {
		t.Fatalf("expected only the first item to survive, got %+v", cfg.Items)
	}
	if len(cfg.Rejected) != 5 {
		t.Fatalf("expected 5 rejected items, got %d: %v", len(cfg.Rejected), cfg.Rejected)
	}

	wantReasons := []string{
		`missing required key "enabled"`,
		`missing required key "name"`,
		"duplicate item name",
		"must not contain path separators",
		"is not a valid command",
	}
	for i, want := range wantReasons {
		if !strings.Contains(cfg.Rejected[i].Reason, want) {
			t.Fatalf("rejected[%d]: expected reason containing %q, got %q", i, want, cfg.Rejected[i].Reason)
		}
	}
	if cfg.Rejected[1].Index != 2 {
		t.Fatalf("expected rejected index 2, got %d", cfg.Rejected[1].Index)
	}
}

func TestLoadValidatesTarOptions(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[[backup_list]]
name = "quoted"
enabled = true
tar_opts = "--exclude='*.tmp files'"

[[backup_list]]
name = "piped"
enabled = true
tar_opts = "--exclude x | gzip"

[[backup_list]]
name = "unterminated"
enabled = true
tar_opts = "--exclude='cache"
`)

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Items) != 1 || cfg.Items[0].Name != "quoted" {
		t.Fatalf("expected only the quoted item to survive, got %+v", cfg.Items)
	}
	if len(cfg.Rejected) != 2 {
		t.Fatalf("expected 2 rejected items, got %d: %v", len(cfg.Rejected), cfg.Rejected)
	}
	for _, issue := range cfg.Rejected {
		if !strings.Contains(issue.Reason, "tar_opts") {
			t.Fatalf("expected tar_opts reason, got %q", issue.Reason)
		}
	}
}

func TestLoadLegacyJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "pre_script_action": "echo start",
  "post_script_action": "echo done",
  "show_script_time": true,
  "backup_list": [
    {"name": "www", "src_path": "/var/www", "dest_path": "/srv/backups", "enabled": true, "tar_opts": "v", "show_time_taken": true},
    {"name": "db", "enabled": true, "pre_action": "echo dump"}
  ]
}`)

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(cfg.Items))
	}
	actions := cfg.ScriptActions()
	if actions.PreAction != "echo start" || actions.PostAction != "echo done" || !actions.ShowTime {
		t.Fatalf("unexpected script actions: %+v", actions)
	}
	if cfg.Items[0].TarOptions != "v" || !cfg.Items[0].ShowTime {
		t.Fatalf("unexpected item options: %+v", cfg.Items[0])
	}
	if !cfg.Items[1].HookOnly() {
		t.Fatal("expected db item to be hook-only")
	}
}

func TestLoadJSONRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "config.json", `{"backup_lst": []}`)
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown JSON key")
	}
}

func TestLoadRejectsInvalidPolicies(t *testing.T) {
	cases := map[string]string{
		"exit_policy":   `exit_policy = "sometimes"`,
		"missing_state": `missing_state = "guess"`,
		"max_parallel":  `max_parallel = -1`,
		"logging":       "[logging]\nformat = \"xml\"",
		"pre_script":    `pre_script_action = "a && b"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "config.toml", body)
			if _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	if _, _, err := config.Load(missing); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if len(cfg.Rejected) != 0 {
		t.Fatalf("sample config should not reject items: %v", cfg.Rejected)
	}
	if len(cfg.Items) != 2 {
		t.Fatalf("expected 2 sample items, got %d", len(cfg.Items))
	}
}
