package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Exit policies decide what a non-zero exit status from a step means.
const (
	// ExitPolicyLenient logs the failure and continues with the item's next step.
	ExitPolicyLenient = "lenient"
	// ExitPolicyStrict stops the item's remaining steps.
	ExitPolicyStrict = "strict"
)

// Missing state policies decide what an incremental run does for an item that
// has no .snar state file yet.
const (
	MissingStateError = "error"
	MissingStateFull  = "full"
)

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" json:"format"`
	Level  string `toml:"level" json:"level"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
}

// Item is one configured backup unit.
//
// Name and Enabled are mandatory. When either SourcePath or DestPath is empty
// the item is hook-only: its pre and post actions run but nothing is archived.
type Item struct {
	Name       string `toml:"name" json:"name" validate:"required,itemname"`
	SourcePath string `toml:"src_path" json:"src_path"`
	DestPath   string `toml:"dest_path" json:"dest_path"`
	Enabled    *bool  `toml:"enabled" json:"enabled" validate:"required"`
	PreAction  string `toml:"pre_action" json:"pre_action" validate:"omitempty,command"`
	PostAction string `toml:"post_action" json:"post_action" validate:"omitempty,command"`
	TarOptions string `toml:"tar_opts" json:"tar_opts" validate:"omitempty,taropts"`
	ShowTime   bool   `toml:"show_time_taken" json:"show_time_taken"`
}

// IsEnabled reports the item's enabled flag.
func (i Item) IsEnabled() bool {
	return i.Enabled != nil && *i.Enabled
}

// HookOnly reports whether the item skips archiving.
func (i Item) HookOnly() bool {
	return strings.TrimSpace(i.SourcePath) == "" || strings.TrimSpace(i.DestPath) == ""
}

// ItemIssue describes a backup item excluded during validation.
type ItemIssue struct {
	Index  int
	Name   string
	Reason string
}

func (i ItemIssue) String() string {
	name := i.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("backup_list[%d] (%s): %s", i.Index, name, i.Reason)
}

// ScriptActions are the run-wide actions wrapped around all items.
type ScriptActions struct {
	PreAction  string
	PostAction string
	ShowTime   bool
	LogFile    string
}

// Config encapsulates all configuration values for tarbackup.
type Config struct {
	PreScriptAction  string `toml:"pre_script_action" json:"pre_script_action"`
	PostScriptAction string `toml:"post_script_action" json:"post_script_action"`
	ShowScriptTime   bool   `toml:"show_script_time" json:"show_script_time"`
	LogFile          string `toml:"log_file" json:"log_file"`
	LockFile         string `toml:"lock_file" json:"lock_file"`
	TarBinary        string `toml:"tar_binary" json:"tar_binary"`
	ExitPolicy       string `toml:"exit_policy" json:"exit_policy"`
	MissingState     string `toml:"missing_state" json:"missing_state"`
	MaxParallel      int    `toml:"max_parallel" json:"max_parallel"`

	Logging Logging `toml:"logging" json:"logging"`
	History History `toml:"history" json:"history"`

	Items []Item `toml:"backup_list" json:"backup_list"`

	// Rejected lists items that failed validation and were removed from Items.
	Rejected []ItemIssue `toml:"-" json:"-"`
}

// ScriptActions returns the run-wide pre/post actions.
func (c *Config) ScriptActions() ScriptActions {
	return ScriptActions{
		PreAction:  c.PreScriptAction,
		PostAction: c.PostScriptAction,
		ShowTime:   c.ShowScriptTime,
		LogFile:    c.LogFile,
	}
}

// Strict reports whether non-zero exit statuses stop an item's queue.
func (c *Config) Strict() bool {
	return c.ExitPolicy == ExitPolicyStrict
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config and the path it was read from. Items that fail validation are moved to
// Config.Rejected; whole-document problems are returned as errors.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(resolvedPath)
	if err != nil {
		return nil, resolvedPath, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := decode(file, resolvedPath, &cfg); err != nil {
		return nil, resolvedPath, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolvedPath, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, err
	}
	cfg.validateItems()

	return &cfg, resolvedPath, nil
}

func decode(r io.Reader, path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		decoder := json.NewDecoder(r)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
		return nil
	}

	decoder := toml.NewDecoder(r).DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return fmt.Errorf("parse config: unknown keys\n%s", strictErr.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Errorf("parse config: line %d column %d: %w", row, col, err)
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// resolveConfigPath picks the explicit path when given, otherwise the first of
// the user config, ./config.toml and ./config.json that exists.
func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return expandPath(path)
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", err
	}
	candidates := []string{defaultPath, "config.toml", "config.json"}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", err
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs, nil
		}
	}
	return defaultPath, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
