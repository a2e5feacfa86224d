package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePolicies()
	c.normalizeLogging()
	if err := c.normalizeItems(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = defaultLogFile
	}
	if c.LogFile, err = expandPath(strings.TrimSpace(c.LogFile)); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}
	if strings.TrimSpace(c.LockFile) == "" {
		c.LockFile = defaultLockFile
	}
	if c.LockFile, err = expandPath(strings.TrimSpace(c.LockFile)); err != nil {
		return fmt.Errorf("lock_file: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePolicies() {
	c.PreScriptAction = strings.TrimSpace(c.PreScriptAction)
	c.PostScriptAction = strings.TrimSpace(c.PostScriptAction)
	c.TarBinary = strings.TrimSpace(c.TarBinary)
	if c.TarBinary == "" {
		c.TarBinary = defaultTarBinary
	}
	c.ExitPolicy = strings.ToLower(strings.TrimSpace(c.ExitPolicy))
	if c.ExitPolicy == "" {
		c.ExitPolicy = defaultExitPolicy
	}
	c.MissingState = strings.ToLower(strings.TrimSpace(c.MissingState))
	if c.MissingState == "" {
		c.MissingState = defaultMissingState
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeItems() error {
	var err error
	for idx := range c.Items {
		item := &c.Items[idx]
		item.Name = strings.TrimSpace(item.Name)
		item.PreAction = strings.TrimSpace(item.PreAction)
		item.PostAction = strings.TrimSpace(item.PostAction)
		item.TarOptions = strings.TrimSpace(item.TarOptions)
		if item.SourcePath = strings.TrimSpace(item.SourcePath); item.SourcePath != "" {
			if item.SourcePath, err = expandPath(item.SourcePath); err != nil {
				return fmt.Errorf("backup_list[%d].src_path: %w", idx, err)
			}
		}
		if item.DestPath = strings.TrimSpace(item.DestPath); item.DestPath != "" {
			if item.DestPath, err = expandPath(item.DestPath); err != nil {
				return fmt.Errorf("backup_list[%d].dest_path: %w", idx, err)
			}
		}
	}
	return nil
}
