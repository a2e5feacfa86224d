package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tarbackup/internal/archive"
	"tarbackup/internal/history"
	"tarbackup/internal/logging"
	"tarbackup/internal/orchestrator"
)

func runBackup(cmd *cobra.Command, ctx *commandContext, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewForRun(cfg, logging.RunOptions{
		Verbose: flags.verbose,
		Console: flags.consoleLog,
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	logger.Debug("configuration loaded", logging.String("config", ctx.configPath))

	for _, issue := range cfg.Rejected {
		logger.Warn("backup item rejected by configuration",
			logging.String(logging.FieldEventType, "item_rejected"),
			logging.String(logging.FieldItem, issue.Name),
			logging.String("reason", issue.String()),
		)
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("run history unavailable",
				logging.String(logging.FieldEventType, "history_open_failed"),
				logging.String("history_db", cfg.History.Path),
				logging.Error(err),
			)
			store = nil
		} else {
			defer store.Close()
		}
	}

	mode := archive.Incremental
	if flags.full {
		mode = archive.Full
	}

	orch := orchestrator.New(orchestrator.Options{
		Config:  cfg,
		Mode:    mode,
		Logger:  logger,
		History: store,
	})
	if _, err := orch.Run(cmd.Context()); err != nil {
		return fmt.Errorf("backup run: %w", err)
	}
	return nil
}
