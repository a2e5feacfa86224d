package main

import (
	"github.com/spf13/cobra"
)

type runFlags struct {
	full       bool
	verbose    bool
	consoleLog bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "tarbackup",
		Short:         "Run full or incremental tar backups of configured directories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd, ctx, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVarP(&flags.full, "full", "f", false, "Run a full backup instead of an incremental one")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.Flags().BoolVar(&flags.consoleLog, "console-log", false, "Log to standard output instead of the log file")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))

	return rootCmd
}
