package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tarbackup/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check executables, paths, and the lock file before a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			printer := newCheckPrinter(cmd.OutOrStdout())

			printer.section("Executables")
			for _, status := range preflight.CheckSystemDeps(cfg) {
				printer.executable(status)
			}
			fmt.Fprintln(printer.out)
			printer.section("Paths")
			for _, result := range preflight.RunAll(cfg) {
				printer.path(result)
			}
			if len(cfg.Rejected) > 0 {
				fmt.Fprintln(printer.out)
				printer.section("Rejected items")
				for _, issue := range cfg.Rejected {
					printer.rejected(issue)
				}
			}

			if printer.failures > 0 {
				return fmt.Errorf("%d check(s) failed", printer.failures)
			}
			return nil
		},
	}
}
