package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tarbackup/internal/history"
	"tarbackup/internal/job"
)

const historyTimeLayout = "2006-01-02 15:04"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent backup runs, or the steps of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.History.Path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				steps, err := store.Steps(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(steps) == 0 {
					fmt.Fprintf(out, "No steps recorded for run %s\n", args[0])
					return nil
				}
				fmt.Fprintln(out, renderSteps(steps, isTerminal(out)))
				return nil
			}

			summaries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(summaries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func renderRuns(summaries []history.Summary) string {
	title := cases.Title(language.Und)
	tw := newHistoryTable(table.Row{"Run", "Mode", "Started", "Duration", "Items", "Excluded", "Failed Steps"}, 4, 5, 6, 7)
	for _, summary := range summaries {
		tw.AppendRow(table.Row{
			summary.ID,
			title.String(summary.Mode),
			summary.StartedAt.Local().Format(historyTimeLayout),
			job.FormatDuration(summary.Duration()),
			summary.ItemCount,
			summary.SkippedItems,
			summary.FailedSteps,
		})
	}
	return tw.Render()
}

// renderSteps lists one run's steps. With colorize set, failed steps have
// their error shown in red.
func renderSteps(steps []history.Step, colorize bool) string {
	tw := newHistoryTable(table.Row{"Item", "Step", "Command", "Took", "Exit", "Status"}, 4, 5)
	for _, step := range steps {
		status := "ok"
		if step.Error != "" {
			status = step.Error
			if colorize {
				status = text.FgRed.Sprint(status)
			}
		}
		tw.AppendRow(table.Row{
			step.Item,
			step.Kind,
			step.Command,
			step.Duration.Round(time.Millisecond).String(),
			step.ExitCode,
			status,
		})
	}
	return tw.Render()
}

// newHistoryTable returns a rounded table with the given 1-based columns
// right-aligned under left-aligned headers.
func newHistoryTable(header table.Row, rightAligned ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, col := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}
