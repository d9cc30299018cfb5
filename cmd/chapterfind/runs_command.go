package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chapterfind/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show run history from the local database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Store.Enabled {
				return fmt.Errorf("run history is disabled in the configuration")
			}

			history, err := store.Open(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer history.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				return printRunChapters(cmd, history, args[0])
			}

			runs, err := history.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					run.BaseName,
					run.Status,
					run.Profile,
					yesNo(run.TestRun),
					fmt.Sprintf("%d", run.SourceCount),
					fmt.Sprintf("%d", run.ChapterCount),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Input", "Status", "Profile", "Test", "Sources", "Chapters"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list")
	return cmd
}

func printRunChapters(cmd *cobra.Command, history *store.Store, runID string) error {
	chapters, err := history.ChaptersForRun(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("list chapters: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(chapters) == 0 {
		fmt.Fprintln(out, "No chapters recorded for this run")
		return nil
	}

	rows := make([][]string, 0, len(chapters))
	for _, chapter := range chapters {
		rows = append(rows, []string{
			chapter.Timestamp,
			chapter.Title,
			fmt.Sprintf("%d", chapter.SourceIndex),
			chapter.Source,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Timestamp", "Title", "#", "Source"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
	))
	return nil
}
