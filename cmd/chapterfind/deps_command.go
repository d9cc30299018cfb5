package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chapterfind/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of the external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
