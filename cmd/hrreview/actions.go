package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hrdesk/hrreview/internal/stateflow"
	"github.com/spf13/cobra"
)

func actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "Show what the pipeline does with each category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := stateflow.New().Rows()
			out := cmd.OutOrStdout()

			if f, ok := out.(*os.File); ok && isTerminal(f.Fd()) {
				t := table.New().
					Border(lipgloss.NormalBorder()).
					BorderColumn(false).
					BorderRow(false).
					BorderLeft(false).
					BorderRight(false).
					BorderTop(false).
					BorderBottom(false).
					BorderHeader(true).
					Headers("Category", "Action").
					StyleFunc(func(row, col int) lipgloss.Style {
						if row == table.HeaderRow {
							return listHeaderStyle
						}
						if row >= 0 && row < len(rows) && rows[row].Editable() {
							return listHumanStyle
						}
						return listCellStyle
					})
				for _, r := range rows {
					t = t.Row(r.Category, r.Action)
				}
				fmt.Fprintln(out, t.Render())
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Category\tAction\n")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\n", r.Category, r.Action)
			}
			return w.Flush()
		},
	}
}
