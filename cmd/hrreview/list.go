package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/termtext"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// listEntry is one queue row as printed by list.
type listEntry struct {
	EmailID            int64  `json:"email_id" yaml:"email_id"`
	SenderEmail        string `json:"sender_email" yaml:"sender_email"`
	Subject            string `json:"subject" yaml:"subject"`
	ReceivedAt         string `json:"received_at" yaml:"received_at"`
	ClassifiedCategory string `json:"classified_category" yaml:"classified_category"`
	Body               string `json:"body,omitempty" yaml:"body,omitempty"`
}

// cells returns the table columns, flattened and stripped of terminal
// escapes. json and yaml output keep the raw values; their encoders escape
// control characters.
func (e listEntry) cells() []string {
	return []string{
		fmt.Sprintf("%d", e.EmailID),
		termtext.Flatten(e.SenderEmail),
		termtext.Flatten(e.Subject),
		termtext.Flatten(e.ReceivedAt),
		termtext.Flatten(e.ClassifiedCategory),
	}
}

func newListEntry(r review.Row, withBody bool) listEntry {
	e := listEntry{
		EmailID:            r.EmailID,
		SenderEmail:        r.SenderEmail,
		Subject:            r.Subject,
		ReceivedAt:         r.ReceivedAt,
		ClassifiedCategory: r.ClassifiedCategory,
	}
	if withBody {
		e.Body = r.Body
	}
	return e
}

func listCmd() *cobra.Command {
	var (
		format   string
		withBody bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List escalated emails",
		Long: `List the emails currently waiting for review.

Examples:
  hrreview list                  # Table
  hrreview list --format json    # JSON array
  hrreview list --format yaml    # YAML, e.g. for scripting
  hrreview list --body --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			r := s.reviewer(cmd)
			if err := r.Load(cmd.Context()); err != nil {
				return silentExit(cmd, 1)
			}
			rows := r.Rows()

			entries := make([]listEntry, 0, len(rows))
			for _, row := range rows {
				entries = append(entries, newListEntry(row, withBody))
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			case "yaml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No escalations waiting for review.")
				return nil
			}
			if f, ok := out.(*os.File); ok && isTerminal(f.Fd()) {
				fmt.Fprintln(out, renderListTable(entries, terminalWidth(f, 120)))
				return nil
			}
			return writeListTabs(out, entries)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or yaml")
	cmd.Flags().BoolVar(&withBody, "body", false, "include email bodies in json and yaml output")
	return cmd
}

// writeListTabs prints entries as aligned plain text for pipes and files.
func writeListTabs(out io.Writer, entries []listEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tFrom\tSubject\tReceived\tCategory\n")
	for _, e := range entries {
		fmt.Fprintln(w, strings.Join(e.cells(), "\t"))
	}
	return w.Flush()
}

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	listCellStyle   = lipgloss.NewStyle().PaddingRight(2)
	listHumanStyle  = lipgloss.NewStyle().PaddingRight(2).
			Foreground(lipgloss.AdaptiveColor{Light: "166", Dark: "214"})
)

// renderListTable draws entries for an interactive terminal.
func renderListTable(entries []listEntry, width int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		BorderHeader(true).
		Headers("ID", "From", "Subject", "Received", "Category").
		Width(width).
		Wrap(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			if col == 4 && row >= 0 && row < len(entries) &&
				entries[row].ClassifiedCategory == escalation.HumanIntervention {
				return listHumanStyle
			}
			return listCellStyle
		})
	for _, e := range entries {
		t = t.Row(e.cells()...)
	}
	return t.Render()
}
