package main

import (
	"github.com/hrdesk/hrreview/cmd/hrreview/tui"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	var noConfirm bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal UI for reviewing escalations",
		Long: `Interactive terminal UI for reviewing escalations.

The queue loads on start. Select an email, adjust its category, response
and learn flag, then press s to save it. Every save reloads the queue from
the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			return tui.Run(cmd.Context(), tui.Config{
				ServerAddr:     s.client.Addr(),
				Client:         s.client,
				Policy:         s.policy(),
				ConfirmDiscard: s.cfg.ConfirmDiscard && !noConfirm,
				Logger:         s.log,
			})
		},
	}

	cmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "save without asking when other emails have unsaved edits")
	return cmd
}
