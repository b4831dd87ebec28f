package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/stateflow"
	"github.com/hrdesk/hrreview/internal/termtext"
	"github.com/spf13/cobra"
)

// editFields holds the values bound to the edit form.
type editFields struct {
	category string
	response string
	learn    bool
	save     bool
}

func newEditForm(row review.Row, f *editFields) *huh.Form {
	actions := stateflow.New()
	options := make([]huh.Option[string], 0, len(escalation.Categories()))
	for _, c := range escalation.Categories() {
		label := c
		if action, ok := actions.ActionFor(c); ok && action != "" {
			label = fmt.Sprintf("%s  (%s)", c, action)
		}
		options = append(options, huh.NewOption(label, c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("Email #%d from %s", row.EmailID, termtext.Flatten(row.SenderEmail))).
				Description(editSummary(row)),

			huh.NewSelect[string]().
				Title("Category").
				Description("Corrected category for this email").
				Options(options...).
				Value(&f.category),

			huh.NewText().
				Title("Response").
				Description("Reply to send (optional)").
				Placeholder("e.g., Escalating to manager").
				Value(&f.response),

			huh.NewConfirm().
				Title("Learn from this correction?").
				Affirmative("Yes").
				Negative("No").
				Value(&f.learn),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Save email #%d?", row.EmailID)).
				Affirmative("Save").
				Negative("Cancel").
				Value(&f.save),
		),
	).WithTheme(huh.ThemeDracula())
}

// editSummary renders the email for the form, stripped of terminal escapes.
func editSummary(row review.Row) string {
	return fmt.Sprintf("Subject: %s\nReceived: %s\nClassified: %s\n\n%s",
		termtext.Flatten(row.Subject),
		termtext.Flatten(row.ReceivedAt),
		termtext.Flatten(row.ClassifiedCategory),
		termtext.Sanitize(row.Body))
}

// runEditForm is replaced in tests; huh needs a terminal.
var runEditForm = func(row review.Row, f *editFields) error {
	return newEditForm(row, f).Run()
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <email_id>",
		Short: "Review one email with an interactive form",
		Long: `Load the queue, open a form for one escalated email, and save the
result when confirmed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmailID(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			r := s.reviewer(cmd)
			row, err := loadRow(cmd, r, id)
			if err != nil {
				return err
			}

			f := editFields{
				category: row.UpdatedCategory,
				response: row.Response,
				learn:    row.Learn,
			}
			if !escalation.ValidCategory(f.category) {
				f.category = escalation.HumanIntervention
			}
			if err := runEditForm(row, &f); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Edit canceled.")
					return nil
				}
				return fmt.Errorf("form error: %w", err)
			}
			if !f.save {
				fmt.Fprintln(cmd.OutOrStdout(), "Edit canceled.")
				return nil
			}

			if err := r.SetCategory(id, f.category); err != nil {
				return err
			}
			if err := r.SetResponse(id, f.response); err != nil {
				return err
			}
			if err := r.SetLearn(id, f.learn); err != nil {
				return err
			}
			return saveAndReport(cmd, r, id)
		},
	}
	return cmd
}
