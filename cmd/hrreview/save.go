package main

import (
	"fmt"
	"strings"

	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/spf13/cobra"
)

func saveCmd() *cobra.Command {
	var (
		category string
		response string
		learn    string
		sets     []string
	)

	cmd := &cobra.Command{
		Use:   "save <email_id>",
		Short: "Save a review decision for one email",
		Long: `Load the queue, apply the given edits to one email, and save it.
Fields that are not given keep their defaults: the classified category,
an empty response, and learn=no. --set field=value may be repeated and
accepts the same fields by name (category, updated_category, response, learn).

Examples:
  hrreview save 7 --category human_intervention --response "Escalating to manager" --learn yes
  hrreview save 11 --category "IT & Access Issues"
  hrreview save 4 --set updated_category=Onboarding --set learn=yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmailID(args[0])
			if err != nil {
				return err
			}
			if category != "" && !escalation.ValidCategory(category) {
				return fmt.Errorf("unknown category %q (see hrreview actions)", category)
			}
			if learn != "" {
				if _, err := escalation.ParseLearn(learn); err != nil {
					return err
				}
			}
			extra, err := parseSets(sets)
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			r := s.reviewer(cmd)
			if _, err := loadRow(cmd, r, id); err != nil {
				return err
			}

			edits := []struct {
				flag  string
				field escalation.Field
				value string
			}{
				{"category", escalation.FieldCategory, category},
				{"response", escalation.FieldResponse, response},
				{"learn", escalation.FieldLearn, learn},
			}
			for _, e := range edits {
				if !cmd.Flags().Changed(e.flag) {
					continue
				}
				if err := r.Edit(id, e.field, e.value); err != nil {
					return fmt.Errorf("--%s: %w", e.flag, err)
				}
			}
			for _, e := range extra {
				if err := r.Edit(id, e.field, e.value); err != nil {
					return fmt.Errorf("--set %s: %w", e.name, err)
				}
			}
			return saveAndReport(cmd, r, id)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "updated category")
	cmd.Flags().StringVar(&response, "response", "", "response text")
	cmd.Flags().StringVar(&learn, "learn", "", "learn from this correction: yes or no")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value edit, may be repeated")
	return cmd
}

type fieldEdit struct {
	name  string
	field escalation.Field
	value string
}

// parseSets turns repeated --set field=value flags into edits, in order.
func parseSets(sets []string) ([]fieldEdit, error) {
	var out []fieldEdit
	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want field=value", kv)
		}
		field, err := escalation.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
		out = append(out, fieldEdit{name: strings.TrimSpace(name), field: field, value: value})
	}
	return out, nil
}

// saveAndReport saves one row. The reviewer prints the outcome through its
// notifier; a failed save exits with status 1.
func saveAndReport(cmd *cobra.Command, r *review.Reviewer, id int64) error {
	res, err := r.Save(cmd.Context(), id)
	if err != nil {
		return silentExit(cmd, 1)
	}
	if res.ResyncErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved, but reloading the queue failed: %v\n", res.ResyncErr)
	}
	return nil
}
