package main

import (
	"fmt"

	"github.com/hrdesk/hrreview/internal/version"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show hrreview version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hrreview %s\n", version.Version)
		},
	}
}
