package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverAddr string
	verbose    bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hrreview",
		Short: "Review escalated HR emails",
		Long: `hrreview lets an HR reviewer work through emails the classification
pipeline escalated: check or correct the category, write a response,
decide whether the pipeline should learn from the correction, and save.`,
	}

	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "backend server address (default: server_addr from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(actionsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Check for exitError to exit with specific code without extra output
		if exitErr, ok := err.(*exitError); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}
