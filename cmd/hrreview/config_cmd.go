package main

import (
	"fmt"
	"os"

	"github.com/hrdesk/hrreview/internal/config"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set hrreview configuration",
		Long:  "Inspect or modify values in config.toml under the hrreview data directory.",
	}

	cmd.AddCommand(configGetCmd())
	cmd.AddCommand(configSetCmd())
	cmd.AddCommand(configListCmd())
	cmd.AddCommand(configPathCmd())

	return cmd
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !config.IsValidKey(key) {
				return fmt.Errorf("unknown config key: %q", key)
			}
			cfg, err := config.LoadGlobal()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetConfigValue(cfg, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !config.IsValidKey(key) {
				return fmt.Errorf("unknown config key: %q", key)
			}
			if os.Getenv("HRREVIEW_SERVER_ADDR") != "" {
				return fmt.Errorf("HRREVIEW_SERVER_ADDR is set; unset it before changing the config file")
			}
			cfg, err := config.LoadGlobal()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetConfigValue(cfg, key, value); err != nil {
				return err
			}
			return config.SaveGlobal(cfg)
		},
	}
}

func configListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGlobal()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			for _, kv := range config.ListConfigKeys(cfg) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", kv.Key, kv.Value)
			}
			return nil
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.GlobalConfigPath())
		},
	}
}
