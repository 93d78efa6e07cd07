package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"roadmapper/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := "(not set)"
		if cfg.Provider.APIKey != "" {
			key = "(set)"
		}
		fmt.Printf("provider:  %s\n", cfg.Provider.Provider)
		fmt.Printf("model:     %s\n", cfg.Provider.Model)
		fmt.Printf("api key:   %s\n", key)
		fmt.Printf("database:  %s\n", cfg.Store.DatabasePath)
		fmt.Printf("log level: %s\n", cfg.Logging.Level)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
