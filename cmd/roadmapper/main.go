package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"roadmapper/internal/config"
	"roadmapper/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command. Running it without a subcommand
// starts the interactive chat.
var rootCmd = &cobra.Command{
	Use:   "roadmapper",
	Short: "roadmapper - conversational project roadmap planner",
	Long: `roadmapper co-designs a project roadmap with you through a multi-turn
conversation with an LLM provider.

Discovery questions gather your project's specifications; once confirmed,
the engine generates a milestone roadmap and fills in subtasks one
milestone at a time. Afterwards you can chat about the plan, expand it
with new milestones, or edit existing ones.

Run without arguments to start the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		return logging.Init(logging.Options{
			Debug: verbose || cfg.Logging.Level == "debug",
			Path:  cfg.Logging.File,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "roadmapper.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
