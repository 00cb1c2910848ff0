// Package cli provides Cobra-based CLI commands for the automaker tool.
// It defines the user-facing commands for running generations (run),
// inspecting provider health (doctor), listing model routes (models), and
// serving the orchestrator over NATS (serve).
package cli

import (
	"github.com/spf13/cobra"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/config"
	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "automaker",
	Short: "automaker generation runner",
	Long: `automaker generation runner

Runs AI generation jobs against SDK, CLI, and browser-backed model
providers, with single-flight orchestration per scope and event fan-out
over an embedded or external NATS bus.`,
	Example: `  # Run a one-shot generation with the default model
  automaker run "Summarize the open issues"

  # Pick a model and restrict tools
  automaker run --model gpt-5-codex --read-only "Review this diff"

  # Check which provider backends are installed and authenticated
  automaker doctor

  # Serve the orchestrator over NATS
  automaker serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", ".automaker/config.json", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "Override configured log level (trace|debug|info|warn|error)")
}

// loadConfig loads configuration honoring the global --config and
// --log-level flags and installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		level = override
	}
	logging.Setup(level)
	return cfg, nil
}
