package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/config"
	"github.com/tetris-web/achievements/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Achievement engine for the tetris web game",
	Long: "achievements evaluates game events against a catalog of one-shot goals, " +
		"persists unlocks per profile and pushes them to connected clients.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().String("profile", "", "Profile name (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(tuiCmd)
}

// loadConfig reads the --config file and applies the --profile override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("profile"); p != "" {
		cfg.Profile = p
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return newLoggerFrom(cfg.Log)
}

func newLoggerFrom(cfg logging.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
