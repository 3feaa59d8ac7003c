package main

import (
	"fmt"
	"os"

	"dashboard-project/backend/dashboard-service/config"
	"dashboard-project/backend/dashboard-service/logging"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:          "dashboard",
	Short:        "Team dashboard service",
	Long:         `HTTP API, fixtures and reports for the team dashboard: tasks, projects, members and their statistics.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to the env file")
	rootCmd.AddCommand(serveCmd, seedCmd, reportCmd)
}

// loadConfig ucitava i proverava konfiguraciju, pa pokrece logovanje.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
