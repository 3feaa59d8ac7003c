package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

var reportDashboard bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the team report as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		app, err := newApplication(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.close(context.Background())

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if reportDashboard {
			return enc.Encode(app.services.Reports.Dashboard(ctx))
		}
		return enc.Encode(app.services.Reports.Report(ctx))
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportDashboard, "dashboard", false, "print the dashboard summary instead of the full report")
}
