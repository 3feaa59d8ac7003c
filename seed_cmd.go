package main

import (
	"context"
	"fmt"
	"time"

	"dashboard-project/backend/dashboard-service/repositories"
	"dashboard-project/backend/dashboard-service/seed"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Wipe the record store and load a YAML fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fixture, err := seed.Load(seedFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		stores, err := repositories.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close(context.Background())

		counts, err := seed.Apply(ctx, stores, fixture, time.Now())
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d users, %d projects, %d tasks\n", counts.Users, counts.Projects, counts.Tasks)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "seed.yaml", "fixture to load")
}
