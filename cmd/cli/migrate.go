package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iho/tripledger/internal/infrastructure/config"
	"github.com/iho/tripledger/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")

	run := func(direction, short string, fn func(databaseURL, migrationsPath string) error) *cobra.Command {
		return &cobra.Command{
			Use:   direction,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if databaseURL == "" {
					databaseURL = cfg.DatabaseURL
				}
				if err := fn(databaseURL, cfg.MigrationsPath); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", direction)
				return err
			},
		}
	}

	cmd.AddCommand(
		run("up", "Apply all pending migrations", postgres.RunMigrations),
		run("down", "Roll back the last migration", postgres.RunMigrationsDown),
	)

	return cmd
}
