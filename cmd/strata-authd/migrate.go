// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/stratacms/strata-auth/store/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the plugin's database schema",
		Long:  `Apply all pending migrations for the identity list and session tables.`,
		RunE:  runMigrate,
	}
	flags := cmd.Flags()
	flags.String("config", "", "config file path")
	flags.String("database_url", "", "PostgreSQL connection string (overrides config)")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config") //nolint:errcheck // flag is registered above
	cfg, err := LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return err
	}

	migrator, err := postgres.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // best effort on exit
	}()

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}

	ver, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Migrations complete (version %d, dirty=%v)\n", ver, dirty)
	return nil
}
