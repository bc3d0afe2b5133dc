// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the strata-authd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strata-authd",
		Short: "Strata auth plugin development daemon",
		Long: `strata-authd hosts the Strata auth schema extension over HTTP for
local development: password authentication, password-reset links, magic-auth
links, and session queries against a PostgreSQL-backed identity list.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
