// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the skillctl command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/skillctl/pkg/config"
	"github.com/stacklok/skillctl/pkg/logger"
)

// NewRootCmd creates a new root command for the skillctl CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "skillctl",
		DisableAutoGenTag: true,
		Short:             "skillctl manages skills through the skill management API",
		Long: `skillctl manages skills through the skill management API.

Credentials are read from named profiles stored in $XDG_CONFIG_HOME/skillctl/config.yaml,
with refresh tokens optionally kept in the OS keyring. Endpoints and OAuth client
credentials are read from SKILLCTL_* environment variables.

With --debug every HTTP request and response, token refreshes included, is printed
to standard output when the command finishes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Print every HTTP exchange and enable debug logs")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}
	rootCmd.PersistentFlags().String("profile", config.DefaultProfile, "Profile to read credentials from")
	if err := viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile")); err != nil {
		logger.Errorf("Error binding profile flag: %v", err)
	}

	rootCmd.AddCommand(newSkillCmd())
	rootCmd.AddCommand(newVendorCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
