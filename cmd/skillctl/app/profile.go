// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/skillctl/cmd/skillctl/app/ui"
	"github.com/stacklok/skillctl/pkg/config"
	"github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/secrets"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage credential profiles",
	}
	cmd.AddCommand(newProfileSetTokenCmd())
	cmd.AddCommand(newProfileListCmd())
	return cmd
}

func newProfileSetTokenCmd() *cobra.Command {
	var (
		refreshToken string
		vendorID     string
		useKeyring   bool
	)

	cmd := &cobra.Command{
		Use:   "set-token",
		Short: "Store a refresh token for the selected profile",
		Long: `Store a refresh token for the profile selected with --profile, creating the
profile if needed. With --keyring the token is kept in the OS keyring instead of
the profile file. Any cached access token is discarded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if refreshToken == "" {
				return errors.NewInvalidArgumentError("--refresh-token is required", nil)
			}
			name := viper.GetString("profile")
			if err := config.ValidateProfileName(name); err != nil {
				return err
			}
			ctx := cmd.Context()

			token := config.Token{RefreshToken: refreshToken}
			if useKeyring {
				if err := newSecretsProvider().SetSecret(ctx, secrets.RefreshTokenKey(name), refreshToken); err != nil {
					return fmt.Errorf("failed to store refresh token: %w", err)
				}
				token.RefreshToken = ""
			}

			err := newProfileStore().Update(ctx, func(c *config.Config) {
				profile := c.Profiles[name]
				profile.Token = token
				profile.UseKeyring = useKeyring
				if vendorID != "" {
					profile.VendorID = vendorID
				}
				c.SetProfile(name, profile)
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s updated\n", name)
			return err
		},
	}

	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "OAuth refresh token")
	cmd.Flags().StringVar(&vendorID, "vendor-id", "", "Default vendor for the profile")
	cmd.Flags().BoolVar(&useKeyring, "keyring", false, "Keep the refresh token in the OS keyring")
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := newProfileStore().Load(cmd.Context())
			if err != nil {
				return err
			}
			return ui.RenderProfiles(cmd.OutOrStdout(), cfg)
		},
	}
}
