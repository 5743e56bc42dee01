// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/skillctl/pkg/config"
	"github.com/stacklok/skillctl/pkg/logger"
	"github.com/stacklok/skillctl/pkg/networking"
	"github.com/stacklok/skillctl/pkg/secrets"
	"github.com/stacklok/skillctl/pkg/smapi"
)

// Seams replaced in tests.
var (
	newProfileStore = func() config.Store {
		return config.NewLocalStore("")
	}
	newSecretsProvider = func() secrets.Provider {
		return secrets.NewKeyringProvider()
	}
	makeClient = func(ctx context.Context, profile string, debug bool) (*smapi.Client, *networking.DebugLog, error) {
		return smapi.MakeClient(ctx, profile, debug, smapi.Dependencies{
			Store:    newProfileStore(),
			Secrets:  newSecretsProvider(),
			Settings: viper.GetViper(),
		})
	}
)

// withClient builds the client for the selected profile, runs fn and, in
// debug mode, flushes the debug log to the command's output afterwards.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *smapi.Client) error) (err error) {
	profile := viper.GetString("profile")
	client, debugLog, err := makeClient(cmd.Context(), profile, viper.GetBool("debug"))
	if err != nil {
		return err
	}
	if debugLog != nil {
		defer func() {
			if flushErr := debugLog.Flush(cmd.OutOrStdout()); flushErr != nil {
				logger.Errorf("Error writing debug log: %v", flushErr)
				if err == nil {
					err = flushErr
				}
			}
		}()
	}
	return fn(cmd.Context(), client)
}

// selectedProfile loads the profile named by --profile.
func selectedProfile(ctx context.Context) (string, config.Profile, error) {
	name := viper.GetString("profile")
	cfg, err := newProfileStore().Load(ctx)
	if err != nil {
		return name, config.Profile{}, err
	}
	profile, err := cfg.GetProfile(name)
	return name, profile, err
}
