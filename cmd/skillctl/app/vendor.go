// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillctl/cmd/skillctl/app/ui"
	"github.com/stacklok/skillctl/pkg/smapi"
)

func newVendorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Inspect vendors",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the vendors of the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, client *smapi.Client) error {
				vendors, err := client.ListVendors(ctx)
				if err != nil {
					return err
				}
				return ui.RenderVendors(cmd.OutOrStdout(), vendors)
			})
		},
	})
	return cmd
}
