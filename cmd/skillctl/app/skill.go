// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/stacklok/skillctl/cmd/skillctl/app/ui"
	"github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/smapi"
)

func newSkillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Manage skills",
		Long:  `The skill command provides subcommands to inspect and delete skills.`,
	}
	cmd.AddCommand(newSkillListCmd())
	cmd.AddCommand(newSkillStatusCmd())
	cmd.AddCommand(newSkillManifestCmd())
	cmd.AddCommand(newSkillDeleteCmd())
	return cmd
}

func newSkillListCmd() *cobra.Command {
	var (
		vendorID   string
		nextToken  string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List skills of a vendor",
		Long: `List the skills of a vendor, one page at a time. The vendor defaults to the
vendor id stored in the profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if vendorID == "" {
				_, profile, err := selectedProfile(cmd.Context())
				if err != nil {
					return err
				}
				vendorID = profile.VendorID
			}
			if vendorID == "" {
				return errors.NewInvalidArgumentError("no vendor id given and none stored in the profile, use --vendor-id", nil)
			}

			return withClient(cmd, func(ctx context.Context, client *smapi.Client) error {
				page, err := client.ListSkills(ctx, vendorID, nextToken, maxResults)
				if err != nil {
					return err
				}
				if err := ui.RenderSkills(cmd.OutOrStdout(), page.Skills); err != nil {
					return err
				}
				if page.IsTruncated {
					fmt.Fprintf(cmd.OutOrStdout(), "More skills available, continue with --next-token %s\n", page.NextToken)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&vendorID, "vendor-id", "", "Vendor to list skills for")
	cmd.Flags().StringVar(&nextToken, "next-token", "", "Continue a previous listing")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum number of skills per page")
	return cmd
}

func newSkillStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <skill-id>",
		Short: "Show the build status of a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client *smapi.Client) error {
				status, err := client.GetSkillStatus(ctx, args[0])
				if err != nil {
					return err
				}
				return ui.RenderSkillStatus(cmd.OutOrStdout(), status)
			})
		},
	}
}

func newSkillManifestCmd() *cobra.Command {
	var (
		stage string
		query string
	)

	cmd := &cobra.Command{
		Use:   "manifest <skill-id>",
		Short: "Print the manifest of a skill",
		Long: `Print the manifest of a skill at the given stage. --query selects part of the
manifest with a GJSON path, e.g. manifest.publishingInformation.category.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client *smapi.Client) error {
				manifest, err := client.GetSkillManifest(ctx, args[0], stage)
				if err != nil {
					return err
				}
				return printManifest(cmd, manifest, query)
			})
		},
	}

	cmd.Flags().StringVar(&stage, "stage", smapi.StageDevelopment, "Stage to read (development, live or certified)")
	cmd.Flags().StringVar(&query, "query", "", "GJSON path selecting part of the manifest")
	return cmd
}

func printManifest(cmd *cobra.Command, manifest smapi.Manifest, query string) error {
	raw := []byte(manifest)
	if query != "" {
		result := gjson.GetBytes(manifest, query)
		if !result.Exists() {
			return errors.NewNotFoundError(fmt.Sprintf("nothing in the manifest matches %q", query), nil)
		}
		if result.Type != gjson.JSON {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return err
		}
		raw = []byte(result.Raw)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format manifest: %w", err)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return err
}

func newSkillDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <skill-id>",
		Short: "Delete a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client *smapi.Client) error {
				if err := client.DeleteSkill(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Skill %s deleted\n", args[0])
				return err
			})
		},
	}
}
