// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ui renders command output as tables.
package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/stacklok/skillctl/pkg/config"
	"github.com/stacklok/skillctl/pkg/smapi"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader(header),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(len(header), tw.AlignLeft)),
	)
	return table
}

func render(table *tablewriter.Table, rows [][]string) error {
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// RenderSkills renders one page of skills.
func RenderSkills(w io.Writer, skills []smapi.SkillSummary) error {
	if len(skills) == 0 {
		_, err := fmt.Fprintln(w, "No skills found.")
		return err
	}

	rows := make([][]string, 0, len(skills))
	for _, skill := range skills {
		updated := ""
		if !skill.LastUpdated.IsZero() {
			updated = skill.LastUpdated.UTC().Format(time.DateTime)
		}
		rows = append(rows, []string{
			skill.SkillID,
			skillName(skill.NameByLocale),
			skill.Stage,
			skill.PublicationStatus,
			updated,
		})
	}
	return render(newTable(w, []string{"Skill ID", "Name", "Stage", "Status", "Last Updated"}), rows)
}

// skillName prefers the en-US name, then the first locale in sorted order.
func skillName(names map[string]string) string {
	if name, ok := names["en-US"]; ok {
		return name
	}
	locales := make([]string, 0, len(names))
	for locale := range names {
		locales = append(locales, locale)
	}
	if len(locales) == 0 {
		return ""
	}
	sort.Strings(locales)
	return names[locales[0]]
}

// RenderSkillStatus renders the build status of each skill resource.
func RenderSkillStatus(w io.Writer, status *smapi.SkillStatus) error {
	var rows [][]string
	if status.Manifest != nil {
		rows = append(rows, statusRow("manifest", "", *status.Manifest))
	}

	locales := make([]string, 0, len(status.InteractionModel))
	for locale := range status.InteractionModel {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		rows = append(rows, statusRow("interaction model", locale, status.InteractionModel[locale]))
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No status reported.")
		return err
	}
	return render(newTable(w, []string{"Resource", "Locale", "Status", "Errors"}), rows)
}

func statusRow(resource, locale string, status smapi.ResourceStatus) []string {
	state := "-"
	var errs []string
	if req := status.LastUpdateRequest; req != nil {
		state = req.Status
		for _, e := range req.Errors {
			errs = append(errs, e.Message)
		}
	}
	return []string{resource, locale, state, strings.Join(errs, "; ")}
}

// RenderVendors renders the vendors of the authenticated user.
func RenderVendors(w io.Writer, vendors []smapi.Vendor) error {
	if len(vendors) == 0 {
		_, err := fmt.Fprintln(w, "No vendors found.")
		return err
	}

	rows := make([][]string, 0, len(vendors))
	for _, vendor := range vendors {
		rows = append(rows, []string{vendor.ID, vendor.Name, strings.Join(vendor.Roles, ", ")})
	}
	return render(newTable(w, []string{"Vendor ID", "Name", "Roles"}), rows)
}

// RenderProfiles renders the configured profiles without their secrets.
func RenderProfiles(w io.Writer, cfg *config.Config) error {
	names := cfg.ProfileNames()
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "No profiles configured.")
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		profile := cfg.Profiles[name]
		storage := "file"
		if profile.UseKeyring {
			storage = "keyring"
		}
		expires := ""
		if !profile.Token.ExpiresAt.IsZero() {
			expires = profile.Token.ExpiresAt.UTC().Format(time.DateTime)
		}
		rows = append(rows, []string{name, profile.VendorID, storage, expires})
	}
	return render(newTable(w, []string{"Profile", "Vendor ID", "Token Storage", "Access Token Expires"}), rows)
}
