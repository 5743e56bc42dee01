// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package smapi

import (
	"encoding/json"
	"time"
)

// Stages a skill manifest can be read from.
const (
	StageDevelopment = "development"
	StageLive        = "live"
	StageCertified   = "certified"
)

// SkillSummary is one entry of a skill listing.
type SkillSummary struct {
	SkillID           string            `json:"skillId"`
	Stage             string            `json:"stage"`
	APIs              []string          `json:"apis,omitempty"`
	PublicationStatus string            `json:"publicationStatus,omitempty"`
	LastUpdated       time.Time         `json:"lastUpdated"`
	NameByLocale      map[string]string `json:"nameByLocale,omitempty"`
}

// ListSkillsResponse is one page of skills.
type ListSkillsResponse struct {
	Skills      []SkillSummary `json:"skills"`
	IsTruncated bool           `json:"isTruncated"`
	NextToken   string         `json:"nextToken,omitempty"`
}

// StatusMessage is an error or warning attached to a build step.
type StatusMessage struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// UpdateRequest describes the most recent change to a skill resource.
type UpdateRequest struct {
	Status   string          `json:"status"`
	Errors   []StatusMessage `json:"errors,omitempty"`
	Warnings []StatusMessage `json:"warnings,omitempty"`
}

// ResourceStatus is the build state of one skill resource.
type ResourceStatus struct {
	ETag              string         `json:"eTag,omitempty"`
	LastUpdateRequest *UpdateRequest `json:"lastUpdateRequest,omitempty"`
}

// SkillStatus reports the manifest and per-locale interaction model status.
type SkillStatus struct {
	Manifest         *ResourceStatus           `json:"manifest,omitempty"`
	InteractionModel map[string]ResourceStatus `json:"interactionModel,omitempty"`
}

// Vendor is an account the authenticated user belongs to.
type Vendor struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

type listVendorsResponse struct {
	Vendors []Vendor `json:"vendors"`
}

// Manifest is the raw skill manifest document.
type Manifest = json.RawMessage
