// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package smapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	skillerrors "github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/networking"
)

// ServiceError is a call the API answered with a failure status.
type ServiceError struct {
	Operation  string
	StatusCode int
	// Message is the explanation from the response body, if any.
	Message   string
	RequestID string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("failed to %s: status %d", e.Operation, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RequestID != "" {
		msg += " (request id " + e.RequestID + ")"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ServiceMessage extracts the human readable message from an error body.
func ServiceMessage(body string) string {
	if !gjson.Valid(body) {
		return ""
	}
	return gjson.Get(body, "message").String()
}

func wrapCallError(operation string, err error) error {
	var expired *ExpiredCredentialError
	var respErr *networking.ResponseError
	if errors.As(err, &expired) || !errors.As(err, &respErr) {
		return fmt.Errorf("failed to %s: %w", operation, err)
	}
	requestID, _ := respErr.Response.Headers.Get(networking.RequestIDHeader)
	return &ServiceError{
		Operation:  operation,
		StatusCode: respErr.StatusCode(),
		Message:    ServiceMessage(respErr.Response.Body),
		RequestID:  requestID,
		Err:        err,
	}
}

func decode(operation string, resp *networking.Response, v any) error {
	if err := json.Unmarshal([]byte(resp.Body), v); err != nil {
		return fmt.Errorf("failed to %s: invalid response body: %w", operation, err)
	}
	return nil
}

func skillPath(skillID string, parts ...string) string {
	path := "/v1/skills/" + url.PathEscape(skillID)
	for _, part := range parts {
		path += "/" + url.PathEscape(part)
	}
	return path
}

// ListSkills returns one page of the vendor's skills. nextToken continues a
// previous truncated listing and maxResults <= 0 leaves the page size to the
// service.
func (c *Client) ListSkills(ctx context.Context, vendorID, nextToken string, maxResults int) (*ListSkillsResponse, error) {
	const operation = "list skills"
	if vendorID == "" {
		return nil, skillerrors.NewInvalidArgumentError("vendor id is required", nil)
	}

	query := url.Values{}
	query.Set("vendorId", vendorID)
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}
	if maxResults > 0 {
		query.Set("maxResults", strconv.Itoa(maxResults))
	}

	resp, err := c.Call(ctx, http.MethodGet, "/v1/skills", query, nil)
	if err != nil {
		return nil, wrapCallError(operation, err)
	}
	var out ListSkillsResponse
	if err := decode(operation, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSkillStatus returns the build status of a skill's resources.
func (c *Client) GetSkillStatus(ctx context.Context, skillID string) (*SkillStatus, error) {
	const operation = "get skill status"
	if skillID == "" {
		return nil, skillerrors.NewInvalidArgumentError("skill id is required", nil)
	}

	resp, err := c.Call(ctx, http.MethodGet, skillPath(skillID, "status"), nil, nil)
	if err != nil {
		return nil, wrapCallError(operation, err)
	}
	var out SkillStatus
	if err := decode(operation, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSkillManifest returns the manifest of a skill at the given stage.
func (c *Client) GetSkillManifest(ctx context.Context, skillID, stage string) (Manifest, error) {
	const operation = "get skill manifest"
	if skillID == "" {
		return nil, skillerrors.NewInvalidArgumentError("skill id is required", nil)
	}
	switch stage {
	case StageDevelopment, StageLive, StageCertified:
	default:
		return nil, skillerrors.NewInvalidArgumentError(
			fmt.Sprintf("invalid stage %q (valid stages: %s, %s, %s)", stage, StageDevelopment, StageLive, StageCertified), nil)
	}

	resp, err := c.Call(ctx, http.MethodGet, skillPath(skillID, "stages", stage, "manifest"), nil, nil)
	if err != nil {
		return nil, wrapCallError(operation, err)
	}
	if !json.Valid([]byte(resp.Body)) {
		return nil, fmt.Errorf("failed to %s: invalid response body", operation)
	}
	return Manifest(resp.Body), nil
}

// DeleteSkill deletes a skill and all its stages.
func (c *Client) DeleteSkill(ctx context.Context, skillID string) error {
	if skillID == "" {
		return skillerrors.NewInvalidArgumentError("skill id is required", nil)
	}
	if _, err := c.Call(ctx, http.MethodDelete, skillPath(skillID), nil, nil); err != nil {
		return wrapCallError("delete skill", err)
	}
	return nil
}

// ListVendors returns the vendors the authenticated user belongs to.
func (c *Client) ListVendors(ctx context.Context) ([]Vendor, error) {
	const operation = "list vendors"
	resp, err := c.Call(ctx, http.MethodGet, "/v1/vendors", nil, nil)
	if err != nil {
		return nil, wrapCallError(operation, err)
	}
	var out listVendorsResponse
	if err := decode(operation, resp, &out); err != nil {
		return nil, err
	}
	return out.Vendors, nil
}
