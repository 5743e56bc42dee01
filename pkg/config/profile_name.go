// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"regexp"

	"github.com/stacklok/skillctl/pkg/errors"
)

const maxProfileNameLength = 64

var profileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateProfileName checks that name can be used as a profile name. Profile
// names become part of keyring keys, so separators are rejected.
func ValidateProfileName(name string) error {
	if name == "" {
		return errors.NewInvalidArgumentError("profile name cannot be empty", nil)
	}
	if len(name) > maxProfileNameLength {
		return errors.NewInvalidArgumentError(
			fmt.Sprintf("profile name too long (max %d characters)", maxProfileNameLength), nil)
	}
	if !profileNamePattern.MatchString(name) {
		return errors.NewInvalidArgumentError(
			fmt.Sprintf("invalid profile name %q: only alphanumeric characters, dots, hyphens, and underscores are allowed", name), nil)
	}
	return nil
}
