// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package secrets stores profile credentials outside the profile file.
package secrets

import (
	"context"
	"errors"
	"fmt"
)

// ServiceName is the keyring service under which skillctl stores secrets.
const ServiceName = "skillctl"

// ErrSecretNotFound is returned when the requested secret does not exist.
var ErrSecretNotFound = errors.New("secret not found")

// Provider describes a type which can manage secrets.
//
//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=types.go Provider
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
	SetSecret(ctx context.Context, name, value string) error
	DeleteSecret(ctx context.Context, name string) error
}

// RefreshTokenKey returns the secret name holding the refresh token of profile.
func RefreshTokenKey(profile string) string {
	return fmt.Sprintf("%s/refresh_token", profile)
}

func validateName(name string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}
	return nil
}
