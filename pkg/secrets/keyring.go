// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringProvider stores secrets in the OS keyring under ServiceName.
type KeyringProvider struct {
	service string
}

// NewKeyringProvider creates a provider backed by the OS keyring.
func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{service: ServiceName}
}

// GetSecret retrieves a secret from the keyring.
func (k *KeyringProvider) GetSecret(_ context.Context, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	value, err := keyring.Get(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from keyring: %w", name, err)
	}
	return value, nil
}

// SetSecret stores a secret in the keyring.
func (k *KeyringProvider) SetSecret(_ context.Context, name, value string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := keyring.Set(k.service, name, value); err != nil {
		return fmt.Errorf("failed to write %s to keyring: %w", name, err)
	}
	return nil
}

// DeleteSecret removes a secret from the keyring.
func (k *KeyringProvider) DeleteSecret(_ context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	err := keyring.Delete(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s from keyring: %w", name, err)
	}
	return nil
}
