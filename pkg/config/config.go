// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config contains the definition of the skillctl profile file and the
// static endpoint settings, and the logic required to load and update them.
package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/adrg/xdg"

	"github.com/stacklok/skillctl/pkg/errors"
)

// DefaultProfile is the profile used when none is given.
const DefaultProfile = "default"

// Config represents the contents of the profile file.
type Config struct {
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile holds the credentials and defaults for one named account.
type Profile struct {
	VendorID string `yaml:"vendor_id,omitempty"`
	Token    Token  `yaml:"token,omitempty"`
	// UseKeyring means the refresh token lives in the OS keyring rather than
	// in Token.RefreshToken.
	UseKeyring bool `yaml:"use_keyring,omitempty"`
}

// Token is the persisted OAuth token of a profile.
type Token struct {
	AccessToken  string    `yaml:"access_token,omitempty"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	TokenType    string    `yaml:"token_type,omitempty"`
	ExpiresAt    time.Time `yaml:"expires_at,omitempty"`
}

// defaultPathGenerator generates the default config path using xdg
var defaultPathGenerator = func() (string, error) {
	return xdg.ConfigFile("skillctl/config.yaml")
}

// getConfigPath is the current path generator, can be replaced in tests
var getConfigPath = defaultPathGenerator

// GetProfile returns the named profile.
func (c *Config) GetProfile(name string) (Profile, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, errors.NewNotFoundError(fmt.Sprintf("profile %q is not configured", name), nil)
	}
	return profile, nil
}

// SetProfile adds or replaces the named profile.
func (c *Config) SetProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = profile
}

// GetToken returns the token stored in the profile file for the named
// profile. It fails with a not-found error when the profile or its refresh
// token is missing.
func (c *Config) GetToken(name string) (Token, error) {
	profile, err := c.GetProfile(name)
	if err != nil {
		return Token{}, err
	}
	if profile.Token.RefreshToken == "" {
		return Token{}, errors.NewNotFoundError(fmt.Sprintf("profile %q has no refresh token", name), nil)
	}
	return profile.Token, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
