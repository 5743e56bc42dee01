// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/versions"
)

// EnvPrefix prefixes every environment variable read into Endpoints,
// e.g. SKILLCTL_API_ENDPOINT.
const EnvPrefix = "SKILLCTL"

const (
	// DefaultAuthEndpoint hosts the OAuth token endpoint.
	DefaultAuthEndpoint = "https://api.amazon.com"
	// DefaultAPIEndpoint is the base URL of the skill management API.
	DefaultAPIEndpoint = "https://api.amazonalexa.com"
)

// Endpoints holds the static client settings.
type Endpoints struct {
	AuthEndpoint string `mapstructure:"auth_endpoint"`
	APIEndpoint  string `mapstructure:"api_endpoint"`
	UserAgent    string `mapstructure:"user_agent"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	// Timeout bounds each HTTP exchange. Zero means no limit.
	Timeout time.Duration `mapstructure:"timeout"`
}

func endpointDefaults() map[string]any {
	return map[string]any{
		"auth_endpoint": DefaultAuthEndpoint,
		"api_endpoint":  DefaultAPIEndpoint,
		"user_agent":    versions.UserAgent(),
		"client_id":     "",
		"client_secret": "",
		"timeout":       "0s",
	}
}

// EnvVar returns the environment variable that sets the endpoint key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// LoadEndpoints resolves Endpoints. Keys explicitly set on v win, then
// SKILLCTL_* environment variables, then the defaults. v may be nil and is
// only read from.
func LoadEndpoints(v *viper.Viper) (*Endpoints, error) {
	settings := viper.New()
	for key, value := range endpointDefaults() {
		settings.SetDefault(key, value)
		if err := settings.BindEnv(key, EnvVar(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", EnvVar(key), err)
		}
		if v != nil && v.IsSet(key) {
			settings.Set(key, v.Get(key))
		}
	}

	var endpoints Endpoints
	if err := settings.Unmarshal(&endpoints); err != nil {
		return nil, errors.NewConfigurationError("failed to read endpoint settings", err)
	}
	if err := endpoints.Validate(); err != nil {
		return nil, err
	}
	return &endpoints, nil
}

// Validate checks that both endpoints are absolute http(s) URLs and that the
// timeout is not negative.
func (e *Endpoints) Validate() error {
	if e.Timeout < 0 {
		return errors.NewConfigurationError(fmt.Sprintf("timeout %s must not be negative", e.Timeout), nil)
	}
	for name, endpoint := range map[string]string{
		"auth_endpoint": e.AuthEndpoint,
		"api_endpoint":  e.APIEndpoint,
	} {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.NewConfigurationError(fmt.Sprintf("%s %q is not an http(s) URL", name, endpoint), err)
		}
	}
	return nil
}
