// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/versions"
)

func TestConfig_GetToken(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cfg := &Config{}
	cfg.SetProfile("default", Profile{
		VendorID: "M123",
		Token:    Token{AccessToken: "atza", RefreshToken: "atzr", TokenType: "bearer", ExpiresAt: expiry},
	})
	cfg.SetProfile("keyring", Profile{UseKeyring: true})

	tests := []struct {
		name         string
		profile      string
		want         Token
		wantNotFound bool
	}{
		{name: "stored token", profile: "default", want: cfg.Profiles["default"].Token},
		{name: "unknown profile", profile: "staging", wantNotFound: true},
		{name: "no refresh token in file", profile: "keyring", wantNotFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cfg.GetToken(tt.profile)
			if tt.wantNotFound {
				require.Error(t, err)
				assert.True(t, errors.IsNotFound(err))
				assert.Contains(t, err.Error(), tt.profile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_ProfileNames(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Empty(t, cfg.ProfileNames())

	cfg.SetProfile("prod", Profile{})
	cfg.SetProfile("default", Profile{})
	cfg.SetProfile("dev", Profile{})
	assert.Equal(t, []string{"default", "dev", "prod"}, cfg.ProfileNames())
}

//nolint:paralleltest // uses t.Setenv
func TestLoadEndpoints(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		endpoints, err := LoadEndpoints(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultAuthEndpoint, endpoints.AuthEndpoint)
		assert.Equal(t, DefaultAPIEndpoint, endpoints.APIEndpoint)
		assert.Equal(t, versions.UserAgent(), endpoints.UserAgent)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SKILLCTL_API_ENDPOINT", "http://localhost:8080")
		t.Setenv("SKILLCTL_CLIENT_ID", "amzn1.application-oa2-client.test")
		t.Setenv("SKILLCTL_CLIENT_SECRET", "shh")

		endpoints, err := LoadEndpoints(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", endpoints.APIEndpoint)
		assert.Equal(t, DefaultAuthEndpoint, endpoints.AuthEndpoint)
		assert.Equal(t, "amzn1.application-oa2-client.test", endpoints.ClientID)
		assert.Equal(t, "shh", endpoints.ClientSecret)
	})

	t.Run("explicit value wins over environment", func(t *testing.T) {
		t.Setenv("SKILLCTL_USER_AGENT", "from-env")

		v := viper.New()
		v.Set("user_agent", "from-flag")
		endpoints, err := LoadEndpoints(v)
		require.NoError(t, err)
		assert.Equal(t, "from-flag", endpoints.UserAgent)
	})

	t.Run("timeout from environment", func(t *testing.T) {
		t.Setenv("SKILLCTL_TIMEOUT", "45s")

		endpoints, err := LoadEndpoints(nil)
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, endpoints.Timeout)
	})

	t.Run("negative timeout", func(t *testing.T) {
		t.Setenv("SKILLCTL_TIMEOUT", "-1s")

		_, err := LoadEndpoints(nil)
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("unrelated keys of the caller are left alone", func(t *testing.T) {
		t.Setenv("SKILLCTL_DEBUG", "true")
		t.Setenv("SKILLCTL_PROFILE", "from-env")

		v := viper.New()
		v.Set("profile", "work")
		_, err := LoadEndpoints(v)
		require.NoError(t, err)

		assert.False(t, v.GetBool("debug"))
		assert.Equal(t, "work", v.GetString("profile"))
		assert.Empty(t, v.GetString("api_endpoint"), "defaults are not written back")
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		t.Setenv("SKILLCTL_AUTH_ENDPOINT", "api.amazon.com")

		_, err := LoadEndpoints(nil)
		require.Error(t, err)
		assert.True(t, errors.IsConfiguration(err))
		assert.Contains(t, err.Error(), "auth_endpoint")
	})
}
