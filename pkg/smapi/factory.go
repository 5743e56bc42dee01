// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package smapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/stacklok/skillctl/pkg/auth"
	"github.com/stacklok/skillctl/pkg/config"
	"github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/logger"
	"github.com/stacklok/skillctl/pkg/networking"
	"github.com/stacklok/skillctl/pkg/secrets"
)

// Dependencies are the collaborators MakeClient reads credentials and
// settings from.
type Dependencies struct {
	Store   config.Store
	Secrets secrets.Provider
	// Settings carries endpoint overrides. Nil reads the environment only.
	Settings *viper.Viper
	// HTTPClient replaces the client of the invoker. Transport and the
	// configured timeout are ignored when it is set.
	HTTPClient networking.HTTPClient
	// Transport replaces the default round tripper of the built client.
	Transport http.RoundTripper
}

// MakeClient builds a Client for the named profile. With debug set every
// exchange, token refreshes included, is recorded in the returned DebugLog,
// which the caller must flush. Without debug the returned log is nil.
func MakeClient(ctx context.Context, profile string, debug bool, deps Dependencies) (*Client, *networking.DebugLog, error) {
	if err := config.ValidateProfileName(profile); err != nil {
		return nil, nil, err
	}
	endpoints, err := config.LoadEndpoints(deps.Settings)
	if err != nil {
		return nil, nil, err
	}
	if endpoints.ClientID == "" {
		return nil, nil, errors.NewConfigurationError(
			fmt.Sprintf("no OAuth client id configured, set %s", config.EnvVar("client_id")), nil)
	}

	cfg, err := deps.Store.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	token, useKeyring, err := resolveToken(ctx, cfg, profile, deps.Secrets)
	if err != nil {
		return nil, nil, err
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = networking.NewHttpClientBuilder().
			WithTimeout(endpoints.Timeout).
			WithTransport(deps.Transport).
			Build()
	}
	invokerOpts := []networking.InvokerOption{
		networking.WithHTTPClient(httpClient),
		networking.WithErrorDecorator(invalidGrantDecorator(profile)),
		networking.WithUserAgent(endpoints.UserAgent),
	}
	if debug {
		// The hooks run as interceptors so token refreshes are recorded too.
		invokerOpts = append(invokerOpts, networking.WithDebugHooks(networking.NewDebugLog()))
	}
	invoker := networking.NewInvoker(invokerOpts...)

	client, err := NewClient(ctx, Options{
		Endpoints:      *endpoints,
		Token:          token,
		Invoker:        invoker,
		OnTokenRefresh: tokenPersister(ctx, profile, useKeyring, deps),
	})
	if err != nil {
		return nil, nil, err
	}
	if debug {
		client.
			WithRequestInterceptors(invoker.LogRequest).
			WithResponseInterceptors(invoker.LogResponse)
	}
	logger.Debugw("created skill management client",
		"profile", profile,
		"api_endpoint", endpoints.APIEndpoint,
		"debug", debug)
	return client, invoker.DebugLog(), nil
}

// resolveToken returns the stored token for profile, reading the refresh
// token from the keyring when the profile says so.
func resolveToken(ctx context.Context, cfg *config.Config, profile string, provider secrets.Provider) (config.Token, bool, error) {
	p, err := cfg.GetProfile(profile)
	if err != nil {
		return config.Token{}, false, err
	}
	if !p.UseKeyring {
		token, err := cfg.GetToken(profile)
		return token, false, err
	}

	if provider == nil {
		return config.Token{}, true, errors.NewConfigurationError(
			fmt.Sprintf("profile %q keeps its refresh token in the keyring, but no keyring is available", profile), nil)
	}
	refreshToken, err := provider.GetSecret(ctx, secrets.RefreshTokenKey(profile))
	if stderrors.Is(err, secrets.ErrSecretNotFound) {
		return config.Token{}, true, errors.NewNotFoundError(
			fmt.Sprintf("profile %q has no refresh token in the keyring", profile), err)
	}
	if err != nil {
		return config.Token{}, true, fmt.Errorf("failed to read refresh token for profile %q: %w", profile, err)
	}
	token := p.Token
	token.RefreshToken = refreshToken
	return token, true, nil
}

// tokenPersister writes a rotated token back to where it was read from.
func tokenPersister(ctx context.Context, profile string, useKeyring bool, deps Dependencies) auth.TokenPersister {
	return func(token *oauth2.Token) error {
		stored := auth.ToConfigToken(token)
		if useKeyring {
			if err := deps.Secrets.SetSecret(ctx, secrets.RefreshTokenKey(profile), stored.RefreshToken); err != nil {
				return err
			}
			stored.RefreshToken = ""
		}
		return deps.Store.Update(ctx, func(c *config.Config) {
			p := c.Profiles[profile]
			p.Token = stored
			c.SetProfile(profile, p)
		})
	}
}
