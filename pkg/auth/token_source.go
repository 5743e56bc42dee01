// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package auth builds the OAuth token sources used by the skill management client.
package auth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/stacklok/skillctl/pkg/config"
	"github.com/stacklok/skillctl/pkg/logger"
)

// TokenPersister is called whenever the authorization server rotates the
// refresh token.
type TokenPersister func(token *oauth2.Token) error

// PersistingTokenSource wraps an oauth2.TokenSource and persists tokens
// whenever their refresh token changes, so the next invocation starts from
// the rotated credential.
type PersistingTokenSource struct {
	source    oauth2.TokenSource
	persister TokenPersister

	mu               sync.Mutex
	lastRefreshToken string
}

// NewPersistingTokenSource creates a new PersistingTokenSource. refreshToken
// is the refresh token the source was created from.
func NewPersistingTokenSource(
	source oauth2.TokenSource,
	refreshToken string,
	persister TokenPersister,
) *PersistingTokenSource {
	return &PersistingTokenSource{
		source:           source,
		persister:        persister,
		lastRefreshToken: refreshToken,
	}
}

// Token returns a valid token, refreshing it if necessary.
// Persistence failures are logged and do not fail the call.
func (p *PersistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.source.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if token.RefreshToken == "" || token.RefreshToken == p.lastRefreshToken || p.persister == nil {
		return token, nil
	}
	if err := p.persister(token); err != nil {
		logger.Warnf("failed to persist refreshed OAuth token: %v", err)
		return token, nil
	}
	logger.Debugf("persisted refreshed OAuth token")
	p.lastRefreshToken = token.RefreshToken
	return token, nil
}

// NewRefreshTokenSource returns a token source seeded with a stored token.
// When the stored access token is missing or expired the first call refreshes
// it at cfg.Endpoint.TokenURL using the HTTP client carried by ctx
// (oauth2.HTTPClient), if any.
func NewRefreshTokenSource(ctx context.Context, cfg *oauth2.Config, stored config.Token) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.ExpiresAt,
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}
	return cfg.TokenSource(ctx, token)
}

// ToConfigToken converts an OAuth token into its persisted form.
func ToConfigToken(token *oauth2.Token) config.Token {
	return config.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}
}
