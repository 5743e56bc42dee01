// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package smapi is a client for the skill management API. Every call goes
// through a networking.Invoker, including the OAuth refresh-token exchange.
package smapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/stacklok/skillctl/pkg/auth"
	"github.com/stacklok/skillctl/pkg/config"
	"github.com/stacklok/skillctl/pkg/networking"
)

// RequestInterceptor runs before a request is sent. Returning an error aborts
// the call.
type RequestInterceptor func(req *networking.Request) error

// ResponseInterceptor runs after a response is received, whether or not its
// status was classified as a failure.
type ResponseInterceptor func(resp *networking.Response) error

// Options configures NewClient.
type Options struct {
	Endpoints config.Endpoints
	// Token is the stored credential. Only RefreshToken is required.
	Token config.Token
	// Invoker sends every request. Defaults to networking.NewInvoker().
	Invoker *networking.Invoker
	// OnTokenRefresh is called when the auth server rotates the refresh token.
	OnTokenRefresh auth.TokenPersister
}

// Client calls the skill management API.
// Interceptors must be registered before the first call.
type Client struct {
	invoker     *networking.Invoker
	apiEndpoint string
	tokenSource oauth2.TokenSource

	// tokenMu serialises token lookups; refreshCtx is the context of the
	// Call holding it.
	tokenMu    sync.Mutex
	refreshCtx context.Context //nolint:containedctx // only set while tokenMu is held

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewClient creates a Client. Token refreshes run under the context of the
// Call that needs them, so ctx only has to outlive construction.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if err := opts.Endpoints.Validate(); err != nil {
		return nil, err
	}
	if opts.Token.RefreshToken == "" {
		return nil, errors.New("a refresh token is required")
	}

	invoker := opts.Invoker
	if invoker == nil {
		invoker = networking.NewInvoker()
	}

	c := &Client{
		invoker:     invoker,
		apiEndpoint: strings.TrimSuffix(opts.Endpoints.APIEndpoint, "/"),
	}

	oauthConfig := &oauth2.Config{
		ClientID:     opts.Endpoints.ClientID,
		ClientSecret: opts.Endpoints.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  strings.TrimSuffix(opts.Endpoints.AuthEndpoint, "/") + TokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	// Token refreshes take the same route as API calls.
	refreshClient := &http.Client{Transport: networking.NewInvokeTransport(c.invokeRefresh)}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, refreshClient)

	c.tokenSource = auth.NewPersistingTokenSource(
		auth.NewRefreshTokenSource(ctx, oauthConfig, opts.Token),
		opts.Token.RefreshToken,
		opts.OnTokenRefresh,
	)
	return c, nil
}

// WithRequestInterceptors appends request interceptors.
func (c *Client) WithRequestInterceptors(interceptors ...RequestInterceptor) *Client {
	c.requestInterceptors = append(c.requestInterceptors, interceptors...)
	return c
}

// WithResponseInterceptors appends response interceptors.
func (c *Client) WithResponseInterceptors(interceptors ...ResponseInterceptor) *Client {
	c.responseInterceptors = append(c.responseInterceptors, interceptors...)
	return c
}

// Call sends an authenticated request to path on the API endpoint. A non-nil
// body is encoded as JSON. Cancelling ctx also aborts a token refresh the
// call triggers.
func (c *Client) Call(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
) (*networking.Response, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	target := c.apiEndpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := &networking.Request{
		Method: method,
		URL:    target,
		Headers: networking.Headers{
			{Key: "Accept", Value: "application/json"},
			{Key: "Authorization", Value: token.Type() + " " + token.AccessToken},
		},
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.Body = string(payload)
		req.Headers = append(req.Headers, networking.Header{Key: "Content-Type", Value: "application/json"})
	}
	return c.invoke(ctx, req)
}

// accessToken returns a valid access token, refreshing it under ctx when it
// has expired.
func (c *Client) accessToken(ctx context.Context) (*oauth2.Token, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.refreshCtx = ctx
	defer func() { c.refreshCtx = nil }()
	return c.tokenSource.Token()
}

// invokeRefresh sends a token request. The oauth2 library calls it from
// within accessToken, on the same goroutine.
func (c *Client) invokeRefresh(ctx context.Context, req *networking.Request) (*networking.Response, error) {
	if c.refreshCtx != nil {
		ctx = c.refreshCtx
	}
	return c.invoke(ctx, req)
}

// invoke runs the interceptor chain around the invoker.
func (c *Client) invoke(ctx context.Context, req *networking.Request) (*networking.Response, error) {
	for _, intercept := range c.requestInterceptors {
		if err := intercept(req); err != nil {
			return nil, fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	resp, err := c.invoker.Invoke(ctx, req)
	received := resp
	if err != nil {
		var respErr *networking.ResponseError
		if !errors.As(err, &respErr) {
			return nil, err
		}
		received = respErr.Response
	}

	for _, intercept := range c.responseInterceptors {
		if ierr := intercept(received); ierr != nil {
			return nil, fmt.Errorf("response interceptor failed: %w", ierr)
		}
	}
	return resp, err
}
