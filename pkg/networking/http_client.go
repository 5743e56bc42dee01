// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"net/http"
	"time"
)

// HTTPClient is the part of *http.Client the Invoker depends on.
//
//go:generate mockgen -destination=mocks/mock_http_client.go -package=mocks -source=http_client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HttpClientBuilder provides a fluent interface for building HTTP clients
type HttpClientBuilder struct {
	clientTimeout   time.Duration
	followRedirects bool
	transport       http.RoundTripper
}

// NewHttpClientBuilder returns a new HttpClientBuilder. By default the built
// client has no timeout and does not follow redirects, so every call issues
// exactly one request.
func NewHttpClientBuilder() *HttpClientBuilder {
	return &HttpClientBuilder{}
}

// WithTimeout bounds the whole exchange, including reading the body.
func (b *HttpClientBuilder) WithTimeout(timeout time.Duration) *HttpClientBuilder {
	b.clientTimeout = timeout
	return b
}

// WithFollowRedirects lets the client follow 3xx responses.
func (b *HttpClientBuilder) WithFollowRedirects(follow bool) *HttpClientBuilder {
	b.followRedirects = follow
	return b
}

// WithTransport replaces the underlying round tripper.
func (b *HttpClientBuilder) WithTransport(transport http.RoundTripper) *HttpClientBuilder {
	b.transport = transport
	return b
}

// Build creates the configured HTTP client
func (b *HttpClientBuilder) Build() *http.Client {
	transport := b.transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   b.clientTimeout,
	}
	if !b.followRedirects {
		client.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}
