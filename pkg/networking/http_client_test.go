// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	return c.next.RoundTrip(req)
}

func TestHttpClientBuilder_Options(t *testing.T) {
	t.Parallel()

	builder := NewHttpClientBuilder()
	assert.Zero(t, builder.clientTimeout)
	assert.False(t, builder.followRedirects)
	assert.Nil(t, builder.transport)

	transport := &countingTransport{next: http.DefaultTransport}
	assert.Same(t, builder, builder.WithTimeout(5*time.Second))
	assert.Same(t, builder, builder.WithFollowRedirects(true))
	assert.Same(t, builder, builder.WithTransport(transport))

	client := builder.Build()
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.Same(t, transport, client.Transport)
	assert.Nil(t, client.CheckRedirect)
}

func TestHttpClientBuilder_Redirects(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	tests := []struct {
		name       string
		follow     bool
		wantStatus int
		wantCalls  int
	}{
		{name: "single request by default", follow: false, wantStatus: http.StatusMovedPermanently, wantCalls: 1},
		{name: "following redirects", follow: true, wantStatus: http.StatusOK, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport := &countingTransport{next: http.DefaultTransport}
			client := NewHttpClientBuilder().WithTransport(transport).WithFollowRedirects(tt.follow).Build()

			resp, err := client.Get(server.URL + "/old")
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, transport.calls)
		})
	}
}
