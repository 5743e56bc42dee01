// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package smapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stacklok/skillctl/pkg/config"
)

const (
	testClientID     = "amzn1.application-oa2-client.test"
	testClientSecret = "client-secret"
	freshAccessToken = "Atza|fresh"
)

// grantToken answers a refresh-token grant. A non-empty rotated value is
// returned as the new refresh token.
func grantToken(rotated string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := fmt.Sprintf(`{"access_token":%q,"token_type":"bearer","expires_in":3600`, freshAccessToken)
		if rotated != "" {
			body += fmt.Sprintf(`,"refresh_token":%q`, rotated)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body + "}"))
	}
}

func rejectGrant(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error_description":"The request has an invalid grant parameter : refresh_token","error":"invalid_grant"}`))
}

// newFakeService serves the token endpoint and the API from one server.
func newFakeService(t *testing.T, token http.HandlerFunc, api http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+TokenPath, token)
	if api != nil {
		mux.HandleFunc("/v1/", api)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testEndpoints(server *httptest.Server) config.Endpoints {
	return config.Endpoints{
		AuthEndpoint: server.URL,
		APIEndpoint:  server.URL,
		UserAgent:    "skillctl-test",
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Amzn-RequestId", "req-42")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
