// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package smapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/skillctl/pkg/config"
	skillerrors "github.com/stacklok/skillctl/pkg/errors"
	"github.com/stacklok/skillctl/pkg/networking"
	networkingmocks "github.com/stacklok/skillctl/pkg/networking/mocks"
	"github.com/stacklok/skillctl/pkg/secrets"
	"github.com/stacklok/skillctl/pkg/secrets/mocks"
)

func testSettings(server *httptest.Server) *viper.Viper {
	v := viper.New()
	v.Set("auth_endpoint", server.URL)
	v.Set("api_endpoint", server.URL)
	v.Set("client_id", testClientID)
	v.Set("client_secret", testClientSecret)
	v.Set("user_agent", "skillctl-test")
	return v
}

func newTestStore(t *testing.T, profiles map[string]config.Profile) *config.LocalStore {
	t.Helper()
	store := config.NewLocalStore(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, store.Save(context.Background(), &config.Config{Profiles: profiles}))
	return store
}

func vendorsAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, `{"vendors":[{"id":"M1ABC","name":"Acme"}]}`)
}

func TestMakeClient(t *testing.T) {
	t.Parallel()

	server := newFakeService(t, grantToken(""), vendorsAPI)
	store := newTestStore(t, map[string]config.Profile{
		"default": {Token: config.Token{RefreshToken: "Atzr|stored"}},
	})

	client, debugLog, err := MakeClient(t.Context(), "default", false, Dependencies{
		Store:    store,
		Secrets:  secrets.NewMemoryProvider(),
		Settings: testSettings(server),
	})
	require.NoError(t, err)
	assert.Nil(t, debugLog)

	vendors, err := client.ListVendors(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Acme", vendors[0].Name)
}

func TestMakeClient_DebugLogsEveryExchange(t *testing.T) {
	t.Parallel()

	server := newFakeService(t, grantToken(""), vendorsAPI)
	store := newTestStore(t, map[string]config.Profile{
		"default": {Token: config.Token{RefreshToken: "Atzr|stored"}},
	})

	client, debugLog, err := MakeClient(t.Context(), "default", true, Dependencies{
		Store:    store,
		Settings: testSettings(server),
	})
	require.NoError(t, err)
	require.NotNil(t, debugLog)

	_, err = client.ListVendors(t.Context())
	require.NoError(t, err)

	lines := debugLog.Lines()
	require.Len(t, lines, 8, "token refresh and API call, each logged once")
	assert.Equal(t, networking.RequestLabel, lines[0])
	assert.Contains(t, lines[1], TokenPath)
	assert.Equal(t, networking.ResponseLabel, lines[2])
	assert.Contains(t, lines[3], `"access_token": "Atza|fresh"`)
	assert.Equal(t, networking.RequestLabel, lines[4])
	assert.Contains(t, lines[5], `"url": "`+server.URL+`/v1/vendors"`)
	assert.Equal(t, networking.ResponseLabel, lines[6])
	assert.Contains(t, lines[7], `"request-id": "req-42"`)

	var out strings.Builder
	require.NoError(t, debugLog.Flush(&out))
	assert.Equal(t, strings.Join(lines, "\n")+"\n", out.String())
}

// recordingTransport counts the requests it forwards to the default transport.
type recordingTransport struct {
	mu    sync.Mutex
	paths []string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.paths = append(rt.paths, req.URL.Path)
	rt.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

func TestMakeClient_BuildsClientFromSettings(t *testing.T) {
	t.Parallel()

	server := newFakeService(t, grantToken(""), vendorsAPI)
	store := newTestStore(t, map[string]config.Profile{
		"default": {Token: config.Token{RefreshToken: "Atzr|stored"}},
	})
	settings := testSettings(server)
	settings.Set("timeout", "30s")
	transport := &recordingTransport{}

	client, _, err := MakeClient(t.Context(), "default", false, Dependencies{
		Store:     store,
		Settings:  settings,
		Transport: transport,
	})
	require.NoError(t, err)

	_, err = client.ListVendors(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{TokenPath, "/v1/vendors"}, transport.paths)
}

func TestMakeClient_ExpiredRefreshToken(t *testing.T) {
	t.Parallel()

	server := newFakeService(t, rejectGrant, vendorsAPI)
	store := newTestStore(t, map[string]config.Profile{
		"work": {Token: config.Token{RefreshToken: "Atzr|revoked"}},
	})

	client, debugLog, err := MakeClient(t.Context(), "work", true, Dependencies{
		Store:    store,
		Settings: testSettings(server),
	})
	require.NoError(t, err)

	_, err = client.ListVendors(t.Context())
	var expired *ExpiredCredentialError
	require.True(t, errors.As(err, &expired), "got %v", err)
	assert.Equal(t, "work", expired.Profile)
	assert.Contains(t, debugLog.Lines()[3], `"statusCode": 400`)
}

func TestMakeClient_PersistsRotatedToken(t *testing.T) {
	t.Parallel()

	t.Run("profile file", func(t *testing.T) {
		t.Parallel()

		server := newFakeService(t, grantToken("Atzr|rotated"), vendorsAPI)
		store := newTestStore(t, map[string]config.Profile{
			"default": {VendorID: "M1ABC", Token: config.Token{RefreshToken: "Atzr|stored"}},
		})

		client, _, err := MakeClient(t.Context(), "default", false, Dependencies{Store: store, Settings: testSettings(server)})
		require.NoError(t, err)
		_, err = client.ListVendors(t.Context())
		require.NoError(t, err)

		cfg, err := store.Load(t.Context())
		require.NoError(t, err)
		profile := cfg.Profiles["default"]
		assert.Equal(t, "M1ABC", profile.VendorID)
		assert.Equal(t, "Atzr|rotated", profile.Token.RefreshToken)
		assert.Equal(t, freshAccessToken, profile.Token.AccessToken)
	})

	t.Run("keyring", func(t *testing.T) {
		t.Parallel()

		server := newFakeService(t, grantToken("Atzr|rotated"), vendorsAPI)
		store := newTestStore(t, map[string]config.Profile{"default": {UseKeyring: true}})
		provider := secrets.NewMemoryProvider()
		require.NoError(t, provider.SetSecret(t.Context(), secrets.RefreshTokenKey("default"), "Atzr|stored"))

		client, _, err := MakeClient(t.Context(), "default", false, Dependencies{
			Store:    store,
			Secrets:  provider,
			Settings: testSettings(server),
		})
		require.NoError(t, err)
		_, err = client.ListVendors(t.Context())
		require.NoError(t, err)

		stored, err := provider.GetSecret(t.Context(), secrets.RefreshTokenKey("default"))
		require.NoError(t, err)
		assert.Equal(t, "Atzr|rotated", stored)

		cfg, err := store.Load(t.Context())
		require.NoError(t, err)
		assert.Empty(t, cfg.Profiles["default"].Token.RefreshToken, "keyring tokens stay out of the profile file")
		assert.True(t, cfg.Profiles["default"].UseKeyring)
	})
}

func TestMakeClient_Errors(t *testing.T) {
	t.Parallel()

	server := newFakeService(t, grantToken(""), vendorsAPI)

	t.Run("missing client id", func(t *testing.T) {
		t.Parallel()

		settings := testSettings(server)
		settings.Set("client_id", "")
		_, _, err := MakeClient(t.Context(), "default", false, Dependencies{
			Store:    newTestStore(t, nil),
			Settings: settings,
		})
		require.Error(t, err)
		assert.True(t, skillerrors.IsConfiguration(err))
	})

	t.Run("unknown profile", func(t *testing.T) {
		t.Parallel()

		_, _, err := MakeClient(t.Context(), "staging", false, Dependencies{
			Store:    newTestStore(t, map[string]config.Profile{"default": {}}),
			Settings: testSettings(server),
		})
		require.Error(t, err)
		assert.True(t, skillerrors.IsNotFound(err))
	})

	t.Run("invalid profile name", func(t *testing.T) {
		t.Parallel()

		_, _, err := MakeClient(t.Context(), "../default", false, Dependencies{
			Store:    newTestStore(t, nil),
			Settings: testSettings(server),
		})
		require.Error(t, err)
		assert.True(t, skillerrors.IsInvalidArgument(err))
	})

	t.Run("keyring without provider", func(t *testing.T) {
		t.Parallel()

		_, _, err := MakeClient(t.Context(), "default", false, Dependencies{
			Store:    newTestStore(t, map[string]config.Profile{"default": {UseKeyring: true}}),
			Settings: testSettings(server),
		})
		require.Error(t, err)
		assert.True(t, skillerrors.IsConfiguration(err))
	})

	t.Run("keyring lookups", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(ctrl)
		store := newTestStore(t, map[string]config.Profile{"default": {UseKeyring: true}})

		provider.EXPECT().
			GetSecret(gomock.Any(), "default/refresh_token").
			Return("", secrets.ErrSecretNotFound)
		_, _, err := MakeClient(t.Context(), "default", false, Dependencies{Store: store, Secrets: provider, Settings: testSettings(server)})
		require.Error(t, err)
		assert.True(t, skillerrors.IsNotFound(err))

		locked := errors.New("keyring is locked")
		provider.EXPECT().
			GetSecret(gomock.Any(), "default/refresh_token").
			Return("", locked)
		_, _, err = MakeClient(t.Context(), "default", false, Dependencies{Store: store, Secrets: provider, Settings: testSettings(server)})
		require.ErrorIs(t, err, locked)
		assert.False(t, skillerrors.IsNotFound(err))
	})
}

func TestMakeClient_TransportErrorPassesThrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := networkingmocks.NewMockHTTPClient(ctrl)
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	httpClient.EXPECT().Do(gomock.Any()).Return(nil, refused)

	server := newFakeService(t, grantToken(""), vendorsAPI)
	store := newTestStore(t, map[string]config.Profile{
		"default": {Token: config.Token{RefreshToken: "Atzr|stored"}},
	})

	client, debugLog, err := MakeClient(t.Context(), "default", true, Dependencies{
		Store:      store,
		Settings:   testSettings(server),
		HTTPClient: httpClient,
	})
	require.NoError(t, err)

	_, err = client.ListVendors(t.Context())
	require.ErrorIs(t, err, refused)
	assert.True(t, networking.IsTransportError(err))
	assert.Equal(t, []string{networking.RequestLabel}, debugLog.Lines()[:1])
	assert.Len(t, debugLog.Lines(), 2, "no response entry without a response")
}
