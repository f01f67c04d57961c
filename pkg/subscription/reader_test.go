package subscription_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/portal/pkg/apiclient"
	"github.com/nutriplan/portal/pkg/credstore"
	"github.com/nutriplan/portal/pkg/subscription"
)

func testClient(t *testing.T, srv *httptest.Server) *apiclient.Client {
	t.Helper()
	creds := credstore.NewMemoryStore()
	require.NoError(t, creds.SetPair(context.Background(), credstore.TokenPair{Access: "acc", Refresh: "ref"}))
	client, err := apiclient.New(srv.URL, creds)
	require.NoError(t, err)
	return client
}

func statusServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/account/status", handler)
	// Refresh always fails so 401s stay 401s in these tests.
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestReaderFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ok with snapshot", func(t *testing.T) {
		t.Parallel()
		srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"status": "quarterly",
				"active": true,
				"canceled": false,
				"next_billing_on": "2026-10-01T00:00:00Z"
			}`))
		})

		reader := subscription.NewReader(testClient(t, srv))
		state, snap, err := reader.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, subscription.StateOK, state)
		require.NotNil(t, snap)
		assert.Equal(t, subscription.PlanQuarterly, snap.Status)
		assert.True(t, snap.Active)
	})

	t.Run("unknown status normalizes to none", func(t *testing.T) {
		t.Parallel()
		srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"legacy_gold","active":false}`))
		})

		reader := subscription.NewReader(testClient(t, srv))
		state, snap, err := reader.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, subscription.StateOK, state)
		assert.Equal(t, subscription.PlanNone, snap.Status)
	})

	t.Run("403 maps to blocked", func(t *testing.T) {
		t.Parallel()
		srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"Your subscription has ended."}`))
		})

		reader := subscription.NewReader(testClient(t, srv))
		state, snap, err := reader.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, subscription.StateBlocked, state)
		assert.Nil(t, snap, "blocked must not attach a snapshot")
	})

	t.Run("404 maps to blocked", func(t *testing.T) {
		t.Parallel()
		srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		reader := subscription.NewReader(testClient(t, srv))
		state, _, err := reader.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, subscription.StateBlocked, state)
	})

	t.Run("401 fires session-invalid hook, not blocked", func(t *testing.T) {
		t.Parallel()
		srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		var loggedOut bool
		reader := subscription.NewReader(testClient(t, srv),
			subscription.WithSessionInvalidHandler(func(context.Context) { loggedOut = true }))

		state, snap, err := reader.Fetch(ctx)
		require.ErrorIs(t, err, subscription.ErrSessionInvalid)
		assert.Equal(t, subscription.StateError, state)
		assert.Nil(t, snap)
		assert.True(t, loggedOut)
	})

	t.Run("server error maps to error state", func(t *testing.T) {
		t.Parallel()
		srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		})

		reader := subscription.NewReader(testClient(t, srv))
		state, _, err := reader.Fetch(ctx)
		assert.Equal(t, subscription.StateError, state)
		var rejection *subscription.BusinessError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, "boom", rejection.Message)
	})

	t.Run("network failure is a transport error, not a rejection", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(nil)
		srv.Close()
		creds := credstore.NewMemoryStore()
		client, err := apiclient.New(srv.URL, creds)
		require.NoError(t, err)

		reader := subscription.NewReader(client)
		state, _, err := reader.Fetch(ctx)
		assert.Equal(t, subscription.StateError, state)
		require.ErrorIs(t, err, apiclient.ErrTransport)
		var rejection *subscription.BusinessError
		assert.False(t, errors.As(err, &rejection), "transport failure must not look like a business rejection")
	})
}
