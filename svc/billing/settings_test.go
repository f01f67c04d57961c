package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/portal/pkg/apiclient"
	"github.com/nutriplan/portal/pkg/credstore"
	"github.com/nutriplan/portal/pkg/subscription"
	"github.com/nutriplan/portal/svc/billing"
)

func newBackend(t *testing.T, handler http.Handler) (*subscription.Reader, *subscription.Engine) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := credstore.NewMemoryStore()
	require.NoError(t, creds.SetPair(context.Background(), credstore.TokenPair{Access: "a-1", Refresh: "r-1"}))

	client, err := apiclient.New(srv.URL, creds)
	require.NoError(t, err)

	return subscription.NewReader(client), subscription.NewEngine(client)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func activeSnapshot(status string) map[string]any {
	return map[string]any{"status": status, "active": true, "canceled": false}
}

func TestSettingsController_Load(t *testing.T) {
	t.Parallel()

	t.Run("ok state carries snapshot", func(t *testing.T) {
		t.Parallel()
		reader, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/account/status", r.URL.Path)
			writeJSON(w, http.StatusOK, activeSnapshot("monthly"))
		}))
		ctrl := billing.NewSettingsController(reader, engine)

		assert.Equal(t, subscription.StateLoading, ctrl.State())
		require.NoError(t, ctrl.Load(context.Background()))
		assert.Equal(t, subscription.StateOK, ctrl.State())
		require.NotNil(t, ctrl.Snapshot())
		assert.Equal(t, subscription.PlanMonthly, ctrl.Snapshot().Status)
	})

	t.Run("403 is blocked with no snapshot", func(t *testing.T) {
		t.Parallel()
		reader, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "trial ended"})
		}))
		ctrl := billing.NewSettingsController(reader, engine)

		require.NoError(t, ctrl.Load(context.Background()))
		assert.Equal(t, subscription.StateBlocked, ctrl.State())
		assert.Nil(t, ctrl.Snapshot())
	})
}

func TestSettingsController_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("success replaces snapshot wholesale", func(t *testing.T) {
		t.Parallel()
		reader, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/account/status":
				writeJSON(w, http.StatusOK, activeSnapshot("monthly"))
			case "/api/v1/account/cancel":
				require.Equal(t, http.MethodPost, r.Method)
				assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
				writeJSON(w, http.StatusOK, map[string]any{
					"message":  "Subscription canceled.",
					"snapshot": map[string]any{"status": "monthly", "active": true, "canceled": true},
				})
			default:
				http.NotFound(w, r)
			}
		}))
		ctrl := billing.NewSettingsController(reader, engine)
		require.NoError(t, ctrl.Load(context.Background()))

		require.NoError(t, ctrl.Cancel(context.Background()))
		assert.True(t, ctrl.Snapshot().Canceled)
		assert.Equal(t, "Subscription canceled.", ctrl.Message())
		assert.Empty(t, ctrl.InlineError())
	})

	t.Run("business rejection keeps snapshot and sets inline error", func(t *testing.T) {
		t.Parallel()
		reader, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/account/status":
				writeJSON(w, http.StatusOK, activeSnapshot("monthly"))
			case "/api/v1/account/cancel":
				writeJSON(w, http.StatusConflict, map[string]string{"error": "billing period already closed"})
			default:
				http.NotFound(w, r)
			}
		}))
		ctrl := billing.NewSettingsController(reader, engine)
		require.NoError(t, ctrl.Load(context.Background()))
		before := ctrl.Snapshot()

		err := ctrl.Cancel(context.Background())
		require.Error(t, err)

		var rejection *subscription.BusinessError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, http.StatusConflict, rejection.Status)

		assert.Same(t, before, ctrl.Snapshot(), "snapshot must stay untouched")
		assert.False(t, ctrl.Snapshot().Canceled)
		assert.Equal(t, "billing period already closed", ctrl.InlineError())
	})

	t.Run("missing response snapshot triggers refetch", func(t *testing.T) {
		t.Parallel()
		canceled := false
		reader, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/account/status":
				writeJSON(w, http.StatusOK, map[string]any{"status": "monthly", "active": true, "canceled": canceled})
			case "/api/v1/account/cancel":
				canceled = true
				writeJSON(w, http.StatusOK, map[string]any{"message": "Subscription canceled."})
			default:
				http.NotFound(w, r)
			}
		}))
		ctrl := billing.NewSettingsController(reader, engine)
		require.NoError(t, ctrl.Load(context.Background()))

		require.NoError(t, ctrl.Cancel(context.Background()))
		assert.True(t, ctrl.Snapshot().Canceled)
		assert.Equal(t, "Subscription canceled.", ctrl.Message())
	})

	t.Run("cancel refused locally for canceled snapshot", func(t *testing.T) {
		t.Parallel()
		reader, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/account/status":
				writeJSON(w, http.StatusOK, map[string]any{"status": "monthly", "active": true, "canceled": true})
			default:
				t.Errorf("unexpected call to %s", r.URL.Path)
			}
		}))
		ctrl := billing.NewSettingsController(reader, engine)
		require.NoError(t, ctrl.Load(context.Background()))

		assert.False(t, ctrl.CanCancel())
		err := ctrl.Cancel(context.Background())
		assert.ErrorIs(t, err, subscription.ErrTransitionNotAllowed)
	})
}
