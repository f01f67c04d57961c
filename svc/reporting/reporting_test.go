package reporting_test

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
	"github.com/nutriplan/portal/svc/reporting"
)

func newService(t *testing.T, handler http.Handler, opts ...reporting.Option) *reporting.Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := credstore.NewMemoryStore()
	require.NoError(t, creds.SetPair(context.Background(), credstore.TokenPair{Access: "a-1", Refresh: "r-1"}))

	client, err := apiclient.New(srv.URL, creds)
	require.NoError(t, err)

	return reporting.New(client, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestService_Overview(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/superadmin/dashboard", r.URL.Path)
			assert.Equal(t, "Bearer a-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{
				"admins": []map[string]string{
					{"email": "owner@clinic.test", "plan": "monthly", "price": "$29.00", "next_billing": "2026-10-01"},
					{"email": "trial@clinic.test", "plan": "trial", "price": "$29.00", "next_billing": "2026-09-12"},
				},
			})
		}))

		overview, err := svc.Overview(context.Background())
		require.NoError(t, err)
		require.Len(t, overview.Admins, 2)
		assert.Equal(t, "owner@clinic.test", overview.Admins[0].Email)
		assert.Equal(t, "monthly", overview.Admins[0].Plan)
	})

	t.Run("403 maps to forbidden", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Unauthorized"})
		}))

		_, err := svc.Overview(context.Background())
		assert.ErrorIs(t, err, reporting.ErrForbidden)
	})

	t.Run("401 fires session invalid hook", func(t *testing.T) {
		t.Parallel()
		var fired bool
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}), reporting.WithSessionInvalidHandler(func(ctx context.Context) {
			fired = true
		}))

		_, err := svc.Overview(context.Background())
		assert.ErrorIs(t, err, reporting.ErrSessionInvalid)
		assert.True(t, fired)
	})

	t.Run("non-json body is malformed", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html>gateway</html>"))
		}))

		_, err := svc.Overview(context.Background())
		assert.ErrorIs(t, err, reporting.ErrMalformedReport)
	})
}

func TestService_Analytics(t *testing.T) {
	t.Parallel()

	t.Run("success includes period in query", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/superadmin/analytics", r.URL.Path)
			require.Equal(t, "week", r.URL.Query().Get("period"))
			writeJSON(w, http.StatusOK, map[string]any{
				"total_revenue": 348.0,
				"transactions":  12,
				"points": []map[string]any{
					{"label": "Aug 25", "amount": 29.0, "amount_cents": 2900},
					{"label": "Aug 26", "amount": 0.0, "amount_cents": 0},
				},
			})
		}))

		analytics, err := svc.Analytics(context.Background(), reporting.PeriodWeek)
		require.NoError(t, err)
		assert.Equal(t, reporting.PeriodWeek, analytics.Period)
		assert.Equal(t, 348.0, analytics.TotalRevenue)
		assert.Equal(t, 12, analytics.Transactions)
		require.Len(t, analytics.Points, 2)
		assert.Equal(t, int64(2900), analytics.Points[0].AmountCents)
	})

	t.Run("invalid period refused locally", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))

		_, err := svc.Analytics(context.Background(), "year")
		assert.ErrorIs(t, err, reporting.ErrInvalidPeriod)
	})

	t.Run("server rejection carries message", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to load analytics"})
		}))

		_, err := svc.Analytics(context.Background(), reporting.PeriodDay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Failed to load analytics")
	})
}
