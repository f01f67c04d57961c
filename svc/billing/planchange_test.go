package billing_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/portal/pkg/subscription"
	"github.com/nutriplan/portal/svc/billing"
)

func paidSnapshot(status subscription.Plan) *subscription.Snapshot {
	return &subscription.Snapshot{Status: status, Active: true}
}

func TestPlanChangeController_TargetSelection(t *testing.T) {
	t.Parallel()

	t.Run("legal targets offered", func(t *testing.T) {
		t.Parallel()
		_, engine := newBackend(t, http.NotFoundHandler())
		ctrl := billing.NewPlanChangeController(engine, paidSnapshot(subscription.PlanQuarterly))

		assert.Equal(t, []subscription.Plan{subscription.PlanAnnual}, ctrl.Upgrades())
		assert.Equal(t, []subscription.Plan{subscription.PlanMonthly}, ctrl.Downgrades())
	})

	t.Run("illegal target refused", func(t *testing.T) {
		t.Parallel()
		_, engine := newBackend(t, http.NotFoundHandler())
		ctrl := billing.NewPlanChangeController(engine, paidSnapshot(subscription.PlanMonthly))

		err := ctrl.SetTarget(subscription.PlanMonthly)
		assert.ErrorIs(t, err, subscription.ErrTransitionNotAllowed)
		assert.Empty(t, ctrl.Target())
	})

	t.Run("changing target resets acknowledgment", func(t *testing.T) {
		t.Parallel()
		_, engine := newBackend(t, http.NotFoundHandler())
		ctrl := billing.NewPlanChangeController(engine, paidSnapshot(subscription.PlanMonthly))

		require.NoError(t, ctrl.SetTarget(subscription.PlanAnnual))
		ctrl.Acknowledge(true)
		assert.True(t, ctrl.CanSubmit())

		require.NoError(t, ctrl.SetTarget(subscription.PlanQuarterly))
		assert.False(t, ctrl.CanSubmit(), "acknowledgment must not survive a target change")
	})

	t.Run("submit gated on acknowledgment", func(t *testing.T) {
		t.Parallel()
		_, engine := newBackend(t, http.NotFoundHandler())
		ctrl := billing.NewPlanChangeController(engine, paidSnapshot(subscription.PlanMonthly))

		require.NoError(t, ctrl.SetTarget(subscription.PlanAnnual))
		assert.False(t, ctrl.CanSubmit())

		err := ctrl.Submit(context.Background())
		assert.ErrorIs(t, err, subscription.ErrAcknowledgmentRequired)
	})
}

func TestPlanChangeController_Submit(t *testing.T) {
	t.Parallel()

	t.Run("success replaces snapshot and resets the form", func(t *testing.T) {
		t.Parallel()
		_, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/account/change-plan", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{
				"message": "Plan change scheduled.",
				"snapshot": map[string]any{
					"status": "monthly", "active": true, "canceled": false,
					"next_plan": map[string]any{"status": "annual"},
				},
			})
		}))

		ctrl := billing.NewPlanChangeController(engine, paidSnapshot(subscription.PlanMonthly))
		require.NoError(t, ctrl.SetTarget(subscription.PlanAnnual))
		ctrl.Acknowledge(true)

		require.NoError(t, ctrl.Submit(context.Background()))
		require.NotNil(t, ctrl.Snapshot().NextPlan)
		assert.Equal(t, subscription.PlanAnnual, ctrl.Snapshot().NextPlan.Plan)
		assert.Equal(t, "Plan change scheduled.", ctrl.Message())
		assert.Empty(t, ctrl.Target())
		assert.False(t, ctrl.CanSubmit())
	})

	t.Run("business rejection keeps snapshot and sets inline error", func(t *testing.T) {
		t.Parallel()
		_, engine := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a change is already scheduled"})
		}))

		snap := paidSnapshot(subscription.PlanMonthly)
		ctrl := billing.NewPlanChangeController(engine, snap)
		require.NoError(t, ctrl.SetTarget(subscription.PlanAnnual))
		ctrl.Acknowledge(true)

		err := ctrl.Submit(context.Background())
		require.Error(t, err)
		assert.Same(t, snap, ctrl.Snapshot())
		assert.Equal(t, "a change is already scheduled", ctrl.InlineError())
	})

	t.Run("trial snapshot cannot schedule", func(t *testing.T) {
		t.Parallel()
		_, engine := newBackend(t, http.NotFoundHandler())
		ctrl := billing.NewPlanChangeController(engine, paidSnapshot(subscription.PlanTrial))

		require.NoError(t, ctrl.SetTarget(subscription.PlanAnnual))
		ctrl.Acknowledge(true)

		err := ctrl.Submit(context.Background())
		assert.ErrorIs(t, err, subscription.ErrCheckoutRequired)
	})
}
