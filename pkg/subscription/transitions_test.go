package subscription_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutriplan/portal/pkg/subscription"
)

func activeSnap(plan subscription.Plan) *subscription.Snapshot {
	return &subscription.Snapshot{Status: plan, Active: true}
}

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		snap           *subscription.Snapshot
		wantUpgrades   []subscription.Plan
		wantDowngrades []subscription.Plan
	}{
		{
			name:         "trial offers all paid upgrades",
			snap:         activeSnap(subscription.PlanTrial),
			wantUpgrades: []subscription.Plan{subscription.PlanMonthly, subscription.PlanQuarterly, subscription.PlanAnnual},
		},
		{
			name:         "monthly upgrades only",
			snap:         activeSnap(subscription.PlanMonthly),
			wantUpgrades: []subscription.Plan{subscription.PlanQuarterly, subscription.PlanAnnual},
		},
		{
			name:           "quarterly offers both directions",
			snap:           activeSnap(subscription.PlanQuarterly),
			wantUpgrades:   []subscription.Plan{subscription.PlanAnnual},
			wantDowngrades: []subscription.Plan{subscription.PlanMonthly},
		},
		{
			name:           "annual downgrades only",
			snap:           activeSnap(subscription.PlanAnnual),
			wantDowngrades: []subscription.Plan{subscription.PlanQuarterly, subscription.PlanMonthly},
		},
		{
			name: "canceled account offers nothing",
			snap: &subscription.Snapshot{Status: subscription.PlanQuarterly, Active: true, Canceled: true},
		},
		{
			name: "inactive account offers nothing",
			snap: &subscription.Snapshot{Status: subscription.PlanMonthly, Active: false},
		},
		{
			name: "no subscription offers nothing",
			snap: activeSnap(subscription.PlanNone),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantUpgrades, subscription.UpgradeTargets(tt.snap))
			assert.Equal(t, tt.wantDowngrades, subscription.DowngradeTargets(tt.snap))
		})
	}
}

func TestChangeKind(t *testing.T) {
	t.Parallel()

	t.Run("trial upgrade goes through checkout", func(t *testing.T) {
		t.Parallel()
		kind, ok := subscription.ChangeKind(activeSnap(subscription.PlanTrial), subscription.PlanMonthly)
		assert.True(t, ok)
		assert.Equal(t, subscription.KindUpgradeImmediate, kind)
	})

	t.Run("paid upgrade defers to renewal", func(t *testing.T) {
		t.Parallel()
		kind, ok := subscription.ChangeKind(activeSnap(subscription.PlanMonthly), subscription.PlanAnnual)
		assert.True(t, ok)
		assert.Equal(t, subscription.KindScheduleAtRenewal, kind)
	})

	t.Run("downgrade defers to renewal", func(t *testing.T) {
		t.Parallel()
		kind, ok := subscription.ChangeKind(activeSnap(subscription.PlanAnnual), subscription.PlanMonthly)
		assert.True(t, ok)
		assert.Equal(t, subscription.KindScheduleAtRenewal, kind)
	})

	t.Run("illegal moves are refused", func(t *testing.T) {
		t.Parallel()
		for _, target := range []subscription.Plan{subscription.PlanTrial, subscription.PlanMonthly} {
			_, ok := subscription.ChangeKind(activeSnap(subscription.PlanMonthly), target)
			assert.False(t, ok, "monthly -> %s must not be offered", target)
		}
	})

	t.Run("canceled account is refused", func(t *testing.T) {
		t.Parallel()
		snap := &subscription.Snapshot{Status: subscription.PlanMonthly, Active: true, Canceled: true}
		_, ok := subscription.ChangeKind(snap, subscription.PlanAnnual)
		assert.False(t, ok)
	})
}

func TestCancelAndReactivateAffordances(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		snap          *subscription.Snapshot
		canCancel     bool
		canReactivate bool
	}{
		{"active paid", activeSnap(subscription.PlanMonthly), true, false},
		{"active trial", activeSnap(subscription.PlanTrial), true, false},
		{"canceled still entitled", &subscription.Snapshot{Status: subscription.PlanMonthly, Active: true, Canceled: true}, false, true},
		{"lapsed", &subscription.Snapshot{Status: subscription.PlanNone, Active: false}, false, true},
		{"nil snapshot", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.canCancel, subscription.CanCancel(tt.snap))
			assert.Equal(t, tt.canReactivate, subscription.CanReactivate(tt.snap))
		})
	}
}

func TestCanSubmitScheduled(t *testing.T) {
	t.Parallel()

	assert.True(t, subscription.CanSubmitScheduled(subscription.PlanAnnual, true))
	assert.False(t, subscription.CanSubmitScheduled(subscription.PlanAnnual, false), "unacknowledged submit must be blocked")
	assert.False(t, subscription.CanSubmitScheduled("", true), "no selection must block submit")
	assert.False(t, subscription.CanSubmitScheduled(subscription.PlanTrial, true), "trial is not a schedulable target")
}

func TestSnapshotValidate(t *testing.T) {
	t.Parallel()

	ok := &subscription.Snapshot{Status: subscription.PlanMonthly, Active: true}
	assert.NoError(t, ok.Validate())

	conflicting := &subscription.Snapshot{
		Status:   subscription.PlanMonthly,
		Active:   true,
		Canceled: true,
		NextPlan: &subscription.ScheduledChange{Plan: subscription.PlanAnnual},
	}
	assert.ErrorIs(t, conflicting.Validate(), subscription.ErrConflictingSchedule)
}
