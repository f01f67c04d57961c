package subscription

// TransitionKind classifies how a requested change is carried out.
type TransitionKind string

const (
	// KindUpgradeImmediate requires a billing-provider checkout: payment
	// must be established before the new tier starts.
	KindUpgradeImmediate TransitionKind = "upgrade-immediate"
	// KindScheduleAtRenewal is a deferred, no-payment change taking effect
	// at the next renewal boundary.
	KindScheduleAtRenewal TransitionKind = "schedule-at-renewal"
	// KindCancelAutoRenew turns auto-renew off for the current cycle.
	KindCancelAutoRenew TransitionKind = "cancel-auto-renew"
	// KindReactivate restores access for a canceled or inactive account.
	KindReactivate TransitionKind = "reactivate"
)

// TransitionRequest is the ephemeral description of a user-initiated change.
type TransitionRequest struct {
	Kind          TransitionKind
	TargetPlan    Plan
	TargetPriceID string
	WithTrial     bool
	Acknowledged  bool
}

// The legality tables. Upgrading from trial always goes through checkout;
// every move between paid tiers defers to the next renewal.
var (
	upgradeTargets = map[Plan][]Plan{
		PlanTrial:     {PlanMonthly, PlanQuarterly, PlanAnnual},
		PlanMonthly:   {PlanQuarterly, PlanAnnual},
		PlanQuarterly: {PlanAnnual},
	}

	downgradeTargets = map[Plan][]Plan{
		PlanQuarterly: {PlanMonthly},
		PlanAnnual:    {PlanQuarterly, PlanMonthly},
	}
)

// changeable reports whether the account may request any plan change at all.
// A canceled-but-still-entitled account is offered only reactivation.
func changeable(snap *Snapshot) bool {
	return snap != nil && snap.Active && !snap.Canceled
}

// UpgradeTargets returns the upgrade tiers offered from the snapshot's
// current state, in ascending price order. Nil when no upgrade is offered.
func UpgradeTargets(snap *Snapshot) []Plan {
	if !changeable(snap) {
		return nil
	}
	targets := upgradeTargets[snap.Status]
	if len(targets) == 0 {
		return nil
	}
	out := make([]Plan, len(targets))
	copy(out, targets)
	return out
}

// DowngradeTargets returns the downgrade tiers offered from the snapshot's
// current state. Nil when no downgrade is offered.
func DowngradeTargets(snap *Snapshot) []Plan {
	if !changeable(snap) {
		return nil
	}
	targets := downgradeTargets[snap.Status]
	if len(targets) == 0 {
		return nil
	}
	out := make([]Plan, len(targets))
	copy(out, targets)
	return out
}

// ChangeKind resolves the mechanism for moving from the snapshot's current
// plan to target. The second return is false when the move is not offered.
func ChangeKind(snap *Snapshot, target Plan) (TransitionKind, bool) {
	if !changeable(snap) {
		return "", false
	}
	for _, t := range upgradeTargets[snap.Status] {
		if t == target {
			if snap.Status == PlanTrial {
				return KindUpgradeImmediate, true
			}
			return KindScheduleAtRenewal, true
		}
	}
	for _, t := range downgradeTargets[snap.Status] {
		if t == target {
			return KindScheduleAtRenewal, true
		}
	}
	return "", false
}

// CanCancel reports whether cancel-auto-renew is offered: only while active
// and not already canceled.
func CanCancel(snap *Snapshot) bool {
	return changeable(snap)
}

// CanReactivate reports whether reactivation is offered: whenever auto-renew
// is off or access has already lapsed.
func CanReactivate(snap *Snapshot) bool {
	return snap != nil && (snap.Canceled || !snap.Active)
}

// CanSubmitScheduled is the validation predicate behind the mandatory
// acknowledgment step: a schedule-at-renewal request may only be submitted
// with a target selected and the deferral explicitly acknowledged.
func CanSubmitScheduled(target Plan, acknowledged bool) bool {
	return target != "" && target.Paid() && acknowledged
}
