package subscription

import (
	"strings"
	"time"
)

// Plan is a subscription tier. Plans form a strict price ladder used by the
// transition rules: trial < monthly < quarterly < annual.
type Plan string

const (
	PlanNone      Plan = "none"
	PlanTrial     Plan = "trial"
	PlanMonthly   Plan = "monthly"
	PlanQuarterly Plan = "quarterly"
	PlanAnnual    Plan = "annual"
)

// Known reports whether p is one of the closed set of plan tiers.
func (p Plan) Known() bool {
	switch p {
	case PlanNone, PlanTrial, PlanMonthly, PlanQuarterly, PlanAnnual:
		return true
	}
	return false
}

// Paid reports whether p is a paid tier.
func (p Plan) Paid() bool {
	switch p {
	case PlanMonthly, PlanQuarterly, PlanAnnual:
		return true
	}
	return false
}

// TrialInfo describes an in-progress trial.
type TrialInfo struct {
	DaysRemaining int        `json:"days_remaining"`
	EndsOn        *time.Time `json:"ends_on,omitempty"`
	ConvertsTo    Plan       `json:"converts_to_plan,omitempty"`
}

// ScheduledChange is a plan change already scheduled to take effect at the
// next renewal boundary.
type ScheduledChange struct {
	Plan         Plan       `json:"status"`
	EffectiveOn  *time.Time `json:"effective_on,omitempty"`
	PriceDisplay string     `json:"price_display,omitempty"`
}

// Snapshot is the authoritative point-in-time read of a tenant's
// subscription state. It is re-fetched per page view and replaced wholesale
// after mutations; pages never patch individual fields.
type Snapshot struct {
	Status             Plan             `json:"status"`
	Active             bool             `json:"active"`
	Canceled           bool             `json:"canceled"`
	CurrentCycleEndsOn *time.Time       `json:"current_cycle_ends_on,omitempty"`
	NextBillingOn      *time.Time       `json:"next_billing_on,omitempty"`
	NextPlan           *ScheduledChange `json:"next_plan,omitempty"`
	Trial              *TrialInfo       `json:"trial,omitempty"`
}

// Validate enforces the snapshot invariant: a cycle either auto-renews into
// a changed plan or ends with no successor, never both.
func (s *Snapshot) Validate() error {
	if s.Canceled && s.NextPlan != nil {
		return ErrConflictingSchedule
	}
	return nil
}

// normalize coerces backend variance into the canonical shape: unknown or
// empty statuses collapse to "none".
func (s *Snapshot) normalize() {
	s.Status = Plan(strings.TrimSpace(string(s.Status)))
	if !s.Status.Known() || s.Status == "" {
		s.Status = PlanNone
	}
}

// PlanOption is a catalog entry offered during reactivation or checkout.
type PlanOption struct {
	PriceID      string `json:"price_id"`
	DisplayName  string `json:"display_name"`
	PriceDisplay string `json:"price_display,omitempty"`
	AllowTrial   bool   `json:"allow_trial"`
	TrialDays    int    `json:"trial_days,omitempty"`
}

// normalize enforces the catalog invariant: trial days are meaningless when
// the option disallows trials.
func (o *PlanOption) normalize() {
	if o.DisplayName == "" {
		o.DisplayName = "Plan"
	}
	if !o.AllowTrial {
		o.TrialDays = 0
	}
}

// ReactivationMode is the backend's decision on how a canceled or inactive
// account may be restored.
type ReactivationMode string

const (
	// ModeUncancel resumes the existing plan with no payment event.
	ModeUncancel ReactivationMode = "uncancel"
	// ModeNewSubscription starts a fresh subscription through checkout.
	ModeNewSubscription ReactivationMode = "new_subscription"
	// ModeNone means no reactivation path is currently available.
	ModeNone ReactivationMode = "none"
)

// ReactivationPreview is the backend's answer to "what can this account do
// to restore access".
type ReactivationPreview struct {
	Mode           ReactivationMode `json:"reactivation_mode"`
	Plans          []PlanOption     `json:"plans"`
	CurrentPriceID string           `json:"current_price_id,omitempty"`
}
