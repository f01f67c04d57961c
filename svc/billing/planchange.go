package billing

import (
	"context"
	"errors"
	"sync"

	"github.com/nutriplan/portal/pkg/subscription"
)

// Package-level errors for the plan-change screen.
var (
	// ErrNoSnapshot is returned when an action runs before a snapshot is loaded
	ErrNoSnapshot = errors.New("billing: no subscription snapshot loaded")

	// ErrNoTarget is returned when submitting without a selected target plan
	ErrNoTarget = errors.New("billing: no target plan selected")
)

// PlanChangeController drives the plan-change screen for paid tiers: pick a
// legal target, acknowledge that the change defers to the next renewal, then
// submit. Trial upgrades never reach this screen; they go through checkout.
type PlanChangeController struct {
	engine *subscription.Engine

	mu           sync.RWMutex
	snapshot     *subscription.Snapshot
	target       subscription.Plan
	acknowledged bool
	inline       string
	message      string
}

// NewPlanChangeController creates the controller for a loaded snapshot.
func NewPlanChangeController(engine *subscription.Engine, snap *subscription.Snapshot) *PlanChangeController {
	if engine == nil {
		panic("billing: engine is required")
	}
	return &PlanChangeController{
		engine:   engine,
		snapshot: snap,
	}
}

// Snapshot returns the snapshot the screen is operating on.
func (c *PlanChangeController) Snapshot() *subscription.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Upgrades returns the legal upgrade targets from the current snapshot.
func (c *PlanChangeController) Upgrades() []subscription.Plan {
	return subscription.UpgradeTargets(c.Snapshot())
}

// Downgrades returns the legal downgrade targets from the current snapshot.
func (c *PlanChangeController) Downgrades() []subscription.Plan {
	return subscription.DowngradeTargets(c.Snapshot())
}

// SetTarget selects the target plan. Illegal targets are refused; changing
// the target resets the acknowledgment, which always refers to one concrete
// change.
func (c *PlanChangeController) SetTarget(target subscription.Plan) error {
	snap := c.Snapshot()
	if snap == nil {
		return ErrNoSnapshot
	}
	if _, ok := subscription.ChangeKind(snap, target); !ok {
		return subscription.ErrTransitionNotAllowed
	}

	c.mu.Lock()
	if c.target != target {
		c.target = target
		c.acknowledged = false
	}
	c.mu.Unlock()
	return nil
}

// Target returns the selected target plan, empty when none is selected.
func (c *PlanChangeController) Target() subscription.Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

// Acknowledge records whether the user confirmed that the change takes
// effect at the next renewal, not immediately.
func (c *PlanChangeController) Acknowledge(v bool) {
	c.mu.Lock()
	c.acknowledged = v
	c.mu.Unlock()
}

// CanSubmit reports whether the submit button is live: a target is selected
// and the deferral is acknowledged.
func (c *PlanChangeController) CanSubmit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return subscription.CanSubmitScheduled(c.target, c.acknowledged)
}

// InlineError returns the message of the last failed submit.
func (c *PlanChangeController) InlineError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inline
}

// Message returns the confirmation message of the last successful submit.
func (c *PlanChangeController) Message() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message
}

// Submit schedules the selected change at the next renewal. Success replaces
// the snapshot with the server's answer, which now carries the scheduled
// change; a business rejection records an inline error and keeps the
// snapshot as it was.
func (c *PlanChangeController) Submit(ctx context.Context) error {
	c.mu.RLock()
	snap := c.snapshot
	target := c.target
	acknowledged := c.acknowledged
	c.mu.RUnlock()

	if snap == nil {
		return ErrNoSnapshot
	}
	if target == "" {
		return ErrNoTarget
	}

	outcome, err := c.engine.ChangePlan(ctx, snap, target, acknowledged)
	if err != nil {
		var rejection *subscription.BusinessError
		if errors.As(err, &rejection) {
			msg := rejection.Message
			if msg == "" {
				msg = "Something went wrong. Please try again."
			}
			c.mu.Lock()
			c.inline = msg
			c.mu.Unlock()
		}
		return err
	}

	c.mu.Lock()
	if outcome.Snapshot != nil {
		c.snapshot = outcome.Snapshot
	}
	c.target = ""
	c.acknowledged = false
	c.inline = ""
	c.message = outcome.Message
	c.mu.Unlock()
	return nil
}
