package billing

import (
	"context"
	"errors"
	"sync"

	"github.com/nutriplan/portal/pkg/subscription"
)

// ErrNoReactivationPath is returned when the backend offers no way back in.
var ErrNoReactivationPath = errors.New("billing: no reactivation path available")

// ReactivationController drives the reactivation screen: load the preview,
// expose the plan picker, start the chosen path. A checkout outcome is
// terminal for this screen; an uncancel outcome carries the restored
// snapshot.
type ReactivationController struct {
	engine *subscription.Engine

	mu       sync.RWMutex
	loaded   bool
	picker   *subscription.PlanPicker
	snapshot *subscription.Snapshot
	inline   string
	message  string
}

// NewReactivationController creates the controller; Load must run before
// any other method is useful.
func NewReactivationController(engine *subscription.Engine) *ReactivationController {
	if engine == nil {
		panic("billing: engine is required")
	}
	return &ReactivationController{engine: engine}
}

// Load fetches the reactivation preview and builds the picker.
func (c *ReactivationController) Load(ctx context.Context) error {
	preview, err := c.engine.ReactivationPreview(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.picker = subscription.NewPlanPicker(preview)
	c.loaded = true
	c.inline = ""
	c.message = ""
	c.mu.Unlock()

	if preview.Mode == subscription.ModeNone {
		return ErrNoReactivationPath
	}
	return nil
}

// Picker returns the plan selection model, nil before Load.
func (c *ReactivationController) Picker() *subscription.PlanPicker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.picker
}

// Snapshot returns the restored snapshot after a successful uncancel, nil
// otherwise.
func (c *ReactivationController) Snapshot() *subscription.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// InlineError returns the message of the last failed start.
func (c *ReactivationController) InlineError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inline
}

// Message returns the confirmation message of the last successful start.
func (c *ReactivationController) Message() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message
}

// Start carries out the picker's selection. When the outcome is a checkout
// redirect the returned outcome has CheckoutURL set and this controller's
// state is left alone: the checkout provider owns the rest of the flow.
func (c *ReactivationController) Start(ctx context.Context) (*subscription.Outcome, error) {
	c.mu.RLock()
	picker := c.picker
	loaded := c.loaded
	c.mu.RUnlock()

	if !loaded {
		return nil, ErrNoReactivationPath
	}

	outcome, err := c.engine.StartReactivation(ctx, picker)
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
		return nil, err
	}

	if outcome.CheckoutURL != "" {
		return outcome, nil
	}

	c.mu.Lock()
	c.snapshot = outcome.Snapshot
	c.inline = ""
	c.message = outcome.Message
	c.mu.Unlock()
	return outcome, nil
}
