package billing

import (
	"context"
	"errors"
	"sync"

	"github.com/nutriplan/portal/pkg/subscription"
)

// SettingsController drives the subscription section of the settings page:
// an initial status fetch, the cancel action, and the re-fetch after
// mutations. All methods are safe for concurrent use.
type SettingsController struct {
	reader *subscription.Reader
	engine *subscription.Engine

	mu       sync.RWMutex
	state    subscription.ReadState
	snapshot *subscription.Snapshot
	inline   string
	message  string
}

// NewSettingsController creates the controller in the loading state.
func NewSettingsController(reader *subscription.Reader, engine *subscription.Engine) *SettingsController {
	if reader == nil {
		panic("billing: reader is required")
	}
	if engine == nil {
		panic("billing: engine is required")
	}
	return &SettingsController{
		reader: reader,
		engine: engine,
		state:  subscription.StateLoading,
	}
}

// Load fetches the snapshot and resolves the screen state. Any previous
// inline error is cleared: a fresh fetch starts a fresh interaction.
func (c *SettingsController) Load(ctx context.Context) error {
	state, snap, err := c.reader.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.inline = ""
	c.message = ""
	if state == subscription.StateOK {
		c.snapshot = snap
	} else {
		c.snapshot = nil
	}
	return err
}

// State returns the current screen state.
func (c *SettingsController) State() subscription.ReadState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns the displayed snapshot, nil outside StateOK.
func (c *SettingsController) Snapshot() *subscription.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// InlineError returns the message of the last failed action, empty when the
// last action succeeded.
func (c *SettingsController) InlineError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inline
}

// Message returns the confirmation message of the last successful action.
func (c *SettingsController) Message() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message
}

// CanCancel reports whether the cancel action applies to the displayed
// snapshot.
func (c *SettingsController) CanCancel() bool {
	return subscription.CanCancel(c.Snapshot())
}

// Cancel turns auto-renew off. A business rejection records an inline error
// and leaves the displayed snapshot untouched; success replaces it with the
// server's post-mutation snapshot, falling back to a re-fetch when the
// response carries none.
func (c *SettingsController) Cancel(ctx context.Context) error {
	snap := c.Snapshot()

	outcome, err := c.engine.Cancel(ctx, snap)
	if err != nil {
		var rejection *subscription.BusinessError
		if errors.As(err, &rejection) {
			c.setInline(rejection.Message)
		}
		return err
	}

	if outcome.Snapshot != nil {
		c.mu.Lock()
		c.snapshot = outcome.Snapshot
		c.inline = ""
		c.message = outcome.Message
		c.mu.Unlock()
		return nil
	}

	if err := c.Load(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.message = outcome.Message
	c.mu.Unlock()
	return nil
}

func (c *SettingsController) setInline(msg string) {
	if msg == "" {
		msg = "Something went wrong. Please try again."
	}
	c.mu.Lock()
	c.inline = msg
	c.mu.Unlock()
}
