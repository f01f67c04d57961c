package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nutriplan/portal/pkg/apiclient"
)

const (
	cancelPath     = "/api/v1/account/cancel"
	changePlanPath = "/api/v1/account/change-plan"
	checkoutPath   = "/api/v1/account/checkout"
	previewPath    = "/api/v1/account/reactivation-preview"
)

// Outcome is the result of a transition call. When CheckoutURL is set the
// checkout provider has become the source of truth: Snapshot is nil and the
// only side effect was the redirect.
type Outcome struct {
	Action      string
	Message     string
	Snapshot    *Snapshot
	CheckoutURL string
}

// Engine encodes which plan changes are legal from which state and carries
// them out against the backend. Legality is checked client-side before any
// network call; the backend re-validates everything.
type Engine struct {
	client   *apiclient.Client
	redirect func(url string)
	log      *slog.Logger

	onSessionInvalid func(ctx context.Context)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRedirect sets the function invoked with the checkout URL when a
// transition requires the billing provider. Browsers navigate; the CLI
// prints the URL.
func WithRedirect(fn func(url string)) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.redirect = fn
		}
	}
}

// WithEngineSessionInvalidHandler registers the hook fired on 401 responses.
func WithEngineSessionInvalidHandler(fn func(ctx context.Context)) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.onSessionInvalid = fn
		}
	}
}

// WithEngineLogger sets the structured logger. Nil loggers are ignored.
func WithEngineLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates a transition engine over the given API client.
func NewEngine(client *apiclient.Client, opts ...EngineOption) *Engine {
	if client == nil {
		panic("subscription: api client is required")
	}
	e := &Engine{
		client:           client,
		redirect:         func(string) {},
		log:              slog.New(slog.DiscardHandler),
		onSessionInvalid: func(context.Context) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cancel turns auto-renew off for the current cycle. Access continues until
// the cycle ends; the returned snapshot replaces the displayed one wholesale.
func (e *Engine) Cancel(ctx context.Context, snap *Snapshot) (*Outcome, error) {
	if !CanCancel(snap) {
		return nil, ErrTransitionNotAllowed
	}
	return e.mutate(ctx, cancelPath, nil, "cancel")
}

// ChangePlan schedules a move between paid tiers at the next renewal. It
// refuses trial upgrades (those go through Checkout) and refuses to submit
// without the deferral acknowledged; both checks run before any network
// traffic.
func (e *Engine) ChangePlan(ctx context.Context, snap *Snapshot, target Plan, acknowledged bool) (*Outcome, error) {
	kind, ok := ChangeKind(snap, target)
	if !ok {
		return nil, ErrTransitionNotAllowed
	}
	if kind == KindUpgradeImmediate {
		return nil, ErrCheckoutRequired
	}
	if !CanSubmitScheduled(target, acknowledged) {
		return nil, ErrAcknowledgmentRequired
	}

	body := map[string]string{"target_plan": string(target)}
	return e.mutate(ctx, changePlanPath, body, "change-plan")
}

// CheckoutRequest starts a payment-bearing transition: a trial upgrade, a
// fresh subscription during reactivation, or an anonymous signup (email set,
// no session).
type CheckoutRequest struct {
	TargetPriceID string `json:"target_price_id,omitempty"`
	WithTrial     bool   `json:"with_trial,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Checkout submits a checkout-or-uncancel request. A {action:"checkout"}
// answer redirects to the provider and mutates no local state; the provider
// is the source of truth until the user returns. Other actions
// ("uncancelled", "provisioned") may carry a fresh snapshot.
func (e *Engine) Checkout(ctx context.Context, req CheckoutRequest) (*Outcome, error) {
	var body any
	if req.TargetPriceID != "" || req.Email != "" {
		body = req
	}

	res, err := e.client.Do(ctx, http.MethodPost, checkoutPath,
		apiclient.WithAuth(),
		apiclient.WithBody(body),
		apiclient.WithIdempotencyKey(apiclient.NewIdempotencyKey("checkout")),
	)
	if err != nil {
		return nil, err
	}
	if res.Status == http.StatusUnauthorized {
		e.onSessionInvalid(ctx)
		return nil, ErrSessionInvalid
	}
	if !res.OK {
		return nil, &BusinessError{Status: res.Status, Message: res.ErrorMessage()}
	}

	var payload struct {
		Action   string          `json:"action"`
		URL      string          `json:"url"`
		Message  string          `json:"message"`
		Snapshot json.RawMessage `json:"snapshot"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, errors.Join(ErrMalformedSnapshot, err)
	}

	outcome := &Outcome{Action: payload.Action, Message: payload.Message}

	if payload.Action == "checkout" {
		if payload.URL == "" {
			return nil, ErrNoCheckoutURL
		}
		outcome.CheckoutURL = payload.URL
		e.log.InfoContext(ctx, "redirecting to checkout")
		e.redirect(payload.URL)
		return outcome, nil
	}

	if len(payload.Snapshot) > 0 {
		snap, err := decodeSnapshot(payload.Snapshot)
		if err != nil {
			return nil, err
		}
		outcome.Snapshot = snap
	}

	return outcome, nil
}

// ReactivationPreview asks the backend how this account may restore access.
func (e *Engine) ReactivationPreview(ctx context.Context) (*ReactivationPreview, error) {
	res, err := e.client.Do(ctx, http.MethodGet, previewPath, apiclient.WithAuth())
	if err != nil {
		return nil, err
	}
	if res.Status == http.StatusUnauthorized {
		e.onSessionInvalid(ctx)
		return nil, ErrSessionInvalid
	}
	if !res.OK {
		return nil, &BusinessError{Status: res.Status, Message: res.ErrorMessage()}
	}

	var preview ReactivationPreview
	if err := res.Decode(&preview); err != nil {
		return nil, errors.Join(ErrMalformedSnapshot, err)
	}
	if preview.Mode == "" {
		preview.Mode = ModeNone
	}
	for i := range preview.Plans {
		preview.Plans[i].normalize()
	}

	return &preview, nil
}

// StartReactivation carries out the picker's selection: an uncancel when the
// account resumes its current plan, otherwise a fresh checkout.
func (e *Engine) StartReactivation(ctx context.Context, picker *PlanPicker) (*Outcome, error) {
	if picker == nil || !picker.CanSubmit() {
		return nil, ErrNothingSelected
	}

	if !picker.WantsCheckout() {
		return e.Checkout(ctx, CheckoutRequest{})
	}

	return e.Checkout(ctx, CheckoutRequest{
		TargetPriceID: picker.SelectedPriceID(),
		WithTrial:     picker.TrialOptIn(),
	})
}

// mutate issues a mutating call whose success body is {message, snapshot}.
func (e *Engine) mutate(ctx context.Context, path string, body any, scope string) (*Outcome, error) {
	opts := []apiclient.RequestOption{
		apiclient.WithAuth(),
		apiclient.WithIdempotencyKey(apiclient.NewIdempotencyKey(scope)),
	}
	if body != nil {
		opts = append(opts, apiclient.WithBody(body))
	}

	res, err := e.client.Do(ctx, http.MethodPost, path, opts...)
	if err != nil {
		return nil, err
	}
	if res.Status == http.StatusUnauthorized {
		e.onSessionInvalid(ctx)
		return nil, ErrSessionInvalid
	}
	if !res.OK {
		return nil, &BusinessError{Status: res.Status, Message: res.ErrorMessage()}
	}

	var payload struct {
		Message  string          `json:"message"`
		Snapshot json.RawMessage `json:"snapshot"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, errors.Join(ErrMalformedSnapshot, err)
	}

	outcome := &Outcome{Message: payload.Message}
	if len(payload.Snapshot) > 0 {
		snap, err := decodeSnapshot(payload.Snapshot)
		if err != nil {
			return nil, err
		}
		outcome.Snapshot = snap
	}

	return outcome, nil
}

// decodeSnapshot unmarshals, normalizes, and validates a wire snapshot.
func decodeSnapshot(raw json.RawMessage) (*Snapshot, error) {
	if len(raw) == 0 {
		return nil, ErrMalformedSnapshot
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, errors.Join(ErrMalformedSnapshot, err)
	}
	snap.normalize()
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}
