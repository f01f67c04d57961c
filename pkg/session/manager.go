package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nutriplan/portal/pkg/claims"
	"github.com/nutriplan/portal/pkg/credstore"
	"github.com/nutriplan/portal/pkg/subscription"
)

// Manager is the single source of truth for "who is logged in, as what role,
// with what token". It owns the durable credential storage; pages only read
// the State projection.
//
// Lifecycle: unauthenticated -> (login success) -> authenticated ->
// (logout | expiry detected | decode failure) -> unauthenticated.
// Transitions are synchronous; the "refreshing" state lives in the API
// client, never here.
type Manager struct {
	mu    sync.RWMutex
	state State

	creds  credstore.Store
	nav    Navigator
	log    *slog.Logger
	routes routePolicy
	now    func() time.Time
}

// New creates a session manager. The credential store and navigator are
// required; construction panics without them to fail fast on wiring errors.
func New(creds credstore.Store, nav Navigator, opts ...Option) *Manager {
	if creds == nil {
		panic("session: credential store is required")
	}
	if nav == nil {
		panic("session: navigator is required")
	}

	m := &Manager{
		state:  State{Loading: true},
		creds:  creds,
		nav:    nav,
		log:    slog.New(slog.DiscardHandler),
		routes: newRoutePolicy(defaultPublicPaths, defaultPublicPrefixes),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns a copy of the current session projection.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns the decoded claim set of the current session.
func (m *Manager) Identity() claims.Identity {
	return m.State().Identity
}

// IsAuthenticated reports whether a valid session is present.
func (m *Manager) IsAuthenticated() bool {
	return m.State().Authenticated
}

// Login accepts a freshly issued token pair. The access token is decoded
// first; on decode failure the call is a no-op apart from logging, leaving
// any prior session untouched, and the error is returned for callers that
// want to inspect it.
func (m *Manager) Login(ctx context.Context, pair credstore.TokenPair) error {
	id, err := claims.Decode(pair.Access)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to decode access token on login", slog.Any("error", err))
		return err
	}

	if err := m.creds.SetPair(ctx, pair); err != nil {
		m.log.ErrorContext(ctx, "failed to persist token pair", slog.Any("error", err))
		return err
	}

	m.mu.Lock()
	m.state = State{
		Identity:      id,
		AccessToken:   pair.Access,
		Authenticated: true,
		Loading:       false,
	}
	m.mu.Unlock()

	m.log.InfoContext(ctx, "session established",
		slog.String("role", string(id.Role)), slog.String("user_id", id.UserID))
	return nil
}

// Logout clears both tokens, resets the session to unauthenticated, and
// navigates to redirectTo (default: the login page for the last known role).
// Navigation is skipped when already on the target path, so repeated calls
// produce no duplicate redirects.
func (m *Manager) Logout(ctx context.Context, redirectTo ...string) {
	m.mu.Lock()
	target := LoginPathFor(m.state.Identity.Role)
	if len(redirectTo) > 0 && redirectTo[0] != "" {
		target = redirectTo[0]
	}
	m.state = State{}
	m.mu.Unlock()

	if err := m.creds.Clear(ctx); err != nil {
		m.log.ErrorContext(ctx, "failed to clear credentials on logout", slog.Any("error", err))
	}

	if m.nav.Current() != target {
		m.nav.Navigate(target)
	}
}

// Rehydrate restores the session from durable storage. It runs once per
// navigation: on mount and on every path change, so the public-route check
// applies to direct navigations too.
//
// Expiry during rehydration is a hard logout, never a silent refresh; the
// refresh token is only spent inside the API client's 401 path.
func (m *Manager) Rehydrate(ctx context.Context) {
	pair, err := m.creds.Pair(ctx)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to read credentials", slog.Any("error", err))
		m.setUnauthenticated()
		return
	}

	if !pair.Complete() {
		m.setUnauthenticated()
		if !m.routes.isPublic(m.nav.Current()) {
			m.Logout(ctx, AdminLoginPath)
		}
		return
	}

	id, err := claims.DecodeValid(pair.Access, m.now())
	if err != nil {
		// Decode failure and expiry are handled identically: the session
		// cannot be trusted, so it is destroyed.
		m.log.WarnContext(ctx, "access token rejected during rehydration", slog.Any("error", err))
		m.Logout(ctx, AdminLoginPath)
		return
	}

	m.mu.Lock()
	m.state = State{
		Identity:      id,
		AccessToken:   pair.Access,
		Authenticated: true,
		Loading:       false,
	}
	m.mu.Unlock()

	// Canceled trial admins are parked on the trial-ended screen.
	if id.Role == claims.RoleAdmin &&
		id.SubscriptionStatus == string(subscription.PlanTrial) &&
		id.IsCanceled &&
		m.nav.Current() != TrialEndedPath {
		m.nav.Navigate(TrialEndedPath)
	}
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
}
