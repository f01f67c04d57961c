package session

import (
	"log/slog"
	"time"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithPublicRoutes replaces the default public-route allowlist. Paths match
// exactly; prefixes match routes carrying dynamic suffixes such as password
// reset tokens.
func WithPublicRoutes(paths, prefixes []string) Option {
	return func(m *Manager) {
		m.routes = newRoutePolicy(paths, prefixes)
	}
}

// WithClock overrides the time source used for expiry checks in tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
