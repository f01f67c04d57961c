package session

import "github.com/nutriplan/portal/pkg/claims"

// State is the read-only projection of the current session that pages and
// guards consume. Loading is true from construction until the first
// Rehydrate resolves.
type State struct {
	Identity      claims.Identity
	AccessToken   string
	Authenticated bool
	Loading       bool
}

// Role returns the identity's role, empty when unauthenticated.
func (s State) Role() claims.Role {
	if !s.Authenticated {
		return ""
	}
	return s.Identity.Role
}
