package guard

import (
	"github.com/nutriplan/portal/pkg/claims"
	"github.com/nutriplan/portal/pkg/session"
)

// Decision is the outcome of evaluating a guarded route.
type Decision int

const (
	// DecisionPending means the session is still rehydrating: render a
	// neutral placeholder, never the protected content and never a
	// redirect, to avoid redirect flicker.
	DecisionPending Decision = iota
	// DecisionAllow renders the protected content unchanged.
	DecisionAllow
	// DecisionRedirect sends the user to the guard's login screen.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Result carries the decision plus redirect details. ReturnTo preserves the
// attempted location for an optional post-login return.
type Result struct {
	Decision Decision
	Target   string
	ReturnTo string
}

// Guard gates a role-scoped screen on the session state.
//
// A role mismatch is treated exactly like being unauthenticated: the user is
// sent to the guard's login screen without revealing that some other session
// exists. This check is a UX convenience; the backend remains the real
// authorization boundary.
type Guard struct {
	required  claims.Role
	loginPath string
}

// New creates a guard requiring the given role.
func New(required claims.Role) *Guard {
	return &Guard{
		required:  required,
		loginPath: session.LoginPathFor(required),
	}
}

// Check evaluates the guard against the current session state and the
// attempted path.
func (g *Guard) Check(st session.State, attempted string) Result {
	if st.Loading {
		return Result{Decision: DecisionPending}
	}
	if !st.Authenticated || st.Identity.Role != g.required {
		return Result{
			Decision: DecisionRedirect,
			Target:   g.loginPath,
			ReturnTo: attempted,
		}
	}
	return Result{Decision: DecisionAllow}
}
