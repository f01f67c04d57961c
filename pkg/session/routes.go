package session

import (
	"strings"

	"github.com/nutriplan/portal/pkg/claims"
)

// Role-prefixed login screens. Unauthenticated or wrong-role access to a
// guarded path redirects to the matching one.
const (
	AdminLoginPath      = "/admin_login"
	SuperadminLoginPath = "/superadmin_login"
	UserLoginPath       = "/user_login"

	TrialEndedPath = "/admin_trial_ended"
)

// LoginPathFor maps a role to its login screen. Unknown roles fall back to
// the admin login, matching the portal's primary audience.
func LoginPathFor(role claims.Role) string {
	switch role {
	case claims.RoleSuperadmin:
		return SuperadminLoginPath
	case claims.RoleUser:
		return UserLoginPath
	default:
		return AdminLoginPath
	}
}

// defaultPublicPaths is the allowlist of routes reachable without a session.
var defaultPublicPaths = []string{
	"/",
	AdminLoginPath,
	"/admin_register",
	"/admin_plans",
	"/admin_checkout",
	"/admin_thank_you",
	TrialEndedPath,
	"/admin_forgot_password",
	SuperadminLoginPath,
	UserLoginPath,
}

// defaultPublicPrefixes covers public routes that carry dynamic suffixes,
// e.g. /admin_reset_password?token=...
var defaultPublicPrefixes = []string{
	"/admin_reset_password",
}

type routePolicy struct {
	paths    map[string]struct{}
	prefixes []string
}

func newRoutePolicy(paths, prefixes []string) routePolicy {
	p := routePolicy{paths: make(map[string]struct{}, len(paths))}
	for _, path := range paths {
		p.paths[path] = struct{}{}
	}
	p.prefixes = append(p.prefixes, prefixes...)
	return p
}

func (p routePolicy) isPublic(path string) bool {
	if _, ok := p.paths[path]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
