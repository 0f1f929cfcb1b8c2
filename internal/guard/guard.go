// Package guard decides whether the current session may enter a route.
package guard

import (
	"slices"

	"github.com/branchd-dev/storefront/internal/models"
)

// Redirect targets
const (
	SignInPath       = "/sign-in"
	UnauthorizedPath = "/unauthorized"
)

// Decision is the outcome of a route check
type Decision int

const (
	Allow Decision = iota
	RedirectSignIn
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectSignIn:
		return "redirect-sign-in"
	case RedirectUnauthorized:
		return "redirect-unauthorized"
	default:
		return "unknown"
	}
}

// Target returns the redirect path, or "" for Allow
func (d Decision) Target() string {
	switch d {
	case RedirectSignIn:
		return SignInPath
	case RedirectUnauthorized:
		return UnauthorizedPath
	default:
		return ""
	}
}

// Decide applies the authorization rule. An unauthenticated session always goes to
// sign-in. An authenticated session is allowed when no roles are required, or when
// its role is one of the required roles.
func Decide(isAuthenticated bool, requiredRoles []models.Role, role models.Role) Decision {
	if !isAuthenticated {
		return RedirectSignIn
	}
	if len(requiredRoles) == 0 {
		return Allow
	}
	if role != models.RoleNone && slices.Contains(requiredRoles, role) {
		return Allow
	}
	return RedirectUnauthorized
}
