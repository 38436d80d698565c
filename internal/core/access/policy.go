// Package access decides what a route guard should do with a request given
// the current session and the route's declared requirements. Evaluate is a
// pure function; it never mutates the session.
package access

import "github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"

// DecisionKind enumerates the possible outcomes of a policy evaluation.
type DecisionKind string

const (
	// DecisionPending means the session is still unknown. It is a wait
	// signal, not a terminal outcome: guards render a loading state and
	// must never fall through to a redirect.
	DecisionPending DecisionKind = "pending"
	// DecisionRedirect sends an anonymous visitor to the route's fallback path.
	DecisionRedirect DecisionKind = "redirect"
	// DecisionUnverified renders the email-verification screen.
	DecisionUnverified DecisionKind = "unverified"
	// DecisionInactive renders the deactivated-account screen.
	DecisionInactive DecisionKind = "inactive"
	// DecisionUnauthorized renders the wrong-role screen.
	DecisionUnauthorized DecisionKind = "unauthorized"
	// DecisionAllow lets the wrapped content render unchanged.
	DecisionAllow DecisionKind = "allow"
)

// Requirement declares what a protected route demands of the session.
type Requirement struct {
	// RequiredRoles limits access to these roles. Empty means any
	// authenticated role is acceptable.
	RequiredRoles []domain.Role
	// RequiresVerification demands a verified email. Defaults to true via
	// NewRequirement.
	RequiresVerification bool
	// FallbackPath is where anonymous visitors are redirected.
	FallbackPath string
}

// NewRequirement builds a Requirement with verification required, the
// default for every protected route.
func NewRequirement(fallbackPath string, roles ...domain.Role) Requirement {
	return Requirement{
		RequiredRoles:        roles,
		RequiresVerification: true,
		FallbackPath:         fallbackPath,
	}
}

// AllowUnverified returns a copy of the requirement that admits users who
// have not verified their email yet.
func (r Requirement) AllowUnverified() Requirement {
	r.RequiresVerification = false
	return r
}

// Decision is the evaluator's verdict. Fields beyond Kind are populated only
// where they matter: RedirectPath/Reason for redirects, Role/RequiredRoles
// for unauthorized outcomes.
type Decision struct {
	Kind          DecisionKind
	RedirectPath  string
	Reason        string
	Role          domain.Role
	RequiredRoles []domain.Role
}

// Evaluate applies the access policy in strict precedence order:
//
//	unknown → pending
//	anonymous → redirect
//	unverified → verification screen
//	inactive → deactivated screen
//	role mismatch → unauthorized screen
//	otherwise → allow
//
// The order is deliberate: an unverified admin sees the verification screen,
// not an authorization error.
func Evaluate(s domain.Session, req Requirement) Decision {
	if s.Status == domain.StatusUnknown {
		return Decision{Kind: DecisionPending}
	}

	if s.Status != domain.StatusAuthenticated || s.User == nil {
		return Decision{
			Kind:         DecisionRedirect,
			RedirectPath: req.FallbackPath,
			Reason:       s.LastError,
		}
	}

	if req.RequiresVerification && !s.User.IsVerified {
		return Decision{Kind: DecisionUnverified}
	}

	if !s.User.IsActive {
		return Decision{Kind: DecisionInactive}
	}

	if len(req.RequiredRoles) > 0 && !roleAllowed(s.User.Role, req.RequiredRoles) {
		return Decision{
			Kind:          DecisionUnauthorized,
			Role:          s.User.Role,
			RequiredRoles: req.RequiredRoles,
		}
	}

	return Decision{Kind: DecisionAllow}
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
