package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/api/metrics"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/access"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// SessionReader is the slice of the session manager the guard needs: a
// read-only snapshot. The guard never mutates the session.
type SessionReader interface {
	Current() domain.Session
}

// screenResponse is the informational screen rendered for terminal guard
// outcomes. Actions name the recovery steps the client should offer; the
// screens never auto-retry.
type screenResponse struct {
	Screen        string   `json:"screen"`
	Message       string   `json:"message"`
	Role          string   `json:"role,omitempty"`
	RequiredRoles []string `json:"required_roles,omitempty"`
	Actions       []string `json:"actions"`
}

// Guard wraps a protected route with the access policy. The session is
// evaluated on every request and the decision rendered as follows:
//
//	pending      → 503 with Retry-After, the session is still bootstrapping
//	redirect     → 303 to the fallback path, carrying origin and reason
//	unverified   → 403 verification screen
//	inactive     → 403 deactivated-account screen
//	unauthorized → 403 wrong-role screen
//	allow        → the wrapped handler runs unchanged
func Guard(sessions SessionReader, req access.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := access.Evaluate(sessions.Current(), req)
			metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Kind)).Inc()

			switch decision.Kind {
			case access.DecisionPending:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, screenResponse{
					Screen:  "loading",
					Message: "session is still being restored",
					Actions: []string{"retry"},
				})

			case access.DecisionRedirect:
				return c.Redirect(http.StatusSeeOther, redirectTarget(decision, c.Request().URL.Path))

			case access.DecisionUnverified:
				return c.JSON(http.StatusForbidden, screenResponse{
					Screen:  "email_unverified",
					Message: "verify your email address to access this page",
					Actions: []string{"resend_verification", "logout"},
				})

			case access.DecisionInactive:
				return c.JSON(http.StatusForbidden, screenResponse{
					Screen:  "account_inactive",
					Message: "this account has been deactivated",
					Actions: []string{"contact_support", "logout"},
				})

			case access.DecisionUnauthorized:
				return c.JSON(http.StatusForbidden, screenResponse{
					Screen:        "role_not_allowed",
					Message:       "your role does not grant access to this page",
					Role:          string(decision.Role),
					RequiredRoles: roleStrings(decision.RequiredRoles),
					Actions:       []string{"go_back", "logout"},
				})

			default:
				return next(c)
			}
		}
	}
}

// redirectTarget builds the fallback URL carrying the origin path and the
// reason for the redirect, so the login screen can display context such as
// "session expired".
func redirectTarget(d access.Decision, from string) string {
	q := url.Values{}
	q.Set("from", from)
	if d.Reason != "" {
		q.Set("reason", d.Reason)
	}
	return d.RedirectPath + "?" + q.Encode()
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
