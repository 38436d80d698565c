package service

import (
	"context"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

// MinCredentialLength is the shortest credential the client accepts without
// asking the authentication service. This is a stand-in policy: the portal
// performs no signature or expiry checks of its own, so anything that is at
// least plausibly a token passes. Swapping this validator for one that calls
// VerifyRemotely on every bootstrap requires no change to the state machine.
const MinCredentialLength = 10

// SessionValidator decides whether a stored credential is usable.
type SessionValidator struct {
	auth ports.AuthenticationService
}

func NewSessionValidator(auth ports.AuthenticationService) *SessionValidator {
	return &SessionValidator{auth: auth}
}

// IsStructurallyValid applies the offline heuristic: non-empty and at least
// MinCredentialLength characters.
func (v *SessionValidator) IsStructurallyValid(credential string) bool {
	return len(credential) >= MinCredentialLength
}

// VerifyRemotely asks the authentication service to confirm the credential
// and returns the current profile. Fails with domain.ErrUnauthorized when
// the service rejects it and *domain.NetworkError on transport failure.
func (v *SessionValidator) VerifyRemotely(ctx context.Context, credential string) (*domain.User, error) {
	return v.auth.VerifyCredential(ctx, credential)
}
