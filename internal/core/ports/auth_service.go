package ports

import (
	"context"
	"time"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// LoginResult is what the authentication service hands back on a successful
// login: the profile, an opaque bearer credential, and its advertised lifetime.
type LoginResult struct {
	User       *domain.User
	Credential string
	ExpiresIn  time.Duration
}

// Registration carries the fields a new account is created from.
type Registration struct {
	UIUID    string
	Name     string
	Email    string
	Password string
	Phone    string
	Role     domain.Role
}

// RegisterResult is returned on successful registration. The new account is
// never signed in; Message tells the user what to do next.
type RegisterResult struct {
	User    *domain.User
	Message string
}

// AuthenticationService is the external collaborator that owns accounts and
// credentials. The session state machine treats credentials as opaque strings
// and leaves all verification to this interface.
//
// Error contract: Login fails with domain.ErrInvalidCredentials;
// Register with a *domain.ConflictError; VerifyCredential with
// domain.ErrUnauthorized when the credential is rejected. Transport failures
// surface as *domain.NetworkError on any call.
type AuthenticationService interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Register(ctx context.Context, reg Registration) (*RegisterResult, error)
	VerifyCredential(ctx context.Context, credential string) (*domain.User, error)
	// Logout is best-effort: callers swallow its error.
	Logout(ctx context.Context, credential string) error
	CheckIdentifierAvailable(ctx context.Context, uiuID string) (bool, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
}
