package ports

import (
	"context"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// UserRecord is a directory entry: the public profile plus the password hash
// that never leaves the directory layer.
type UserRecord struct {
	domain.User
	PasswordHash string
}

// UserRepository defines persistence for the local-mode user directory.
type UserRepository interface {
	Create(ctx context.Context, rec *UserRecord) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	FindByUIUID(ctx context.Context, uiuID string) (*UserRecord, error)
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	// MarkVerified flips is_verified to true. Verifying an already verified
	// account is a no-op, so the flag flips exactly once.
	MarkVerified(ctx context.Context, id string) error
}
