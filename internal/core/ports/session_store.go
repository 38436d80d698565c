package ports

import (
	"context"
	"time"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// StoredSession is the durable slice of a session: the credential, the user
// snapshot, and when the user last logged in on this device.
type StoredSession struct {
	Credential  string
	User        *domain.User
	LastLoginAt time.Time
}

// Empty reports whether nothing usable is stored.
func (s StoredSession) Empty() bool {
	return s.Credential == "" && s.User == nil
}

// SessionStore persists the device session between process restarts. It is a
// passive collaborator: no business logic, no validation beyond structural
// integrity of what it reads back.
//
// Load self-heals: if only one of credential/user is present, or the user
// snapshot fails to deserialize into a structurally valid record, the store
// clears everything and returns an empty StoredSession with a nil error.
type SessionStore interface {
	Save(ctx context.Context, s StoredSession) error
	Load(ctx context.Context) (StoredSession, error)
	Clear(ctx context.Context) error
}
