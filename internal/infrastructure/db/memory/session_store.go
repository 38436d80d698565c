// Package memory provides an in-memory SessionStore for tests and for
// running the portal without a Redis instance. It mirrors the Redis store's
// key layout and corruption handling so the two are interchangeable.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

const (
	keyCredential  = "credential"
	keyUser        = "user"
	keyLastLoginAt = "last_login_at"
)

type SessionStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{values: make(map[string]string)}
}

func (s *SessionStore) Save(ctx context.Context, stored ports.StoredSession) error {
	userJSON, err := json.Marshal(stored.User)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[keyCredential] = stored.Credential
	s.values[keyUser] = string(userJSON)
	s.values[keyLastLoginAt] = stored.LastLoginAt.UTC().Format(time.RFC3339)
	return nil
}

func (s *SessionStore) Load(ctx context.Context) (ports.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	credential, credOK := s.values[keyCredential]
	userJSON, userOK := s.values[keyUser]

	if !credOK && !userOK {
		return ports.StoredSession{}, nil
	}
	if !credOK || !userOK {
		s.clearLocked()
		return ports.StoredSession{}, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		s.clearLocked()
		return ports.StoredSession{}, nil
	}
	if err := user.Validate(); err != nil {
		s.clearLocked()
		return ports.StoredSession{}, nil
	}

	stored := ports.StoredSession{Credential: credential, User: &user}
	if raw, ok := s.values[keyLastLoginAt]; ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			stored.LastLoginAt = ts
		}
	}
	return stored, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	return nil
}

// Put writes a raw value directly, bypassing Save's serialization. Tests use
// it to simulate corrupted or partial on-device state.
func (s *SessionStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *SessionStore) clearLocked() {
	s.values = make(map[string]string)
}
