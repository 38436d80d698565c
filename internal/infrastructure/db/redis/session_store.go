package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
	"github.com/sowrin-paul/uiu-healthcare-portal/pkg/logger"
)

// SessionStore persists the device session in Redis under three keys
// namespaced by device id:
//
//	session:<device>:credential     opaque bearer token
//	session:<device>:user           JSON-serialized user snapshot
//	session:<device>:last_login_at  RFC 3339 timestamp
//
// Save writes all three in a MULTI/EXEC pipeline so no reader observes a
// partial write. Load treats a missing counterpart key or an undecodable
// user snapshot as corruption: it clears everything and reports an empty
// session rather than an error.
type SessionStore struct {
	client *redis.Client
	device string
}

func NewSessionStore(client *redis.Client, deviceID string) *SessionStore {
	return &SessionStore{client: client, device: deviceID}
}

func (s *SessionStore) Save(ctx context.Context, stored ports.StoredSession) error {
	userJSON, err := json.Marshal(stored.User)
	if err != nil {
		return fmt.Errorf("serialize user: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key("credential"), stored.Credential, 0)
		pipe.Set(ctx, s.key("user"), userJSON, 0)
		pipe.Set(ctx, s.key("last_login_at"), stored.LastLoginAt.UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context) (ports.StoredSession, error) {
	vals, err := s.client.MGet(ctx, s.key("credential"), s.key("user"), s.key("last_login_at")).Result()
	if err != nil {
		return ports.StoredSession{}, fmt.Errorf("read session: %w", err)
	}

	credential, credOK := vals[0].(string)
	userJSON, userOK := vals[1].(string)

	if !credOK && !userOK {
		return ports.StoredSession{}, nil
	}
	// One key without the other is corruption: self-heal by clearing.
	if !credOK || !userOK {
		return s.healCorruption(ctx)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return s.healCorruption(ctx)
	}
	if err := user.Validate(); err != nil {
		return s.healCorruption(ctx)
	}

	stored := ports.StoredSession{Credential: credential, User: &user}
	if raw, ok := vals[2].(string); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			stored.LastLoginAt = ts
		}
	}
	return stored, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key("credential"), s.key("user"), s.key("last_login_at")).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) healCorruption(ctx context.Context) (ports.StoredSession, error) {
	log := logger.Get()
	log.Warn().
		Err(domain.ErrCorruptedSession).
		Str("device", s.device).
		Msg("clearing stored session")
	if err := s.Clear(ctx); err != nil {
		return ports.StoredSession{}, err
	}
	return ports.StoredSession{}, nil
}

func (s *SessionStore) key(field string) string {
	return fmt.Sprintf("session:%s:%s", s.device, field)
}
