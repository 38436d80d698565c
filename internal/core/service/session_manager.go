package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

// ReasonSessionExpired is carried into the login redirect when a stored
// credential is rejected during a profile refresh.
const ReasonSessionExpired = "session expired"

// SessionManager is the authentication state machine. It owns the one
// logical session of this device, persists it through a SessionStore, and
// notifies subscribers on every transition.
//
// States: unknown → {anonymous, authenticated}; authenticated → anonymous on
// logout or credential invalidation. Unknown is entered exactly once, at
// construction; Bootstrap leaves it and no operation re-enters it.
type SessionManager struct {
	store     ports.SessionStore
	auth      ports.AuthenticationService
	validator *SessionValidator
	log       zerolog.Logger

	mu      sync.Mutex
	session domain.Session
	// remember records whether the current session may be written to the
	// store. False after a login without rememberMe: the session lives in
	// memory only and no later refresh or profile update persists it.
	remember bool
	// epoch counts session replacements. An in-flight refresh captures the
	// epoch before its network call and discards its result if a login or
	// logout bumped the epoch meanwhile, so a slow response can never
	// resurrect a cleared session.
	epoch uint64

	subMu       sync.Mutex
	subscribers []func(domain.Session)
}

func NewSessionManager(store ports.SessionStore, auth ports.AuthenticationService, validator *SessionValidator, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store:     store,
		auth:      auth,
		validator: validator,
		log:       log,
		session:   domain.Session{Status: domain.StatusUnknown},
	}
}

// Current returns a snapshot of the session. The returned value is a deep
// copy; mutating it has no effect on the manager.
func (m *SessionManager) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Subscribe registers fn to be called with a session snapshot after every
// transition. Subscriptions cannot be removed; they live as long as the
// manager does.
func (m *SessionManager) Subscribe(fn func(domain.Session)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Bootstrap restores the persisted session, once, at startup. An empty store
// yields anonymous. A credential that fails the structural check clears the
// store and yields anonymous. Otherwise the session becomes authenticated
// from the cached profile without a network round trip: staleness is
// accepted in exchange for an instant first render, and the next
// RefreshProfile reconciles.
func (m *SessionManager) Bootstrap(ctx context.Context) error {
	stored, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("session store unreadable, starting anonymous")
		m.setSession(domain.Session{Status: domain.StatusAnonymous})
		return nil
	}

	if stored.Empty() {
		m.setSession(domain.Session{Status: domain.StatusAnonymous})
		return nil
	}

	if !m.validator.IsStructurallyValid(stored.Credential) {
		m.log.Info().Msg("stored credential failed structural check, clearing")
		if err := m.store.Clear(ctx); err != nil {
			m.log.Warn().Err(err).Msg("clearing session store")
		}
		m.setSession(domain.Session{Status: domain.StatusAnonymous})
		return nil
	}

	// The session came from the store, so it keeps being persisted.
	m.setRemembered(domain.Session{
		Status:      domain.StatusAuthenticated,
		User:        stored.User,
		Credential:  stored.Credential,
		LastLoginAt: stored.LastLoginAt,
	})
	m.log.Info().Str("uiu_id", stored.User.UIUID).Str("role", string(stored.User.Role)).Msg("session restored")
	return nil
}

// Login authenticates against the authentication service. On success the
// session becomes authenticated and, when rememberMe is set, is persisted so
// Bootstrap restores it after a restart. On failure the session and the
// store are left untouched; the error is terminal for this call and the
// caller decides whether to retry.
func (m *SessionManager) Login(ctx context.Context, identifier, password string, rememberMe bool) (*domain.User, error) {
	res, err := m.auth.Login(ctx, identifier, password)
	if err != nil {
		m.log.Debug().Err(err).Str("identifier", identifier).Msg("login rejected")
		return nil, err
	}

	now := time.Now().UTC()
	session := domain.Session{
		Status:      domain.StatusAuthenticated,
		User:        res.User,
		Credential:  res.Credential,
		LastLoginAt: now,
	}
	if rememberMe {
		m.setRemembered(session)
		stored := ports.StoredSession{
			Credential:  res.Credential,
			User:        res.User,
			LastLoginAt: now,
		}
		if err := m.store.Save(ctx, stored); err != nil {
			// The in-memory session stays valid; only restart survival is lost.
			m.log.Warn().Err(err).Msg("persisting session")
		}
	} else {
		m.setSession(session)
	}

	m.log.Info().Str("uiu_id", res.User.UIUID).Str("role", string(res.User.Role)).Msg("login succeeded")
	return res.User.Clone(), nil
}

// Register creates a new account. It never signs the caller in: new accounts
// start unverified, and the session stays exactly as it was.
func (m *SessionManager) Register(ctx context.Context, reg ports.Registration) (*ports.RegisterResult, error) {
	res, err := m.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Logout ends the session unconditionally. The remote logout call is
// best-effort: a network failure is logged and swallowed, because logout
// must always succeed locally. Calling Logout on an anonymous session is a
// no-op.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	if m.session.Status != domain.StatusAuthenticated {
		m.mu.Unlock()
		return
	}
	credential := m.session.Credential
	m.epoch++
	m.mu.Unlock()

	if err := m.auth.Logout(ctx, credential); err != nil {
		m.log.Debug().Err(err).Msg("remote logout failed, continuing")
	}

	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("clearing session store")
	}
	m.setSession(domain.Session{Status: domain.StatusAnonymous})
	m.log.Info().Msg("logged out")
}

// RefreshProfile re-verifies the credential and refreshes the cached
// profile. A rejection is an implicit logout: the store is cleared, the
// session becomes anonymous with ReasonSessionExpired, and the error is
// returned so the caller can redirect. A transport failure leaves the
// session untouched. A result arriving after the session was replaced is
// discarded with domain.ErrSessionSuperseded.
func (m *SessionManager) RefreshProfile(ctx context.Context) (*domain.User, error) {
	m.mu.Lock()
	if m.session.Status != domain.StatusAuthenticated {
		m.mu.Unlock()
		return nil, domain.ErrUnauthorized
	}
	credential := m.session.Credential
	epoch := m.epoch
	m.mu.Unlock()

	user, err := m.validator.VerifyRemotely(ctx, credential)

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return nil, domain.ErrSessionSuperseded
	}

	switch {
	case err == nil:
		m.session.User = user
		session := m.session.Clone()
		remember := m.remember
		m.mu.Unlock()
		m.notify(session)

		if remember {
			stored := ports.StoredSession{
				Credential:  session.Credential,
				User:        session.User,
				LastLoginAt: session.LastLoginAt,
			}
			if err := m.store.Save(ctx, stored); err != nil {
				m.log.Warn().Err(err).Msg("persisting refreshed profile")
			}
		}
		return user.Clone(), nil

	case errors.Is(err, domain.ErrUnauthorized):
		m.epoch++
		m.session = domain.Session{
			Status:    domain.StatusAnonymous,
			LastError: ReasonSessionExpired,
		}
		m.remember = false
		snapshot := m.session.Clone()
		m.mu.Unlock()

		m.log.Info().Msg("credential rejected on refresh, logging out")
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("clearing session store")
		}
		m.notify(snapshot)
		return nil, err

	default:
		// Transport failure: keep the session, the caller may retry.
		m.mu.Unlock()
		return nil, err
	}
}

// UpdateUser merges a partial profile update into the session and, when the
// session is remembered, re-persists it. A no-op on an anonymous session.
func (m *SessionManager) UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	m.mu.Lock()
	if m.session.Status != domain.StatusAuthenticated {
		m.mu.Unlock()
		return nil, domain.ErrUnauthorized
	}
	patch.Apply(m.session.User)
	session := m.session.Clone()
	remember := m.remember
	m.mu.Unlock()
	m.notify(session)

	if remember {
		stored := ports.StoredSession{
			Credential:  session.Credential,
			User:        session.User,
			LastLoginAt: session.LastLoginAt,
		}
		if err := m.store.Save(ctx, stored); err != nil {
			m.log.Warn().Err(err).Msg("persisting profile update")
		}
	}
	return session.User.Clone(), nil
}

// setSession replaces the session as memory-only, bumps the epoch, and
// notifies subscribers outside the lock. setRemembered does the same but
// marks the session as persistable.
func (m *SessionManager) setSession(s domain.Session) {
	m.replaceSession(s, false)
}

func (m *SessionManager) setRemembered(s domain.Session) {
	m.replaceSession(s, true)
}

func (m *SessionManager) replaceSession(s domain.Session, remember bool) {
	m.mu.Lock()
	m.epoch++
	m.session = s
	m.remember = remember
	snapshot := s.Clone()
	m.mu.Unlock()
	m.notify(snapshot)
}

func (m *SessionManager) notify(s domain.Session) {
	m.subMu.Lock()
	subs := make([]func(domain.Session), len(m.subscribers))
	copy(subs, m.subscribers)
	m.subMu.Unlock()

	for _, fn := range subs {
		fn(s.Clone())
	}
}
