package domain

import "time"

// SessionStatus represents the lifecycle state of the device session.
type SessionStatus string

const (
	// StatusUnknown means the session has not been checked yet. Callers must
	// treat it as "wait", never as anonymous.
	StatusUnknown SessionStatus = "unknown"
	// StatusAnonymous means nobody is signed in on this device.
	StatusAnonymous SessionStatus = "anonymous"
	// StatusAuthenticated means a user and credential are present and the
	// credential passed validation at last check.
	StatusAuthenticated SessionStatus = "authenticated"
)

// Session is the portal's current belief about who is signed in on this
// device and with what credential.
type Session struct {
	Status     SessionStatus `json:"status"`
	User       *User         `json:"user,omitempty"`
	Credential string        `json:"-"`
	// LastError carries the reason for the most recent involuntary
	// transition to anonymous, e.g. "session expired".
	LastError   string    `json:"last_error,omitempty"`
	LastLoginAt time.Time `json:"last_login_at,omitempty"`
}

// Authenticated reports whether the session is in the authenticated state.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// WellFormed reports whether the session satisfies the core invariant:
// authenticated iff both user and credential are present.
func (s Session) WellFormed() bool {
	if s.Status == StatusAuthenticated {
		return s.User != nil && s.Credential != ""
	}
	return s.User == nil && s.Credential == ""
}

// Clone returns a deep copy safe to hand outside the owning state machine.
func (s Session) Clone() Session {
	clone := s
	clone.User = s.User.Clone()
	return clone
}
