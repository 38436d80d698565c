package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by login when the identifier or
	// password is wrong. It never changes session state.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means a stored credential was rejected by the
	// authentication service on verify or refresh.
	ErrUnauthorized = errors.New("credential rejected")

	// ErrConflict is the match target for ConflictError values.
	ErrConflict = errors.New("account field already registered")

	// ErrNetwork is the match target for NetworkError values.
	ErrNetwork = errors.New("authentication service unreachable")

	// ErrCorruptedSession marks locally stored session data that failed to
	// deserialize. It is self-healed by clearing the store and never shown
	// to the user beyond forcing a fresh login.
	ErrCorruptedSession = errors.New("stored session corrupted")

	// ErrSessionSuperseded means an in-flight profile refresh resolved after
	// the session it belonged to was replaced by a login or logout. The
	// result was discarded.
	ErrSessionSuperseded = errors.New("session superseded during refresh")

	// ErrUserNotFound is returned by the user directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownRole rejects role strings outside the known set.
	ErrUnknownRole = errors.New("unknown role")
)

// ConflictError reports which registration field collided with an existing
// account. errors.Is(err, ErrConflict) matches it.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already registered", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NetworkError wraps a transport failure talking to the authentication
// service. errors.Is(err, ErrNetwork) matches it; the cause stays reachable
// through Unwrap.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("auth service %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
