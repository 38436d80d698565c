package domain

import "fmt"

// Role identifies the portal dashboard a user belongs to.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// AllRoles lists every role the portal recognises, in display order.
var AllRoles = []Role{RoleStudent, RoleStaff, RoleDoctor, RoleAdmin}

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role, rejecting anything outside
// the known set so ad hoc role strings cannot leak into the session.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// User is the profile the portal holds for the person behind the session.
type User struct {
	ID         string `json:"id"`
	UIUID      string `json:"uiu_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	Phone      string `json:"phone,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// Validate checks structural soundness of a User loaded from storage.
// A record failing this check is treated as corruption, not as an error state.
func (u *User) Validate() error {
	if u == nil {
		return fmt.Errorf("user record is nil")
	}
	if u.ID == "" {
		return fmt.Errorf("user record missing id")
	}
	if u.Name == "" {
		return fmt.Errorf("user record missing name")
	}
	if u.Email == "" {
		return fmt.Errorf("user record missing email")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, u.Role)
	}
	return nil
}

// Clone returns an independent copy so callers can hand out snapshots
// without exposing the session's own record to mutation.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// UserPatch carries the fields a profile update is allowed to change.
// Nil fields are left untouched by Apply.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Apply merges the patch into u, field by field.
func (p UserPatch) Apply(u *User) {
	if u == nil {
		return
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}
