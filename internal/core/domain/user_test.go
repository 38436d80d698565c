package domain

import (
	"errors"
	"testing"
)

func validUser() *User {
	return &User{
		ID:         "u-1",
		UIUID:      "01112345",
		Name:       "Test Student",
		Email:      "test@uiu.ac.bd",
		Role:       RoleStudent,
		IsActive:   true,
		IsVerified: true,
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range AllRoles {
		parsed, err := ParseRole(string(role))
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", role, err)
		}
		if parsed != role {
			t.Fatalf("ParseRole(%q) = %q", role, parsed)
		}
	}
}

func TestParseRole_Unknown(t *testing.T) {
	if _, err := ParseRole("superuser"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if _, err := ParseRole(""); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole for empty role, got %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	if err := validUser().Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	var nilUser *User
	if err := nilUser.Validate(); err == nil {
		t.Fatalf("nil user accepted")
	}

	missing := validUser()
	missing.ID = ""
	if err := missing.Validate(); err == nil {
		t.Fatalf("user without id accepted")
	}

	badRole := validUser()
	badRole.Role = "librarian"
	if err := badRole.Validate(); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestUserClone_Independent(t *testing.T) {
	u := validUser()
	clone := u.Clone()
	clone.Name = "Changed"
	if u.Name == "Changed" {
		t.Fatalf("clone shares memory with original")
	}

	var nilUser *User
	if nilUser.Clone() != nil {
		t.Fatalf("cloning nil should yield nil")
	}
}

func TestUserPatch_Apply(t *testing.T) {
	u := validUser()
	name := "New Name"
	phone := "01700000000"
	UserPatch{Name: &name, Phone: &phone}.Apply(u)

	if u.Name != "New Name" {
		t.Fatalf("name not applied: %q", u.Name)
	}
	if u.Phone != "01700000000" {
		t.Fatalf("phone not applied: %q", u.Phone)
	}
	if u.Email != "test@uiu.ac.bd" {
		t.Fatalf("email changed by nil patch field: %q", u.Email)
	}
}
