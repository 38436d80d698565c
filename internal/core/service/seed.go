package service

import (
	"context"
	"errors"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

// seedAccounts are the demo users created in local mode. Passwords follow
// the <role>123 convention; the student account occupies university ID
// 01199999 so duplicate-registration behaviour can be exercised out of the
// box.
var seedAccounts = []struct {
	uiuID    string
	name     string
	email    string
	password string
	role     domain.Role
	verified bool
}{
	{"01100001", "Portal Administrator", "admin@healthcare.uiu.ac.bd", "admin123", domain.RoleAdmin, true},
	{"01199999", "Demo Student", "student@healthcare.uiu.ac.bd", "student123", domain.RoleStudent, true},
	{"01100002", "Demo Staff", "staff@healthcare.uiu.ac.bd", "staff123", domain.RoleStaff, true},
	{"01100003", "Dr. Demo", "doctor@healthcare.uiu.ac.bd", "doctor123", domain.RoleDoctor, true},
}

// loginAliases lets the demo accounts sign in by short username at the login
// form. Aliases are never valid university IDs (those are 8 digits), so they
// cannot shadow a real account.
var loginAliases = map[string]string{
	"admin":   "01100001",
	"student": "01199999",
	"staff":   "01100002",
	"doctor":  "01100003",
}

// Seed inserts the demo accounts, skipping any that already exist. Intended
// for local mode only.
func (s *DirectoryService) Seed(ctx context.Context) error {
	for _, acc := range seedAccounts {
		res, err := s.Register(ctx, ports.Registration{
			UIUID:    acc.uiuID,
			Name:     acc.name,
			Email:    acc.email,
			Password: acc.password,
			Role:     acc.role,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return err
		}
		if acc.verified {
			if err := s.repo.MarkVerified(ctx, res.User.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
