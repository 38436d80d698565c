package handler

import (
	"time"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// --- Request / Response types ---

type loginRequest struct {
	// Identifier is a university ID or an email address.
	Identifier string `json:"identifier"  validate:"required"`
	Password   string `json:"password"    validate:"required,min=6"`
	RememberMe bool   `json:"remember_me"`
}

type registerRequest struct {
	UIUID    string `json:"uiu_id"   validate:"required,numeric,len=8"`
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"    validate:"omitempty,min=7"`
	Role     string `json:"role"     validate:"required,oneof=student staff doctor admin"`
}

type registerResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

type sessionResponse struct {
	Status      string       `json:"status"`
	User        *domain.User `json:"user,omitempty"`
	LastLoginAt *time.Time   `json:"last_login_at,omitempty"`
}

type updateProfileRequest struct {
	Name   *string `json:"name,omitempty"   validate:"omitempty,min=1"`
	Email  *string `json:"email,omitempty"  validate:"omitempty,email"`
	Phone  *string `json:"phone,omitempty"  validate:"omitempty,min=7"`
	Avatar *string `json:"avatar,omitempty"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type confirmVerificationRequest struct {
	UIUID string `json:"uiu_id" validate:"required,numeric,len=8"`
}

func sessionView(s domain.Session) sessionResponse {
	res := sessionResponse{Status: string(s.Status), User: s.User}
	if !s.LastLoginAt.IsZero() {
		t := s.LastLoginAt
		res.LastLoginAt = &t
	}
	return res
}
