package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

// DirectoryService is the in-process authentication service used in local
// mode. It keeps accounts in a UserRepository, verifies passwords with
// bcrypt, and mints HS256 bearer credentials. The session state machine
// still sees only the ports.AuthenticationService interface and treats the
// credentials as opaque.
type DirectoryService struct {
	repo      ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewDirectoryService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *DirectoryService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &DirectoryService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login accepts a university ID, an email address, or a seeded demo
// username as identifier.
// Unknown identifiers and wrong passwords both map to ErrInvalidCredentials
// so callers cannot probe which accounts exist.
func (s *DirectoryService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	rec, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	credential, err := s.mintCredential(rec)
	if err != nil {
		return nil, fmt.Errorf("mint credential: %w", err)
	}

	return &ports.LoginResult{
		User:       rec.User.Clone(),
		Credential: credential,
		ExpiresIn:  s.tokenTTL,
	}, nil
}

// Register creates an unverified, active account with a server-assigned id.
// Duplicate university IDs fail with ConflictError{Field: "uiuId"},
// duplicate emails with ConflictError{Field: "email"}.
func (s *DirectoryService) Register(ctx context.Context, reg ports.Registration) (*ports.RegisterResult, error) {
	if !reg.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, reg.Role)
	}

	if _, err := s.repo.FindByUIUID(ctx, reg.UIUID); err == nil {
		return nil, &domain.ConflictError{Field: "uiuId"}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, reg.Email); err == nil {
		return nil, &domain.ConflictError{Field: "email"}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	rec := &ports.UserRecord{
		User: domain.User{
			ID:         uuid.NewString(),
			UIUID:      reg.UIUID,
			Name:       reg.Name,
			Email:      reg.Email,
			Role:       reg.Role,
			IsActive:   true,
			IsVerified: false,
			Phone:      reg.Phone,
		},
		PasswordHash: string(hash),
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, err
	}

	return &ports.RegisterResult{
		User:    created.User.Clone(),
		Message: "registration successful, check your email to verify the account",
	}, nil
}

// VerifyCredential parses and validates the HS256 token and returns the
// current directory record for its subject. Any parse or lookup failure maps
// to ErrUnauthorized.
func (s *DirectoryService) VerifyCredential(ctx context.Context, credential string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrUnauthorized
	}

	rec, err := s.repo.FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return rec.User.Clone(), nil
}

// Logout is a no-op: local-mode credentials are stateless tokens with
// nothing to revoke.
func (s *DirectoryService) Logout(ctx context.Context, credential string) error {
	return nil
}

func (s *DirectoryService) CheckIdentifierAvailable(ctx context.Context, uiuID string) (bool, error) {
	_, err := s.repo.FindByUIUID(ctx, uiuID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (s *DirectoryService) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// ConfirmVerification flips the account's verified flag. Confirming an
// already verified account is a no-op, so the flag flips exactly once.
func (s *DirectoryService) ConfirmVerification(ctx context.Context, uiuID string) error {
	rec, err := s.repo.FindByUIUID(ctx, uiuID)
	if err != nil {
		return err
	}
	if rec.IsVerified {
		return nil
	}
	return s.repo.MarkVerified(ctx, rec.ID)
}

func (s *DirectoryService) findByIdentifier(ctx context.Context, identifier string) (*ports.UserRecord, error) {
	if strings.Contains(identifier, "@") {
		return s.repo.FindByEmail(ctx, identifier)
	}
	if uiuID, ok := loginAliases[identifier]; ok {
		identifier = uiuID
	}
	return s.repo.FindByUIUID(ctx, identifier)
}

func (s *DirectoryService) mintCredential(rec *ports.UserRecord) (string, error) {
	claims := jwt.MapClaims{
		"sub":    rec.ID,
		"uiu_id": rec.UIUID,
		"role":   string(rec.Role),
		"exp":    time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
