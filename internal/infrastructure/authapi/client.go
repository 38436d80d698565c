// Package authapi is the HTTP adapter for the external authentication
// service used in remote mode. It owns the wire format: field-name
// translation between the service's JSON contract and the domain model
// happens here, never in the state machine.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.AuthenticationService against a remote HTTP API.
// Every call carries a timeout so an unresponsive service resolves to a
// NetworkError instead of hanging the route guard in its loading state.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// --- Wire types ---

type wireUser struct {
	ID         string `json:"id"`
	UIUID      string `json:"uiu_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	Phone      string `json:"phone,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	User        wireUser `json:"user"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
}

type registerRequest struct {
	UIUID    string `json:"uiu_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

type registerResponse struct {
	User    wireUser `json:"user"`
	Message string   `json:"message"`
}

type conflictResponse struct {
	Field string `json:"field"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

// --- Operations ---

func (c *Client) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	var res loginResponse
	status, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Identifier: identifier,
		Password:   password,
	}, &res)
	if err != nil {
		return nil, &domain.NetworkError{Op: "login", Err: err}
	}

	switch status {
	case http.StatusOK:
		user, err := toDomainUser(res.User)
		if err != nil {
			return nil, err
		}
		return &ports.LoginResult{
			User:       user,
			Credential: res.AccessToken,
			ExpiresIn:  time.Duration(res.ExpiresIn) * time.Second,
		}, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, domain.ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("login: unexpected status %d", status)
	}
}

func (c *Client) Register(ctx context.Context, reg ports.Registration) (*ports.RegisterResult, error) {
	body := registerRequest{
		UIUID:    reg.UIUID,
		FullName: reg.Name,
		Email:    reg.Email,
		Password: reg.Password,
		Phone:    reg.Phone,
		Role:     string(reg.Role),
	}

	var raw json.RawMessage
	status, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, &raw)
	if err != nil {
		return nil, &domain.NetworkError{Op: "register", Err: err}
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		var res registerResponse
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, fmt.Errorf("register: decode response: %w", err)
		}
		user, err := toDomainUser(res.User)
		if err != nil {
			return nil, err
		}
		return &ports.RegisterResult{User: user, Message: res.Message}, nil
	case http.StatusConflict:
		var conflict conflictResponse
		_ = json.Unmarshal(raw, &conflict)
		if conflict.Field == "" {
			conflict.Field = "uiuId"
		}
		return nil, &domain.ConflictError{Field: conflict.Field}
	default:
		return nil, fmt.Errorf("register: unexpected status %d", status)
	}
}

func (c *Client) VerifyCredential(ctx context.Context, credential string) (*domain.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "verify", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var wu wireUser
		if err := json.NewDecoder(resp.Body).Decode(&wu); err != nil {
			return nil, fmt.Errorf("verify: decode response: %w", err)
		}
		return toDomainUser(wu)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	default:
		return nil, fmt.Errorf("verify: unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) Logout(ctx context.Context, credential string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: "logout", Err: err}
	}
	defer resp.Body.Close()
	return nil
}

func (c *Client) CheckIdentifierAvailable(ctx context.Context, uiuID string) (bool, error) {
	return c.checkAvailability(ctx, url.Values{"uiu_id": {uiuID}})
}

func (c *Client) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	return c.checkAvailability(ctx, url.Values{"email": {email}})
}

func (c *Client) checkAvailability(ctx context.Context, query url.Values) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/auth/availability?"+query.Encode(), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, &domain.NetworkError{Op: "availability", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("availability: unexpected status %d", resp.StatusCode)
	}

	var res availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return false, fmt.Errorf("availability: decode response: %w", err)
	}
	return res.Available, nil
}

// --- Helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends a JSON request and decodes the response body into out. It returns
// the HTTP status so callers can map it; transport failures come back as
// plain errors for the caller to wrap.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.StatusCode < 300 {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func toDomainUser(wu wireUser) (*domain.User, error) {
	role, err := domain.ParseRole(wu.Role)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:         wu.ID,
		UIUID:      wu.UIUID,
		Name:       wu.FullName,
		Email:      wu.Email,
		Role:       role,
		IsActive:   wu.IsActive,
		IsVerified: wu.IsVerified,
		Phone:      wu.Phone,
		Avatar:     wu.AvatarURL,
	}, nil
}
