package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/api/metrics"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

// SessionController is the slice of the session state machine the handler
// drives.
type SessionController interface {
	Current() domain.Session
	Login(ctx context.Context, identifier, password string, rememberMe bool) (*domain.User, error)
	Register(ctx context.Context, reg ports.Registration) (*ports.RegisterResult, error)
	Logout(ctx context.Context)
	RefreshProfile(ctx context.Context) (*domain.User, error)
	UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
}

// AvailabilityChecker answers the registration form's live availability
// probes.
type AvailabilityChecker interface {
	CheckIdentifierAvailable(ctx context.Context, uiuID string) (bool, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
}

type AuthHandler struct {
	sessions     SessionController
	availability AvailabilityChecker
}

func NewAuthHandler(sessions SessionController, availability AvailabilityChecker) *AuthHandler {
	return &AuthHandler{sessions: sessions, availability: availability}
}

// Login signs the device session in.
//
// @Summary      Log in with university ID or email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, err := h.sessions.Login(c.Request().Context(), req.Identifier, req.Password, req.RememberMe)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, sessionView(h.sessions.Current()))
}

// Register creates a new account without signing it in.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.sessions.Register(c.Request().Context(), ports.Registration{
		UIUID:    req.UIUID,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{User: res.User, Message: res.Message})
}

// Logout ends the device session. Always succeeds.
//
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Session returns the current session view.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionView(h.sessions.Current()))
}

// Refresh re-verifies the credential and returns the refreshed profile.
//
// @Summary      Refresh the session profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	_, err := h.sessions.RefreshProfile(c.Request().Context())
	if err != nil {
		metrics.ProfileRefreshesTotal.WithLabelValues(refreshResult(err)).Inc()
		return err
	}
	metrics.ProfileRefreshesTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, sessionView(h.sessions.Current()))
}

// UpdateProfile merges a partial profile update into the session.
//
// @Summary      Update the signed-in profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, err := h.sessions.UpdateUser(c.Request().Context(), domain.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Avatar: req.Avatar,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionView(h.sessions.Current()))
}

// Availability answers whether a university ID or email is free to register.
//
// @Summary      Check identifier or email availability
// @Tags         auth
// @Produce      json
// @Param        uiu_id  query     string  false  "University ID"
// @Param        email   query     string  false  "Email address"
// @Success      200     {object}  availabilityResponse
// @Failure      400     {object}  errorResponse
// @Router       /auth/availability [get]
func (h *AuthHandler) Availability(c echo.Context) error {
	uiuID := c.QueryParam("uiu_id")
	email := c.QueryParam("email")

	var (
		available bool
		err       error
	)
	switch {
	case uiuID != "":
		available, err = h.availability.CheckIdentifierAvailable(c.Request().Context(), uiuID)
	case email != "":
		available, err = h.availability.CheckEmailAvailable(c.Request().Context(), email)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "uiu_id or email query parameter required")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, availabilityResponse{Available: available})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrNetwork):
		return "network_error"
	default:
		return "error"
	}
}

func refreshResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNetwork):
		return "network_error"
	case errors.Is(err, domain.ErrSessionSuperseded):
		return "superseded"
	default:
		return "error"
	}
}
