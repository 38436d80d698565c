package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Field is
// set only for registration conflicts so the form can highlight the
// offending input.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		res := resolveError(err, log, c)
		_ = c.JSON(res.code, res.body)
	}
}

type resolvedError struct {
	code int
	body errorResponse
}

func resolveError(err error, log zerolog.Logger, c echo.Context) resolvedError {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return resolvedError{he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}}
	}

	// Known domain errors → deterministic HTTP codes.
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return resolvedError{http.StatusConflict, errorResponse{Error: conflict.Error(), Field: conflict.Field}}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return resolvedError{http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}}
	case errors.Is(err, domain.ErrUnauthorized):
		return resolvedError{http.StatusUnauthorized, errorResponse{Error: "session expired"}}
	case errors.Is(err, domain.ErrSessionSuperseded):
		// The refresh lost to a concurrent login/logout; nothing was changed.
		return resolvedError{http.StatusConflict, errorResponse{Error: "session changed, reload"}}
	case errors.Is(err, domain.ErrNetwork):
		return resolvedError{http.StatusBadGateway, errorResponse{Error: "authentication service unreachable"}}
	case errors.Is(err, domain.ErrUserNotFound):
		return resolvedError{http.StatusNotFound, errorResponse{Error: "user not found"}}
	case errors.Is(err, domain.ErrUnknownRole):
		return resolvedError{http.StatusBadRequest, errorResponse{Error: err.Error()}}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return resolvedError{http.StatusInternalServerError, errorResponse{Error: "internal server error"}}
}
