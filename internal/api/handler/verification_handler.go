package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Verifier completes an account's email verification. Available in local
// mode only; in remote mode the external service owns verification links.
type Verifier interface {
	ConfirmVerification(ctx context.Context, uiuID string) error
}

type VerificationHandler struct {
	verifier Verifier
}

func NewVerificationHandler(verifier Verifier) *VerificationHandler {
	return &VerificationHandler{verifier: verifier}
}

// Confirm flips the account's verified flag. Confirming twice is a no-op.
//
// @Summary      Confirm email verification
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      confirmVerificationRequest  true  "Account to verify"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  errorResponse
// @Router       /auth/verify/confirm [post]
func (h *VerificationHandler) Confirm(c echo.Context) error {
	var req confirmVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.verifier.ConfirmVerification(c.Request().Context(), req.UIUID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "account verified"})
}
