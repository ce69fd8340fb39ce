// Package handler contains the HTTP layer: request decoding, actor
// extraction from the verified token, and translation of workflow
// errors into status codes.  Business rules live in the workflow
// package; handlers stay thin.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/workflow"
)

// dbTimeout bounds every storage call made on behalf of a request.
const dbTimeout = 5 * time.Second

// reqCtx derives a deadline-bound context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// actorFrom reads the identity the auth middleware stored on the
// context.  Requests without a token yield the anonymous guest actor.
func actorFrom(c echo.Context) workflow.Actor {
	authed, _ := c.Get("authenticated").(bool)
	if !authed {
		return workflow.Actor{Role: "guest"}
	}
	uid, _ := c.Get("user_id").(uint64)
	role, _ := c.Get("role").(string)
	phone, _ := c.Get("phone").(string)
	email, _ := c.Get("email").(string)
	return workflow.Actor{UserID: uid, Role: role, Phone: phone, Email: email, Authenticated: true}
}

// domainError maps workflow sentinels onto HTTP responses.  Anything
// outside the taxonomy is a storage or gateway failure and becomes a
// generic 500 so internals never leak to clients.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, workflow.ErrNothingToBill):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, workflow.ErrInvalidSession):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrAlreadyLocked), errors.Is(err, workflow.ErrOrderClosed), errors.Is(err, workflow.ErrTableExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidSpec),
		errors.Is(err, workflow.ErrInvalidQuantity),
		errors.Is(err, workflow.ErrUnknownItem),
		errors.Is(err, workflow.ErrInvalidStatus),
		errors.Is(err, workflow.ErrPaymentVerificationFailed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
