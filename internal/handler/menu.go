package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/repository"
)

// MenuHandler serves the read-only menu catalog.  The route is wrapped
// in the Redis response cache since the menu changes rarely.
type MenuHandler struct {
	Menu *repository.MenuRepo
}

func NewMenuHandler(m *repository.MenuRepo) *MenuHandler {
	return &MenuHandler{Menu: m}
}

// List returns the full menu ordered by category then name.
func (h *MenuHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Menu.List(ctx)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
