package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/repository"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// OrderHandler exposes order placement, the staff order board and the
// role-gated mutations.
type OrderHandler struct {
	WF     *workflow.Workflow
	Orders *repository.OrderRepo
}

func NewOrderHandler(wf *workflow.Workflow, o *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{WF: wf, Orders: o}
}

type placeOrderReq struct {
	Items     []workflow.ItemInput `json:"items"`
	TableNo   string               `json:"table_no"`
	SessionID string               `json:"session_id"`
}

// Place creates a new pending order.  Anonymous callers must present a
// valid table session; authenticated customers and staff may place
// parcel orders with no table.
func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	in := workflow.PlaceOrderInput{Items: req.Items, TableNo: req.TableNo, SessionID: req.SessionID}
	o, err := h.WF.PlaceOrder(ctx, in, actorFrom(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// List returns the order board: staff see every order, customers see
// their own.
func (h *OrderHandler) List(c echo.Context) error {
	actor := actorFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	var orders []model.Order
	var err error
	if model.StaffRole(actor.Role) {
		orders, err = h.Orders.List(ctx)
	} else {
		orders, err = h.Orders.ListByPhone(ctx, actor.Phone)
	}
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Current returns the latest visible order for a phone number plus the
// full filtered list.  Customers default to their own phone; staff
// pass ?phone= and may add ?include_paid=true.
func (h *OrderHandler) Current(c echo.Context) error {
	actor := actorFrom(c)
	phone := c.QueryParam("phone")
	// Only staff may look up arbitrary phones; customers always get
	// their own orders no matter what they pass.
	if !model.StaffRole(actor.Role) {
		phone = actor.Phone
	}
	if phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone required"})
	}
	includePaid := c.QueryParam("include_paid") == "true"

	ctx, cancel := reqCtx(c)
	defer cancel()

	current, all, err := h.WF.CurrentOrders(ctx, phone, includePaid, actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"current": current, "orders": all})
}

// Patch applies a role-gated partial update.  The body's raw keys are
// captured so field *presence* is policed, not just decoded values: a
// chef sending any field besides status is refused outright.
func (h *OrderHandler) Patch(c echo.Context) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	patch := workflow.OrderPatch{Fields: make([]string, 0, len(raw))}
	for k := range raw {
		patch.Fields = append(patch.Fields, k)
	}
	sort.Strings(patch.Fields)

	if v, ok := raw["status"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be a string"})
		}
		patch.Status = &s
	}
	if v, ok := raw["items"]; ok {
		var items []workflow.ItemInput
		if err := json.Unmarshal(v, &items); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items must be a list"})
		}
		patch.Items = items
	}
	if v, ok := raw["table_no"]; ok {
		var t string
		if err := json.Unmarshal(v, &t); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_no must be a string"})
		}
		patch.TableNo = &t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.WF.UpdateOrder(ctx, c.Param("id"), patch, actorFrom(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Delete removes a single order.  Admin only.
func (h *OrderHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.WF.DeleteOrder(ctx, c.Param("id"), actorFrom(c)); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PurgeHistory deletes every settled order.  Open orders always
// survive.  Staff only.
func (h *OrderHandler) PurgeHistory(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.WF.PurgeHistory(ctx, actorFrom(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// BillEmail mails a plain-text bill for one open order to its customer
// email.  Admin only.
func (h *OrderHandler) BillEmail(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.WF.SendBillEmail(ctx, c.Param("id"), actorFrom(c)); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "bill sent"})
}
