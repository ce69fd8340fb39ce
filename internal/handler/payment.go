package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/workflow"
)

// PaymentHandler exposes the customer self-checkout flow against the
// payment gateway.
type PaymentHandler struct {
	WF *workflow.Workflow
}

func NewPaymentHandler(wf *workflow.Workflow) *PaymentHandler {
	return &PaymentHandler{WF: wf}
}

type confirmPaymentReq struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Create sums the customer's pending orders and registers a payment
// intent for the total.  Customer only.
func (h *PaymentHandler) Create(c echo.Context) error {
	actor := actorFrom(c)
	if actor.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account has no phone number"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	intent, err := h.WF.CreatePaymentIntent(ctx, actor.Phone, actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, intent)
}

// Verify validates the gateway checkout signature.  Order statuses are
// left for staff to advance; a valid signature only confirms intent.
func (h *PaymentHandler) Verify(c echo.Context) error {
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order id, payment id and signature required"})
	}
	actor := actorFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	in := workflow.ConfirmPaymentInput{
		IntentID:  req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Phone:     actor.Phone,
	}
	open, err := h.WF.ConfirmPayment(ctx, in, actor)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": true, "open_orders": open})
}
