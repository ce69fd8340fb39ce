package workflow

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/qrdine/qrdine-server/internal/model"
)

// PaymentIntent is what the client needs to drive the gateway's
// checkout: the intent id, the amount in minor units, and the public
// key identifying the merchant account.
type PaymentIntent struct {
	IntentID    string  `json:"order_id"`
	AmountMinor int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Key         string  `json:"key"`
	OrdersCount int     `json:"orders_count"`
	TotalAmount float64 `json:"total_amount"`
}

// CreatePaymentIntent sums the customer's pending orders and registers
// a payment intent for the total with the gateway, in minor currency
// units.  Customer only.
func (w *Workflow) CreatePaymentIntent(ctx context.Context, phone string, actor Actor) (PaymentIntent, error) {
	if actor.Role != model.RoleCustomer {
		return PaymentIntent{}, ErrForbidden
	}
	if w.gateway == nil {
		return PaymentIntent{}, fmt.Errorf("no payment gateway configured")
	}
	pending, err := w.orders.ListByPhoneAndStatus(ctx, phone, model.StatusPending)
	if err != nil {
		return PaymentIntent{}, err
	}
	if len(pending) == 0 {
		return PaymentIntent{}, ErrNothingToBill
	}
	total := 0.0
	for _, o := range pending {
		total += o.Total
	}
	amountMinor := int64(math.Round(total * 100))

	intent, err := w.gateway.CreateIntent(ctx, amountMinor, w.cfg.Currency, uuid.NewString())
	if err != nil {
		return PaymentIntent{}, err
	}
	return PaymentIntent{
		IntentID:    intent.ID,
		AmountMinor: intent.AmountMinor,
		Currency:    intent.Currency,
		Key:         w.gateway.KeyID(),
		OrdersCount: len(pending),
		TotalAmount: total,
	}, nil
}

// ConfirmPaymentInput is the gateway callback payload a client relays
// after checkout.
type ConfirmPaymentInput struct {
	IntentID  string
	PaymentID string
	Signature string
	Phone     string
}

// ConfirmPayment validates the gateway signature over the
// intent/payment pair.  On success the matching orders' statuses are
// deliberately left unchanged: online payment confirms intent, while
// status advancement stays a separate staff action, so the kitchen
// keeps seeing the orders until it bills or completes them.
func (w *Workflow) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput, actor Actor) (int, error) {
	if actor.Role != model.RoleCustomer {
		return 0, ErrForbidden
	}
	if w.gateway == nil {
		return 0, fmt.Errorf("no payment gateway configured")
	}
	if !w.gateway.VerifySignature(in.IntentID, in.PaymentID, in.Signature) {
		return 0, ErrPaymentVerificationFailed
	}
	all, err := w.orders.ListByPhone(ctx, in.Phone)
	if err != nil {
		return 0, err
	}
	open := 0
	for _, o := range all {
		if !o.Closed() {
			open++
		}
	}
	if open == 0 {
		return 0, ErrNothingToBill
	}
	return open, nil
}
