package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/qrdine/qrdine-server/internal/model"
)

// PlaceOrderInput carries an order-placement request after boundary
// decoding.  Exactly one admission path must hold: a table flow
// supplies TableNo+SessionID matching the table's live session, or the
// actor is an authenticated customer/staff placing a parcel order with
// no table binding.
type PlaceOrderInput struct {
	Items     []ItemInput
	TableNo   string
	SessionID string
}

// maxOrderIDAttempts bounds collision-retry on order id generation.
// The id column is uniqueness-constrained regardless, so retrying is
// belt-and-suspenders, not the safety mechanism.
const maxOrderIDAttempts = 5

// normalizeItems validates and prices a requested item list: every
// line must resolve a known menu item, quantities are coerced to
// strict positive integers, and name/price snapshots are filled from
// the catalog when the client omitted them.  The returned total is
// the only total ever stored.
func (w *Workflow) normalizeItems(ctx context.Context, inputs []ItemInput) ([]model.OrderItem, float64, error) {
	if len(inputs) == 0 {
		return nil, 0, fmt.Errorf("%w: order has no items", ErrUnknownItem)
	}
	items := make([]model.OrderItem, 0, len(inputs))
	total := 0.0
	for _, in := range inputs {
		if strings.TrimSpace(in.ID) == "" {
			return nil, 0, fmt.Errorf("%w: item id required", ErrUnknownItem)
		}
		qty, ok := in.Qty.Int()
		if !ok || qty < 1 {
			return nil, 0, ErrInvalidQuantity
		}
		item := model.OrderItem{ID: in.ID, Qty: qty}
		if in.Name != "" && in.Price != nil {
			item.Name = in.Name
			item.Price = *in.Price
		} else {
			mi, err := w.menu.Get(ctx, in.ID)
			if err == ErrNotFound {
				return nil, 0, fmt.Errorf("%w: %s", ErrUnknownItem, in.ID)
			}
			if err != nil {
				return nil, 0, err
			}
			item.Name = mi.Name
			item.Price = mi.Price
			if in.Name != "" {
				item.Name = in.Name
			}
			if in.Price != nil {
				item.Price = *in.Price
			}
		}
		total += item.Price * float64(item.Qty)
		items = append(items, item)
	}
	return items, total, nil
}

// validateSession checks that the presented (table_no, session_id)
// pair matches the table's current live, unexpired session.
func (w *Workflow) validateSession(ctx context.Context, tableNo, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	t, err := w.tables.Get(ctx, tableNo)
	if err == ErrNotFound {
		return ErrInvalidSession
	}
	if err != nil {
		return err
	}
	if !t.Active || t.SessionID == nil || *t.SessionID != sessionID {
		return ErrInvalidSession
	}
	if t.SessionExpired(w.cfg.SessionTTL, w.now()) {
		return ErrInvalidSession
	}
	return nil
}

// PlaceOrder admits, validates, prices and persists a new order in
// pending status.  The customer snapshot is captured from the actor at
// creation time and stays empty for anonymous table orders.
func (w *Workflow) PlaceOrder(ctx context.Context, in PlaceOrderInput, actor Actor) (model.Order, error) {
	// Admission: table session or authenticated actor, never neither.
	if in.TableNo != "" {
		if err := w.validateSession(ctx, in.TableNo, in.SessionID); err != nil {
			return model.Order{}, err
		}
	} else if !actor.Authenticated {
		return model.Order{}, ErrInvalidSession
	}

	items, total, err := w.normalizeItems(ctx, in.Items)
	if err != nil {
		return model.Order{}, err
	}

	o := model.Order{
		Items:     items,
		Total:     total,
		Status:    model.StatusPending,
		CreatedAt: w.now(),
	}
	if in.TableNo != "" {
		tableNo := in.TableNo
		o.TableNo = &tableNo
	}
	if actor.Authenticated {
		o.Customer = model.Customer{Phone: actor.Phone, Email: actor.Email}
	}

	for attempt := 0; attempt < maxOrderIDAttempts; attempt++ {
		id, err := newOrderID()
		if err != nil {
			return model.Order{}, err
		}
		o.ID = id
		err = w.orders.Insert(ctx, o)
		if err == nil {
			w.publishOrderPlaced(ctx, o)
			return o, nil
		}
		if err != ErrDuplicateOrderID {
			return model.Order{}, err
		}
	}
	return model.Order{}, ErrDuplicateOrderID
}

// OrderPatch is a decoded PATCH body plus the set of field names the
// raw request actually contained.  Presence matters: a chef patch
// naming any field besides status is rejected even when the extra
// field would have been ignored.
type OrderPatch struct {
	Fields  []string
	Status  *string
	Items   []ItemInput
	TableNo *string
}

// UpdateOrder applies a role-gated patch.  Chefs may change status and
// nothing else; admins may change items, table_no and status, with the
// total recomputed whenever items change.  Terminal orders refuse all
// mutation with ErrOrderClosed.
func (w *Workflow) UpdateOrder(ctx context.Context, orderID string, patch OrderPatch, actor Actor) (model.Order, error) {
	if !CanMutateOrder(actor.Role, patch.Fields) {
		return model.Order{}, ErrForbidden
	}
	o, err := w.orders.Get(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if o.Closed() {
		return model.Order{}, ErrOrderClosed
	}

	if patch.Status != nil {
		if !model.ValidStatus(*patch.Status) {
			return model.Order{}, ErrInvalidStatus
		}
		o.Status = *patch.Status
	}
	if patch.Items != nil {
		items, total, err := w.normalizeItems(ctx, patch.Items)
		if err != nil {
			return model.Order{}, err
		}
		o.Items = items
		o.Total = total
	}
	if patch.TableNo != nil {
		if *patch.TableNo == "" {
			o.TableNo = nil
		} else {
			tableNo := *patch.TableNo
			o.TableNo = &tableNo
		}
	}

	if err := w.orders.Update(ctx, o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// DeleteOrder removes a single order.  Admin only.
func (w *Workflow) DeleteOrder(ctx context.Context, orderID string, actor Actor) error {
	if err := requireRole(adminOnly, actor.Role); err != nil {
		return err
	}
	return w.orders.Delete(ctx, orderID)
}

// BillResult summarizes an admin billing action.
type BillResult struct {
	TableNo     string  `json:"table_no"`
	TotalBill   float64 `json:"total_bill"`
	OrdersCount int     `json:"orders_count"`
}

// BillTable closes out a table: every non-terminal order is marked
// paid in one atomic batch, the bill is the sum of their totals at
// call time, and the table's session is released so the next customer
// can lock it.  Orders already paid or customer_paid are never
// re-touched or double-counted.  Admin only.
func (w *Workflow) BillTable(ctx context.Context, tableNo string, actor Actor) (BillResult, error) {
	if err := requireRole(adminOnly, actor.Role); err != nil {
		return BillResult{}, err
	}
	billed, err := w.orders.BillTable(ctx, tableNo)
	if err != nil {
		return BillResult{}, err
	}
	if len(billed) == 0 {
		return BillResult{}, ErrNothingToBill
	}
	total := 0.0
	for _, o := range billed {
		total += o.Total
	}
	// Required post-condition: billing frees the table for the next
	// customer.  A missing table (parcel orders billed by table_no
	// of a deleted table) is not an error here.
	if err := w.tables.ReleaseSession(ctx, tableNo); err != nil && err != ErrNotFound {
		return BillResult{}, err
	}
	w.publishTableBilled(ctx, tableNo, total, len(billed))
	return BillResult{TableNo: tableNo, TotalBill: total, OrdersCount: len(billed)}, nil
}

// CurrentOrders returns the most recent order for a phone number plus
// the full list, filtered by who is asking: customers never see
// terminal orders, staff see everything except admin-billed paid
// orders unless includePaid is set.
func (w *Workflow) CurrentOrders(ctx context.Context, phone string, includePaid bool, actor Actor) (model.Order, []model.Order, error) {
	all, err := w.orders.ListByPhone(ctx, phone)
	if err != nil {
		return model.Order{}, nil, err
	}
	visible := make([]model.Order, 0, len(all))
	for _, o := range all {
		if !includePaid {
			if o.Status == model.StatusPaid {
				continue
			}
			if o.Status == model.StatusCustomerPaid && !model.StaffRole(actor.Role) {
				continue
			}
		}
		visible = append(visible, o)
	}
	if len(visible) == 0 {
		return model.Order{}, nil, ErrNotFound
	}
	return visible[0], visible, nil
}

// PurgeHistory irrevocably deletes every paid/customer_paid order and
// returns the count removed.  Open orders always survive.  Staff only.
func (w *Workflow) PurgeHistory(ctx context.Context, actor Actor) (int64, error) {
	if err := requireRole(staffOnly, actor.Role); err != nil {
		return 0, err
	}
	return w.orders.PurgeTerminal(ctx)
}

// SendBillEmail mails a plain-text bill for a single open order to the
// customer email captured on it.  Delivery is best-effort; a failed
// send is reported without touching the order.  Admin only.
func (w *Workflow) SendBillEmail(ctx context.Context, orderID string, actor Actor) error {
	if err := requireRole(adminOnly, actor.Role); err != nil {
		return err
	}
	if w.notifier == nil {
		return fmt.Errorf("no mailer configured")
	}
	o, err := w.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Closed() {
		return ErrOrderClosed
	}
	if o.Customer.Email == "" {
		return fmt.Errorf("%w: order has no customer email", ErrNotFound)
	}

	tableNo := "N/A"
	if o.TableNo != nil {
		tableNo = *o.TableNo
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Dear Customer,\n\nHere are your bill details for Order #%s:\n\n", o.ID)
	fmt.Fprintf(&b, "Table: %s\nStatus: %s\n\nItems:\n", tableNo, o.Status)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x %d = %.2f\n", it.Name, it.Qty, it.Price*float64(it.Qty))
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n\nThank you for dining with us!\n", o.Total)

	return w.notifier.Send(o.Customer.Email, "Your Bill Details", b.String())
}
