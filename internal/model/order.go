package model

import "time"

// Order status values.  An order normally moves pending -> preparing ->
// completed, and any non-terminal order can jump straight to paid
// (admin billing) or customer_paid (self-service online payment).
// paid and customer_paid are terminal: no further status mutation is
// permitted.
const (
	StatusPending      = "pending"
	StatusPreparing    = "preparing"
	StatusCompleted    = "completed"
	StatusPaid         = "paid"
	StatusCustomerPaid = "customer_paid"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusCompleted, StatusPaid, StatusCustomerPaid:
		return true
	}
	return false
}

// TerminalStatus reports whether s is paid or customer_paid.
func TerminalStatus(s string) bool {
	return s == StatusPaid || s == StatusCustomerPaid
}

// OrderItem is one line of an order.  Name and Price are snapshots
// copied from the menu at order time so that later menu edits never
// retroactively alter historical orders.
type OrderItem struct {
	ID    string  `json:"id"`    // menu item id at order time
	Name  string  `json:"name"`  // snapshot of the item name
	Price float64 `json:"price"` // snapshot of the unit price
	Qty   int     `json:"qty"`   // quantity, always >= 1
}

// Customer is the identity snapshot captured when an order is placed.
// It is a denormalized copy, not a live reference: a customer editing
// their profile later must not change historical orders.  Both fields
// are empty for anonymous table orders.
type Customer struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Order corresponds to a row in the `orders` table.  Items and
// Customer are stored as JSON columns.  Total is always recomputed
// server-side from Items; a client-supplied total is never trusted.
//
// TableNo is nil for takeaway/parcel orders entered by staff.
type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	Customer  Customer    `json:"customer"`
	TableNo   *string     `json:"table_no"`
	CreatedAt time.Time   `json:"created_at"`
}

// Closed reports whether the order has reached a terminal status.
func (o Order) Closed() bool { return TerminalStatus(o.Status) }
