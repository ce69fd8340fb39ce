// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedEvent is published when an order is successfully placed.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type OrderPlacedEvent struct {
	OrderID   string  `json:"order_id"`
	TableNo   string  `json:"table_no,omitempty"`
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
	Status    string  `json:"status"`
	PlacedAt  string  `json:"placed_at"`
}

// TableBilledEvent is published when an admin closes out a table.
type TableBilledEvent struct {
	TableNo     string  `json:"table_no"`
	TotalBill   float64 `json:"total_bill"`
	OrdersCount int     `json:"orders_count"`
	BilledAt    string  `json:"billed_at"`
}

// Queue names used by both the publisher and the consumer.
const (
	OrderPlacedQueue = "order.placed"
	TableBilledQueue = "table.billed"
)
