// Package workflow implements the table-session and order lifecycle
// core: session-gated order placement, role-gated mutation, billing
// aggregation and payment reconciliation.  It talks to storage through
// small interfaces so the MySQL repositories and the in-memory test
// fakes are interchangeable.
package workflow

import "errors"

// Domain error taxonomy.  Handlers match these with errors.Is and
// translate them to HTTP status codes; anything else coming out of the
// workflow is a storage or gateway failure and maps to a generic 500.
var (
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrInvalidSession            = errors.New("invalid or expired table session")
	ErrAlreadyLocked             = errors.New("table is already locked")
	ErrOrderClosed               = errors.New("order is already closed")
	ErrInvalidQuantity           = errors.New("qty must be a positive integer")
	ErrUnknownItem               = errors.New("menu item does not exist")
	ErrInvalidSpec               = errors.New("invalid table spec")
	ErrInvalidStatus             = errors.New("invalid order status")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrNothingToBill             = errors.New("no unpaid orders")

	// Storage-level sentinels returned by store implementations so the
	// workflow can react without depending on driver error codes.
	ErrDuplicateOrderID = errors.New("order id already exists")
	ErrTableExists      = errors.New("table number already exists")
)
