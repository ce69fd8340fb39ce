package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/queue"
)

// MenuCatalog is the read-only lookup the workflow uses to resolve and
// price order items.  Implementations return ErrNotFound for unknown
// ids.
type MenuCatalog interface {
	Get(ctx context.Context, id string) (model.MenuItem, error)
}

// TableStore owns table rows and their session-lock state.
// ClaimSession must be a single conditional update: it claims the
// table only when no live session exists (or the previous session is
// older than staleBefore) and reports whether the claim won.  A
// read-then-write implementation would race two customers scanning the
// same table at once.
type TableStore interface {
	GetOrCreate(ctx context.Context, tableNo, accessHash string, createdBy *uint64) (model.Table, error)
	Get(ctx context.Context, tableNo string) (model.Table, error)
	GetActiveByHash(ctx context.Context, tableNo, accessHash string) (model.Table, error)
	MaxNumericSuffix(ctx context.Context) (int, error)
	ClaimSession(ctx context.Context, tableNo, sessionID string, now time.Time, staleBefore time.Time) (bool, error)
	ReleaseSession(ctx context.Context, tableNo string) error
	Rename(ctx context.Context, tableNo, newTableNo string) (model.Table, error)
	Delete(ctx context.Context, tableNo string) error
	List(ctx context.Context) ([]model.Table, error)
}

// OrderStore owns order rows.  Insert returns ErrDuplicateOrderID when
// the generated id collides, so placement can retry with a fresh one;
// the id column must still be uniqueness-constrained at the storage
// layer (the collision check alone is not a guarantee).  BillTable
// must mark every non-terminal order of the table paid in one atomic
// batch and return the rows it touched.
type OrderStore interface {
	Insert(ctx context.Context, o model.Order) error
	Get(ctx context.Context, id string) (model.Order, error)
	Update(ctx context.Context, o model.Order) error
	Delete(ctx context.Context, id string) error
	ListByPhone(ctx context.Context, phone string) ([]model.Order, error)
	ListByPhoneAndStatus(ctx context.Context, phone, status string) ([]model.Order, error)
	BillTable(ctx context.Context, tableNo string) ([]model.Order, error)
	PurgeTerminal(ctx context.Context) (int64, error)
}

// PaymentGateway is the external payment collaborator (razorpay-shaped).
// CreateIntent registers a payment of the given amount in minor
// currency units and returns the gateway's intent descriptor;
// VerifySignature checks the gateway's HMAC over an intent/payment
// pair.  Both are treated as fallible remote calls with no retry.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (Intent, error)
	VerifySignature(intentID, paymentID, signature string) bool
	KeyID() string
}

// Intent is the gateway's descriptor for a registered payment.
type Intent struct {
	ID          string
	AmountMinor int64
	Currency    string
}

// Notifier delivers emails best-effort.  A send failure is reported to
// the caller as a soft warning and never rolls back the mutation that
// triggered it.
type Notifier interface {
	Send(to, subject, body string) error
}

// EventPublisher pushes lifecycle events onto the message queue,
// best-effort.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
	PublishTableBilled(ctx context.Context, ev queue.TableBilledEvent) error
}

// Config is the explicit configuration handed to the workflow at
// construction; the workflow reads no ambient process state.
type Config struct {
	ScanBaseURL string        // base URL embedded in QR scan links
	SessionTTL  time.Duration // session-expiry budget communicated to clients
	Currency    string        // ISO currency code for payment intents
}

// Workflow orchestrates the table-session and order lifecycle over the
// stores and collaborators above.
type Workflow struct {
	cfg      Config
	menu     MenuCatalog
	tables   TableStore
	orders   OrderStore
	gateway  PaymentGateway
	notifier Notifier
	events   EventPublisher
	now      func() time.Time
}

// New constructs a Workflow.  gateway, notifier and events may be nil
// when the deployment has no such collaborator; the dependent
// operations then fail or no-op gracefully.
func New(cfg Config, menu MenuCatalog, tables TableStore, orders OrderStore, gateway PaymentGateway, notifier Notifier, events EventPublisher) *Workflow {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Workflow{
		cfg:      cfg,
		menu:     menu,
		tables:   tables,
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// randomHex returns n random bytes hex-encoded; used for access hashes
// and session tokens.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

const orderIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newOrderID generates a public order id of the form "ord_" plus eight
// lowercase alphanumerics.
func newOrderID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = orderIDAlphabet[int(b[i])%len(orderIDAlphabet)]
	}
	return "ord_" + string(b), nil
}

// publishOrderPlaced fires the order.placed event, logging failures
// without affecting the request.
func (w *Workflow) publishOrderPlaced(ctx context.Context, o model.Order) {
	if w.events == nil {
		return
	}
	tableNo := ""
	if o.TableNo != nil {
		tableNo = *o.TableNo
	}
	ev := queue.OrderPlacedEvent{
		OrderID:   o.ID,
		TableNo:   tableNo,
		ItemCount: len(o.Items),
		Total:     o.Total,
		Status:    o.Status,
		PlacedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	if err := w.events.PublishOrderPlaced(ctx, ev); err != nil {
		log.Printf("workflow: publish order.placed for %s failed: %v", o.ID, err)
	}
}
