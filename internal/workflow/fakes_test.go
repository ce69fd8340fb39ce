package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/queue"
)

// In-memory store fakes.  fakeTables guards its state with a mutex and
// implements ClaimSession as a real compare-and-set, so the concurrent
// locking tests exercise the same winner-takes-all semantics as the
// SQL implementation.

type fakeTables struct {
	mu     sync.Mutex
	tables map[string]*model.Table
}

func newFakeTables() *fakeTables {
	return &fakeTables{tables: make(map[string]*model.Table)}
}

func (f *fakeTables) add(t model.Table) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := t
	f.tables[t.TableNo] = &cp
}

func (f *fakeTables) GetOrCreate(_ context.Context, tableNo, accessHash string, createdBy *uint64) (model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tables[tableNo]; ok {
		return *t, nil
	}
	t := &model.Table{TableNo: tableNo, AccessHash: accessHash, Active: true, CreatedBy: createdBy, CreatedAt: time.Now().UTC()}
	f.tables[tableNo] = t
	return *t, nil
}

func (f *fakeTables) Get(_ context.Context, tableNo string) (model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[tableNo]
	if !ok {
		return model.Table{}, ErrNotFound
	}
	return *t, nil
}

func (f *fakeTables) GetActiveByHash(_ context.Context, tableNo, accessHash string) (model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[tableNo]
	if !ok || !t.Active || t.AccessHash != accessHash {
		return model.Table{}, ErrNotFound
	}
	return *t, nil
}

func (f *fakeTables) MaxNumericSuffix(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for no := range f.tables {
		if n, err := parseTableNo(no); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (f *fakeTables) ClaimSession(_ context.Context, tableNo, sessionID string, now, staleBefore time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[tableNo]
	if !ok || !t.Active {
		return false, nil
	}
	if t.SessionID != nil && (t.LockedAt == nil || t.LockedAt.After(staleBefore)) {
		return false, nil
	}
	t.SessionID = &sessionID
	lockedAt := now
	t.LockedAt = &lockedAt
	return true, nil
}

func (f *fakeTables) ReleaseSession(_ context.Context, tableNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[tableNo]
	if !ok {
		return ErrNotFound
	}
	t.SessionID = nil
	t.LockedAt = nil
	return nil
}

func (f *fakeTables) Rename(_ context.Context, tableNo, newTableNo string) (model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tables[newTableNo]; exists {
		return model.Table{}, ErrTableExists
	}
	t, ok := f.tables[tableNo]
	if !ok {
		return model.Table{}, ErrNotFound
	}
	delete(f.tables, tableNo)
	t.TableNo = newTableNo
	f.tables[newTableNo] = t
	return *t, nil
}

func (f *fakeTables) Delete(_ context.Context, tableNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[tableNo]; !ok {
		return ErrNotFound
	}
	delete(f.tables, tableNo)
	return nil
}

func (f *fakeTables) List(_ context.Context) ([]model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Table
	for _, t := range f.tables {
		if t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeOrders struct {
	mu          sync.Mutex
	orders      map[string]model.Order
	sequence    []string // insertion order, newest first on reads
	failInserts int      // first N inserts fail with ErrDuplicateOrderID
	insertCalls int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]model.Order)}
}

func (f *fakeOrders) add(o model.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	f.sequence = append([]string{o.ID}, f.sequence...)
}

func (f *fakeOrders) Insert(_ context.Context, o model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.failInserts > 0 {
		f.failInserts--
		return ErrDuplicateOrderID
	}
	if _, exists := f.orders[o.ID]; exists {
		return ErrDuplicateOrderID
	}
	f.orders[o.ID] = o
	f.sequence = append([]string{o.ID}, f.sequence...)
	return nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return model.Order{}, ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) Update(_ context.Context, o model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[o.ID]; !ok {
		return ErrNotFound
	}
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrders) ListByPhone(_ context.Context, phone string) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, id := range f.sequence {
		o, ok := f.orders[id]
		if ok && o.Customer.Phone == phone {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByPhoneAndStatus(ctx context.Context, phone, status string) ([]model.Order, error) {
	all, _ := f.ListByPhone(ctx, phone)
	var out []model.Order
	for _, o := range all {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) BillTable(_ context.Context, tableNo string) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var billed []model.Order
	for id, o := range f.orders {
		if o.TableNo != nil && *o.TableNo == tableNo && !o.Closed() {
			o.Status = model.StatusPaid
			f.orders[id] = o
			billed = append(billed, o)
		}
	}
	return billed, nil
}

func (f *fakeOrders) PurgeTerminal(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, o := range f.orders {
		if o.Closed() {
			delete(f.orders, id)
			n++
		}
	}
	return n, nil
}

type fakeMenu struct {
	items map[string]model.MenuItem
}

func (f *fakeMenu) Get(_ context.Context, id string) (model.MenuItem, error) {
	m, ok := f.items[id]
	if !ok {
		return model.MenuItem{}, ErrNotFound
	}
	return m, nil
}

type fakeGateway struct {
	intent    Intent
	createErr error
	validSig  string
	created   []int64 // amounts requested
}

func (f *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency, receipt string) (Intent, error) {
	f.created = append(f.created, amountMinor)
	if f.createErr != nil {
		return Intent{}, f.createErr
	}
	in := f.intent
	if in.ID == "" {
		in = Intent{ID: "intent_1", AmountMinor: amountMinor, Currency: currency}
	}
	return in, nil
}

func (f *fakeGateway) VerifySignature(intentID, paymentID, signature string) bool {
	return signature == f.validSig
}

func (f *fakeGateway) KeyID() string { return "key_test" }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string // "to|subject"
	fail error
	body string
}

func (f *fakeNotifier) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, to+"|"+subject)
	f.body = body
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	placed []queue.OrderPlacedEvent
	billed []queue.TableBilledEvent
}

func (f *fakePublisher) PublishOrderPlaced(_ context.Context, ev queue.OrderPlacedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, ev)
	return nil
}

func (f *fakePublisher) PublishTableBilled(_ context.Context, ev queue.TableBilledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.billed = append(f.billed, ev)
	return nil
}
