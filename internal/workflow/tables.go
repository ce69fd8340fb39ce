package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/queue"
)

// GeneratedTable is the per-table result of table generation: the
// number, its secret hash and the full URL the QR code should encode.
type GeneratedTable struct {
	TableNo string `json:"table_no"`
	Hash    string `json:"hash"`
	ScanURL string `json:"scan_url"`
}

// LockResult is returned from a successful session acquisition.
type LockResult struct {
	TableNo   string    `json:"table_no"`
	SessionID string    `json:"session_id"`
	LockedAt  time.Time `json:"locked_at"`
}

// VerifyResult reports whether a presented (table_no, hash) pair is
// valid, plus the advisory session-expiry budget so the client knows
// when a re-scan will be needed.
type VerifyResult struct {
	Valid            bool      `json:"valid"`
	TableNo          string    `json:"table_no,omitempty"`
	SessionExpiresIn int       `json:"session_expires_in,omitempty"` // seconds
	ServerTime       time.Time `json:"server_time"`
}

// ScanURL builds the URL encoded into a table's QR code.
func (w *Workflow) ScanURL(t model.Table) string {
	return fmt.Sprintf("%s/scan/%s/%s", w.cfg.ScanBaseURL, t.TableNo, t.AccessHash)
}

// GenerateTables creates (or idempotently reuses) tables for the given
// spec.  Generation is get-or-create per table number so a retried
// request never fails on its own earlier half; a reused table keeps
// its existing hash.  Admin only.
func (w *Workflow) GenerateTables(ctx context.Context, spec GenerateSpec, actor Actor) ([]GeneratedTable, error) {
	if err := requireRole(adminOnly, actor.Role); err != nil {
		return nil, err
	}
	tableNos, err := resolveSpec(spec, func() (int, error) {
		return w.tables.MaxNumericSuffix(ctx)
	})
	if err != nil {
		return nil, err
	}

	var createdBy *uint64
	if actor.UserID != 0 {
		createdBy = &actor.UserID
	}

	results := make([]GeneratedTable, 0, len(tableNos))
	for _, no := range tableNos {
		hash, err := randomHex(16)
		if err != nil {
			return nil, err
		}
		t, err := w.tables.GetOrCreate(ctx, no, hash, createdBy)
		if err != nil {
			return nil, err
		}
		results = append(results, GeneratedTable{
			TableNo: t.TableNo,
			Hash:    t.AccessHash,
			ScanURL: w.ScanURL(t),
		})
	}
	return results, nil
}

// LockTable acquires a session for a table.  The claim is a single
// conditional update at the storage layer: when two customers scan the
// same table concurrently exactly one wins and the other gets
// ErrAlreadyLocked.  A session older than the expiry window counts as
// vacant and is reclaimed by the next lock.
func (w *Workflow) LockTable(ctx context.Context, tableNo string) (LockResult, error) {
	sessionID, err := randomHex(16)
	if err != nil {
		return LockResult{}, err
	}
	now := w.now()
	claimed, err := w.tables.ClaimSession(ctx, tableNo, sessionID, now, now.Add(-w.cfg.SessionTTL))
	if err != nil {
		return LockResult{}, err
	}
	if claimed {
		return LockResult{TableNo: tableNo, SessionID: sessionID, LockedAt: now}, nil
	}
	// Distinguish contention from a missing or inactive table.
	t, err := w.tables.Get(ctx, tableNo)
	if err != nil {
		return LockResult{}, err
	}
	if !t.Active {
		return LockResult{}, ErrNotFound
	}
	return LockResult{}, ErrAlreadyLocked
}

// VerifyTable checks a scanned (table_no, hash) pair.  A mismatch or
// an inactive table is a negative result, not an error.
func (w *Workflow) VerifyTable(ctx context.Context, tableNo, hash string) (VerifyResult, error) {
	now := w.now()
	t, err := w.tables.GetActiveByHash(ctx, tableNo, hash)
	if err == ErrNotFound {
		return VerifyResult{Valid: false, ServerTime: now}, nil
	}
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Valid:            true,
		TableNo:          t.TableNo,
		SessionExpiresIn: int(w.cfg.SessionTTL.Seconds()),
		ServerTime:       now,
	}, nil
}

// ReleaseTable clears a table's session so the next customer can lock
// it.  Billing calls this implicitly.
func (w *Workflow) ReleaseTable(ctx context.Context, tableNo string) error {
	return w.tables.ReleaseSession(ctx, tableNo)
}

// DeleteTable hard-removes a table.  Admin only.
func (w *Workflow) DeleteTable(ctx context.Context, tableNo string, actor Actor) error {
	if err := requireRole(adminOnly, actor.Role); err != nil {
		return err
	}
	return w.tables.Delete(ctx, tableNo)
}

// ListTables returns every active table with its scan URL.  Admin only.
func (w *Workflow) ListTables(ctx context.Context, actor Actor) ([]GeneratedTable, error) {
	if err := requireRole(adminOnly, actor.Role); err != nil {
		return nil, err
	}
	tables, err := w.tables.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GeneratedTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, GeneratedTable{TableNo: t.TableNo, Hash: t.AccessHash, ScanURL: w.ScanURL(t)})
	}
	return out, nil
}

// RenameTable changes a table's number, refusing duplicates.  The
// access hash is kept, so previously printed QR codes keep working
// under the new number's scan URL.  Admin only.
func (w *Workflow) RenameTable(ctx context.Context, tableNo, newTableNo string, actor Actor) (GeneratedTable, error) {
	if err := requireRole(adminOnly, actor.Role); err != nil {
		return GeneratedTable{}, err
	}
	if _, err := parseTableNo(newTableNo); err != nil {
		return GeneratedTable{}, err
	}
	t, err := w.tables.Rename(ctx, tableNo, newTableNo)
	if err != nil {
		return GeneratedTable{}, err
	}
	return GeneratedTable{TableNo: t.TableNo, Hash: t.AccessHash, ScanURL: w.ScanURL(t)}, nil
}

// publishTableBilled fires the table.billed event, best-effort.
func (w *Workflow) publishTableBilled(ctx context.Context, tableNo string, total float64, count int) {
	if w.events == nil {
		return
	}
	ev := queue.TableBilledEvent{
		TableNo:     tableNo,
		TotalBill:   total,
		OrdersCount: count,
		BilledAt:    w.now().Format(time.RFC3339),
	}
	if err := w.events.PublishTableBilled(ctx, ev); err != nil {
		log.Printf("workflow: publish table.billed for %s failed: %v", tableNo, err)
	}
}
