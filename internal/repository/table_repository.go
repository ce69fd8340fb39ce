package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// TableRepo provides data access to the tables table, including the
// session-lock state.  All timestamps are UTC.
type TableRepo struct {
	DB *sql.DB
}

// NewTableRepo returns a TableRepo bound to the provided database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

const tableColumns = `table_no, access_hash, active, session_id, locked_at, created_by, created_at`

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var t model.Table
	err := row.Scan(&t.TableNo, &t.AccessHash, &t.Active, &t.SessionID, &t.LockedAt, &t.CreatedBy, &t.CreatedAt)
	return t, err
}

// GetOrCreate inserts a table with the supplied hash, or returns the
// existing row untouched when the number is already taken.  This makes
// generation idempotent: a retried request reuses tables created by
// its earlier half, keeping their original hashes.
func (r *TableRepo) GetOrCreate(ctx context.Context, tableNo, accessHash string, createdBy *uint64) (model.Table, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO tables (table_no, access_hash, active, created_by) VALUES (?, ?, 1, ?)`,
		tableNo, accessHash, createdBy)
	if err != nil && !isDuplicateKey(err) {
		return model.Table{}, err
	}
	return r.Get(ctx, tableNo)
}

// Get fetches a table by number.
func (r *TableRepo) Get(ctx context.Context, tableNo string) (model.Table, error) {
	t, err := scanTable(r.DB.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE table_no = ? LIMIT 1`, tableNo))
	if err == sql.ErrNoRows {
		return model.Table{}, workflow.ErrNotFound
	}
	return t, err
}

// GetActiveByHash fetches an active table matching both number and
// scan hash; used to verify QR scans.
func (r *TableRepo) GetActiveByHash(ctx context.Context, tableNo, accessHash string) (model.Table, error) {
	t, err := scanTable(r.DB.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE table_no = ? AND access_hash = ? AND active = 1 LIMIT 1`,
		tableNo, accessHash))
	if err == sql.ErrNoRows {
		return model.Table{}, workflow.ErrNotFound
	}
	return t, err
}

// MaxNumericSuffix returns the highest numeric suffix among existing
// table numbers, or 0 when no tables exist.  Sequential generation
// continues from here.
func (r *TableRepo) MaxNumericSuffix(ctx context.Context) (int, error) {
	var max sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		`SELECT MAX(CAST(SUBSTRING(table_no, 2) AS UNSIGNED)) FROM tables`).Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

// ClaimSession is the compare-and-set at the heart of table locking:
// one conditional UPDATE that succeeds only when the table is active
// and holds no live session (a session older than staleBefore counts
// as vacant).  Under two concurrent scans exactly one statement
// affects a row; the loser sees claimed == false.
func (r *TableRepo) ClaimSession(ctx context.Context, tableNo, sessionID string, now time.Time, staleBefore time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tables SET session_id = ?, locked_at = ?
		 WHERE table_no = ? AND active = 1 AND (session_id IS NULL OR locked_at <= ?)`,
		sessionID, now, tableNo, staleBefore)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseSession clears the session so the next customer can lock the
// table.  Releasing a free table is a no-op.
func (r *TableRepo) ReleaseSession(ctx context.Context, tableNo string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tables SET session_id = NULL, locked_at = NULL WHERE table_no = ?`, tableNo)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "already free" from "no such table".
		if _, err := r.Get(ctx, tableNo); err != nil {
			return err
		}
	}
	return nil
}

// Rename changes a table's number, refusing duplicates.
func (r *TableRepo) Rename(ctx context.Context, tableNo, newTableNo string) (model.Table, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tables SET table_no = ? WHERE table_no = ?`, newTableNo, tableNo)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Table{}, workflow.ErrTableExists
		}
		return model.Table{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Table{}, workflow.ErrNotFound
	}
	return r.Get(ctx, newTableNo)
}

// Delete hard-removes a table row.
func (r *TableRepo) Delete(ctx context.Context, tableNo string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tables WHERE table_no = ?`, tableNo)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return workflow.ErrNotFound
	}
	return nil
}

// List returns all active tables ordered by numeric suffix.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE active = 1
		 ORDER BY CAST(SUBSTRING(table_no, 2) AS UNSIGNED)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
