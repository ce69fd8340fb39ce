package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// OrderRepo provides data access to the orders table.  Items and the
// customer snapshot are stored as JSON columns; the columns are
// marshalled here so the rest of the service only sees typed structs.
type OrderRepo struct {
	DB *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the provided database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderColumns = `id, items, total, status, customer, table_no, created_at`

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	var items, customer []byte
	if err := row.Scan(&o.ID, &items, &o.Total, &o.Status, &customer, &o.TableNo, &o.CreatedAt); err != nil {
		return model.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return model.Order{}, err
	}
	if len(customer) > 0 {
		if err := json.Unmarshal(customer, &o.Customer); err != nil {
			return model.Order{}, err
		}
	}
	return o, nil
}

// Insert persists a new order.  The id column carries a primary-key
// uniqueness constraint; a collision surfaces as
// workflow.ErrDuplicateOrderID so placement can retry with a fresh id.
func (r *OrderRepo) Insert(ctx context.Context, o model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO orders (id, items, total, status, customer, table_no, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, items, o.Total, o.Status, customer, o.TableNo, o.CreatedAt)
	if isDuplicateKey(err) {
		return workflow.ErrDuplicateOrderID
	}
	return err
}

// Get fetches an order by id.
func (r *OrderRepo) Get(ctx context.Context, id string) (model.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return model.Order{}, workflow.ErrNotFound
	}
	return o, err
}

// Update rewrites an order's mutable columns.
func (r *OrderRepo) Update(ctx context.Context, o model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET items = ?, total = ?, status = ?, table_no = ? WHERE id = ?`,
		items, o.Total, o.Status, o.TableNo, o.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Rows-affected is 0 for both a missing row and a no-op
		// update, so confirm existence before reporting not found.
		if _, err := r.Get(ctx, o.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a single order.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
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

// List returns every order, most recent first.  Used by the staff
// order board.
func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// ListByPhone returns all orders whose customer snapshot carries the
// phone number, most recent first.
func (r *OrderRepo) ListByPhone(ctx context.Context, phone string) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE JSON_UNQUOTE(JSON_EXTRACT(customer, '$.phone')) = ?
		 ORDER BY created_at DESC`, phone)
}

// ListByPhoneAndStatus narrows ListByPhone to a single status.
func (r *OrderRepo) ListByPhoneAndStatus(ctx context.Context, phone, status string) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE JSON_UNQUOTE(JSON_EXTRACT(customer, '$.phone')) = ? AND status = ?
		 ORDER BY created_at DESC`, phone, status)
}

// BillTable marks every non-terminal order of the table paid in one
// atomic batch and returns the rows it touched.  The select and the
// update run in a single transaction with the rows locked, so an
// order arriving mid-batch is neither double-billed nor silently
// dropped; it simply lands in the next billing run.
func (r *OrderRepo) BillTable(ctx context.Context, tableNo string) ([]model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE table_no = ? AND status NOT IN (?, ?) FOR UPDATE`,
		tableNo, model.StatusPaid, model.StatusCustomerPaid)
	if err != nil {
		return nil, err
	}
	var billed []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		billed = append(billed, o)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(billed) == 0 {
		return nil, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE table_no = ? AND status NOT IN (?, ?)`,
		model.StatusPaid, tableNo, model.StatusPaid, model.StatusCustomerPaid); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	for i := range billed {
		billed[i].Status = model.StatusPaid
	}
	return billed, nil
}

// PurgeTerminal deletes every paid/customer_paid order and returns the
// count removed.
func (r *OrderRepo) PurgeTerminal(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM orders WHERE status IN (?, ?)`,
		model.StatusPaid, model.StatusCustomerPaid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *OrderRepo) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
