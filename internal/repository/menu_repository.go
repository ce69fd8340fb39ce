package repository

import (
	"context"
	"database/sql"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// MenuRepo provides read-only access to the menu_items table.  The
// catalog is managed by external tooling; the service only ever lists
// and resolves items.
type MenuRepo struct {
	DB *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the provided database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// List returns the full menu ordered by category then name.
func (r *MenuRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, price, description, category, image
		 FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Description, &m.Category, &m.Image); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Get resolves a single menu item by id.  A missing id is
// workflow.ErrNotFound so the workflow can map it to UnknownItem.
func (r *MenuRepo) Get(ctx context.Context, id string) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, price, description, category, image
		 FROM menu_items WHERE id = ? LIMIT 1`, id).
		Scan(&m.ID, &m.Name, &m.Price, &m.Description, &m.Category, &m.Image)
	if err == sql.ErrNoRows {
		return model.MenuItem{}, workflow.ErrNotFound
	}
	return m, err
}
