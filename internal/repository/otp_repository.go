package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// OTPRepo provides data access to the otp_codes table.  Issuing a new
// code removes every earlier code for the same email, so at most one
// code is live per address.
type OTPRepo struct {
	DB *sql.DB
}

// NewOTPRepo returns an OTPRepo bound to the provided database.
func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// Replace stores a fresh code for the email, superseding prior ones.
// Both statements run in one transaction so a crash never leaves the
// address with two live codes.
func (r *OTPRepo) Replace(ctx context.Context, email, code string, expiresAt time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM otp_codes WHERE email = ?`, email); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO otp_codes (email, code, expires_at) VALUES (?, ?, ?)`,
		email, code, expiresAt.UTC()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Latest returns the most recently issued code for the email.
func (r *OTPRepo) Latest(ctx context.Context, email string) (model.OneTimeCode, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var c model.OneTimeCode
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, code, created_at, expires_at FROM otp_codes
		 WHERE email = ? ORDER BY created_at DESC LIMIT 1`, email).
		Scan(&c.ID, &c.Email, &c.Code, &c.CreatedAt, &c.ExpiresAt)
	if err == sql.ErrNoRows {
		return model.OneTimeCode{}, workflow.ErrNotFound
	}
	return c, err
}

// DeleteForEmail removes every code for the email; called after a
// successful verification and for expired codes.
func (r *OTPRepo) DeleteForEmail(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx, `DELETE FROM otp_codes WHERE email = ?`, email)
	return err
}
