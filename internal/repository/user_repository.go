package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// UserRepo provides data access to the users table.  Customers are
// passwordless (OTP login); staff rows carry a bcrypt hash.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo returns a UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, email, phone, role, password_hash, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var phone, hash sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &phone, &u.Role, &hash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.Phone = phone.String
	u.PasswordHash = hash.String
	return u, err
}

// UpsertCustomer creates a customer account for the email or updates
// the phone on the existing one, reactivating it.  Email is the
// customer's unique key.
func (r *UserRepo) UpsertCustomer(ctx context.Context, email, phone string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username := email + "_customer"
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, phone, role, is_active)
		 VALUES (?, ?, ?, ?, 1)
		 ON DUPLICATE KEY UPDATE phone = VALUES(phone), role = VALUES(role), is_active = 1`,
		username, email, phone, model.RoleCustomer)
	if err != nil {
		return model.User{}, err
	}
	return r.GetCustomerByEmail(ctx, email)
}

// ErrUsernameExists is returned when a staff username is already taken.
var ErrUsernameExists = errors.New("username already exists")

// CreateStaff inserts a chef or admin account with a bcrypt password
// hash.
func (r *UserRepo) CreateStaff(ctx context.Context, username, email, phone, role, passwordHash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, phone, role, password_hash, is_active)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		username, strings.ToLower(strings.TrimSpace(email)), phone, role, passwordHash)
	if isDuplicateKey(err) {
		return 0, ErrUsernameExists
	}
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// GetCustomerByEmail fetches an account with the customer role by
// normalized email.
func (r *UserRepo) GetCustomerByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND role = ? LIMIT 1`,
		email, model.RoleCustomer))
	if err == sql.ErrNoRows {
		return model.User{}, workflow.ErrNotFound
	}
	return u, err
}

// GetStaffByUsername fetches an active staff account (chef or admin)
// by username for password login.
func (r *UserRepo) GetStaffByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND role IN (?, ?) AND is_active = 1 LIMIT 1`,
		username, model.RoleChef, model.RoleAdmin))
	if err == sql.ErrNoRows {
		return model.User{}, workflow.ErrNotFound
	}
	return u, err
}
