package model

import "time"

// Roles carried by access tokens.  Customers authenticate via email
// one-time codes; chefs and admins are staff accounts with passwords.
const (
	RoleGuest    = "guest"
	RoleCustomer = "customer"
	RoleChef     = "chef"
	RoleAdmin    = "admin"
)

// StaffRole reports whether role belongs to restaurant staff.
func StaffRole(role string) bool {
	return role == RoleChef || role == RoleAdmin
}

// User mirrors the `users` table.  PasswordHash is set only for staff
// accounts; customers have no password and log in via OTP.
type User struct {
	ID           uint64
	Username     string
	Email        string
	Phone        string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
