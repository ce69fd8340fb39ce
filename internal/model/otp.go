package model

import "time"

// OneTimeCode mirrors the `otp_codes` table.  A code is valid for a
// short window after issue; issuing a new code for the same email
// supersedes every earlier one.
type OneTimeCode struct {
	ID        uint64
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
