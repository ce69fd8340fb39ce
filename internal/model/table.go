package model

import "time"

// Table represents a physical restaurant table with its QR scan token
// and session-lock state.  A table has at most one live customer
// session at a time: SessionID is non-nil exactly while a customer
// flow holds the table.  This struct corresponds to a row in the
// `tables` table.
//
// Fields:
//  TableNo    – human-facing number, format "T<digits>", unique.
//  AccessHash – secret token embedded in the table's QR code.
//  Active     – inactive tables cannot be scanned or locked.
//  SessionID  – current session token (nil when the table is free).
//  LockedAt   – when the current session was acquired (nil when free).
//  CreatedBy  – staff user who generated the table, if recorded.
//  CreatedAt  – creation timestamp.
type Table struct {
	TableNo    string     // tables.table_no
	AccessHash string     // tables.access_hash
	Active     bool       // tables.active
	SessionID  *string    // tables.session_id (nullable)
	LockedAt   *time.Time // tables.locked_at (nullable)
	CreatedBy  *uint64    // tables.created_by (nullable)
	CreatedAt  time.Time  // tables.created_at
}

// Locked reports whether the table currently holds a session token.
func (t Table) Locked() bool { return t.SessionID != nil }

// SessionExpired reports whether the table's session, if any, is older
// than the given time-to-live at the supplied instant.
func (t Table) SessionExpired(ttl time.Duration, now time.Time) bool {
	if t.SessionID == nil || t.LockedAt == nil {
		return false
	}
	return now.Sub(*t.LockedAt) > ttl
}
