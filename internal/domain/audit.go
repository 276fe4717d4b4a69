package domain

import "time"

type AuditEntry struct {
	Dimension  Dimension
	OldValue   float64
	NewValue   float64
	Hash       string
	Authorized bool
	Timestamp  time.Time
}

type UnauthorizedAttempt struct {
	Dimension Dimension
	Value     float64
	Reason    string
	Timestamp time.Time
}

// AuditTrail is verified server-side; ChainValid only reports the verdict.
type AuditTrail struct {
	Changes              []AuditEntry
	ChainValid           bool
	UnauthorizedAttempts []UnauthorizedAttempt
}
