package domain

import "time"

// MandateStatus is the state of a delegated mandate.
type MandateStatus string

const (
	MandateStatusActive  MandateStatus = "active"
	MandateStatusRevoked MandateStatus = "revoked"
)

// Mandate grants one user a time-bounded right to operate another user's
// account. An open-ended mandate has a nil ValidUntil.
type Mandate struct {
	ID         string
	AccountID  string
	GranteeID  string
	Status     MandateStatus
	ValidUntil *time.Time
	CreatedAt  time.Time
}

// ValidAt reports whether the mandate authorizes operations at the given
// time.
func (m *Mandate) ValidAt(at time.Time) bool {
	if m.Status != MandateStatusActive {
		return false
	}
	if m.ValidUntil == nil {
		return true
	}
	return !m.ValidUntil.Before(at)
}
