package domain

import (
	"errors"
	"time"
)

// User represents an authenticated actor.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role represents an actor's access level.
type Role string

const (
	// RoleAdmin administers accounts, credits and scheduled debits.
	RoleAdmin Role = "admin"

	// RoleClient operates accounts it owns or holds a mandate over.
	RoleClient Role = "client"
)

var validRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleClient: true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsAdmin reports whether the role bypasses ownership checks.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Authentication and authorization errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("actor may not operate this account")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
