package identity

import (
	"errors"
	"time"

	"github.com/lumina-spa/lumina/internal/authz"
)

// Account is a stored principal record.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	LocationID   *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public view of a principal returned after login. The role
// is included for client display only; authorization always re-reads it from
// the store.
type Profile struct {
	ID    int64      `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  authz.Role `json:"role"`
}

// Sentinel errors for the identity provider.
var (
	// ErrInvalidCredentials deliberately covers both unknown email and wrong
	// password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrAccountDisabled    = errors.New("identity: account disabled")
	ErrTokenMalformed     = errors.New("identity: token malformed")
	ErrTokenExpired       = errors.New("identity: token expired")
	ErrTokenRevoked       = errors.New("identity: token revoked")
	ErrPrincipalNotFound  = errors.New("identity: principal not found")
)
