package documents

import (
	"fmt"
	"time"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Kind classifies a compliance document.
type Kind string

const (
	KindConsent   Kind = "consent"
	KindIntake    Kind = "intake"
	KindAftercare Kind = "aftercare"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	switch k {
	case KindConsent, KindIntake, KindAftercare:
		return true
	}
	return false
}

// Document is a compliance record attached to a client, optionally tied to a
// specific appointment. Documents are written by staff tooling and the seed
// pipeline; the HTTP surface is read-only.
type Document struct {
	ID            int64      `json:"id"`
	ClientID      int64      `json:"client_id"`
	AppointmentID *int64     `json:"appointment_id,omitempty"`
	Kind          Kind       `json:"kind"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Signed reports whether the document carries a signature timestamp.
func (d Document) Signed() bool {
	return d.SignedAt != nil && !d.SignedAt.IsZero()
}

var ErrNotFound = fmt.Errorf("document: %w", httpx.ErrNotFound)
