package payments

import (
	"fmt"
	"time"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Method is the tender type for a point-of-sale payment.
type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodPackage  Method = "package"
)

// Valid reports whether the method is known.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodPackage:
		return true
	}
	return false
}

// Payment is a point-of-sale transaction. Amounts are stored in minor units
// (cents) to avoid float drift.
type Payment struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	AppointmentID *int64    `json:"appointment_id,omitempty"`
	ProductID     *int64    `json:"product_id,omitempty"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Method        Method    `json:"method"`
	Reference     string    `json:"reference,omitempty"`
	RecordedBy    int64     `json:"recorded_by"`
	CreatedAt     time.Time `json:"created_at"`
}

var ErrNotFound = fmt.Errorf("payment: %w", httpx.ErrNotFound)
