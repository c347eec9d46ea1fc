package appointments

import (
	"fmt"
	"time"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions lists the allowed status moves.
var transitions = map[Status][]Status{
	StatusBooked:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the status move is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a known state.
func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a scheduled visit binding a client, a provider, and a
// catalog service.
type Appointment struct {
	ID         int64     `json:"id"`
	ClientID   int64     `json:"client_id"`
	ProviderID int64     `json:"provider_id"`
	ServiceID  int64     `json:"service_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     Status    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrNotFound          = fmt.Errorf("appointment: %w", httpx.ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("appointment status transition: %w", httpx.ErrConflict)
	ErrSlotTaken         = fmt.Errorf("provider slot already booked: %w", httpx.ErrConflict)
)
