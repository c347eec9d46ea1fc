package clients

import (
	"fmt"
	"time"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Client is a spa client record.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Domain errors wrap the platform sentinels so handlers map them uniformly.
var (
	ErrNotFound       = fmt.Errorf("client: %w", httpx.ErrNotFound)
	ErrDuplicateEmail = fmt.Errorf("client email: %w", httpx.ErrDuplicate)
)
