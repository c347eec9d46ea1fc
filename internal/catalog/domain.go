package catalog

import (
	"fmt"
	"time"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// TreatmentService is a bookable treatment on the menu.
type TreatmentService struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DurationMin int       `json:"duration_min"`
	PriceCents  int64     `json:"price_cents"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a retail item sold at the desk, with tracked stock.
type Product struct {
	ID         int64     `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Stock      int64     `json:"stock"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Package bundles a number of sessions of one service at a bundled price.
type Package struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	ServiceID  int64     `json:"service_id"`
	Sessions   int       `json:"sessions"`
	PriceCents int64     `json:"price_cents"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrServiceNotFound = fmt.Errorf("service: %w", httpx.ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product: %w", httpx.ErrNotFound)
	ErrPackageNotFound = fmt.Errorf("package: %w", httpx.ErrNotFound)
	ErrStockDepleted   = fmt.Errorf("product stock: %w", httpx.ErrConflict)
)
