package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// StockAdjuster decrements product stock when a retail sale is recorded.
// Implemented by the catalog service.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID int64, delta int64) error
}

// Service handles point-of-sale payment business logic.
type Service struct {
	repo  Repository
	stock StockAdjuster
}

// NewService builds a Service instance. The stock adjuster may be nil when
// retail sales are not in play.
func NewService(repo Repository, stock StockAdjuster) *Service {
	return &Service{repo: repo, stock: stock}
}

// List returns payments visible under the caller's scope.
func (s *Service) List(ctx context.Context, scope authz.ScopeFilter, filters ListFilters) ([]Payment, error) {
	return s.repo.List(ctx, scope, filters)
}

// Get fetches a single payment within scope.
func (s *Service) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Payment, error) {
	return s.repo.Get(ctx, scope, id)
}

// Receipt returns the formatted receipt for a payment within scope.
func (s *Service) Receipt(ctx context.Context, scope authz.ScopeFilter, id int64) (Receipt, error) {
	p, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return Receipt{}, err
	}
	return ReceiptFor(p), nil
}

// Record stores a payment taken at the desk. A product sale decrements
// stock; the decrement is advisory and never blocks the payment.
func (s *Service) Record(ctx context.Context, recordedBy int64, p Payment) (Payment, error) {
	if p.ClientID == 0 {
		return Payment{}, fmt.Errorf("client required: %w", httpx.ErrValidation)
	}
	if p.AmountCents <= 0 {
		return Payment{}, fmt.Errorf("amount must be positive: %w", httpx.ErrValidation)
	}
	if !p.Method.Valid() {
		return Payment{}, fmt.Errorf("unknown payment method %q: %w", p.Method, httpx.ErrValidation)
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.RecordedBy = recordedBy
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Payment{}, err
	}
	if created.ProductID != nil && s.stock != nil {
		_ = s.stock.AdjustStock(ctx, *created.ProductID, -1)
	}
	return created, nil
}
