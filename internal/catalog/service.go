package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Service handles catalog business logic. The treatment and retail catalog
// is reference data maintained by operations tooling; only packages and
// stock move through here.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListServices returns the treatment menu.
func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]TreatmentService, error) {
	return s.repo.ListServices(ctx, activeOnly)
}

// GetService fetches a single treatment.
func (s *Service) GetService(ctx context.Context, id int64) (TreatmentService, error) {
	return s.repo.GetService(ctx, id)
}

// ListProducts returns retail products with stock levels.
func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	return s.repo.ListProducts(ctx, activeOnly)
}

// GetProduct fetches a single product.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// AdjustStock applies a stock delta. Called internally by the payments
// service on retail sales; not exposed as an HTTP mutation.
func (s *Service) AdjustStock(ctx context.Context, productID int64, delta int64) error {
	return s.repo.AdjustStock(ctx, productID, delta)
}

// ListPackages returns treatment packages.
func (s *Service) ListPackages(ctx context.Context) ([]Package, error) {
	return s.repo.ListPackages(ctx)
}

// GetPackage fetches a single package.
func (s *Service) GetPackage(ctx context.Context, id int64) (Package, error) {
	return s.repo.GetPackage(ctx, id)
}

// CreatePackage adds a treatment package after checking the service exists.
func (s *Service) CreatePackage(ctx context.Context, p Package) (Package, error) {
	if err := validatePackage(&p); err != nil {
		return Package{}, err
	}
	if _, err := s.repo.GetService(ctx, p.ServiceID); err != nil {
		return Package{}, err
	}
	return s.repo.CreatePackage(ctx, p)
}

// UpdatePackage modifies a treatment package.
func (s *Service) UpdatePackage(ctx context.Context, p Package) (Package, error) {
	if err := validatePackage(&p); err != nil {
		return Package{}, err
	}
	return s.repo.UpdatePackage(ctx, p)
}

// DeletePackage removes a treatment package.
func (s *Service) DeletePackage(ctx context.Context, id int64) error {
	return s.repo.DeletePackage(ctx, id)
}

func validatePackage(p *Package) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("package name required: %w", httpx.ErrValidation)
	}
	if p.ServiceID == 0 {
		return fmt.Errorf("package service required: %w", httpx.ErrValidation)
	}
	if p.Sessions <= 0 {
		return fmt.Errorf("package sessions must be positive: %w", httpx.ErrValidation)
	}
	if p.PriceCents <= 0 {
		return fmt.Errorf("package price must be positive: %w", httpx.ErrValidation)
	}
	return nil
}
