package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/platform/httpx"
)

// Service handles client record business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns clients visible under the caller's scope.
func (s *Service) List(ctx context.Context, scope authz.ScopeFilter, search string) ([]Client, error) {
	return s.repo.List(ctx, scope, strings.TrimSpace(search))
}

// Get fetches a single client within scope.
func (s *Service) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Client, error) {
	return s.repo.Get(ctx, scope, id)
}

// Create registers a new client record.
func (s *Service) Create(ctx context.Context, c Client) (Client, error) {
	if err := normalize(&c); err != nil {
		return Client{}, err
	}
	return s.repo.Create(ctx, c)
}

// Update modifies an existing client record.
func (s *Service) Update(ctx context.Context, c Client) (Client, error) {
	if err := normalize(&c); err != nil {
		return Client{}, err
	}
	return s.repo.Update(ctx, c)
}

// Delete removes a client record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func normalize(c *Client) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		return fmt.Errorf("name required: %w", httpx.ErrValidation)
	}
	if c.Email == "" {
		return fmt.Errorf("email required: %w", httpx.ErrValidation)
	}
	return nil
}
