// Package dashboard serves the role-gated landing summary.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-spa/lumina/internal/authz"
	"github.com/lumina-spa/lumina/internal/payments"
)

// Summary is the landing-page counts for the caller's role. Scoped roles see
// their own numbers only; revenue is omitted for them.
type Summary struct {
	UpcomingAppointments int64  `json:"upcoming_appointments"`
	ActiveClients        int64  `json:"active_clients"`
	RevenueTodayCents    *int64 `json:"revenue_today_cents,omitempty"`
	RevenueToday         string `json:"revenue_today,omitempty"`
}

// Repository provides the aggregate queries behind the summary.
type Repository interface {
	CountUpcomingAppointments(ctx context.Context, scope authz.ScopeFilter, from time.Time) (int64, error)
	CountClients(ctx context.Context) (int64, error)
	SumPaymentsBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// Service computes the dashboard summary, fanning the aggregate queries out
// in parallel.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summarize gathers the summary for the caller. Revenue is only computed
// for unscoped roles; a scoped principal never sees till totals.
func (s *Service) Summarize(ctx context.Context, scope authz.ScopeFilter) (Summary, error) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var summary Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountUpcomingAppointments(gctx, scope, now)
		summary.UpcomingAppointments = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountClients(gctx)
		summary.ActiveClients = n
		return err
	})
	if !scope.Restricted() {
		g.Go(func() error {
			total, err := s.repo.SumPaymentsBetween(gctx, dayStart, dayStart.Add(24*time.Hour))
			if err != nil {
				return err
			}
			summary.RevenueTodayCents = &total
			summary.RevenueToday = payments.FormatAmount(total, "USD")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CountUpcomingAppointments(ctx context.Context, scope authz.ScopeFilter, from time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE status IN ('booked', 'confirmed') AND starts_at >= $1`
	args := []any{from}
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $2", scope.Column)
	}
	var n int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *PGRepository) CountClients(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

func (r *PGRepository) SumPaymentsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE created_at >= $1 AND created_at < $2`,
		from, to).Scan(&total)
	return total, err
}

var _ Repository = (*PGRepository)(nil)
