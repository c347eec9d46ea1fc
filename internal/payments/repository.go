package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-spa/lumina/internal/authz"
)

// ListFilters narrows payment listings beyond the authorization scope.
type ListFilters struct {
	From time.Time
	To   time.Time
}

// Repository defines persistence operations for payments.
type Repository interface {
	List(ctx context.Context, scope authz.ScopeFilter, filters ListFilters) ([]Payment, error)
	Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Payment, error)
	Create(ctx context.Context, p Payment) (Payment, error)
	SumBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const paymentColumns = `id, client_id, appointment_id, product_id, amount_cents, currency, method, reference, recorded_by, created_at`

func (r *PGRepository) List(ctx context.Context, scope authz.ScopeFilter, filters ListFilters) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	var args []any
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $%d", scope.Column, len(args))
	}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.ClientID, &p.AppointmentID, &p.ProductID, &p.AmountCents, &p.Currency, &p.Method, &p.Reference, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	args := []any{id}
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $2", scope.Column)
	}
	var p Payment
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.ClientID, &p.AppointmentID, &p.ProductID, &p.AmountCents, &p.Currency, &p.Method, &p.Reference, &p.RecordedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *PGRepository) Create(ctx context.Context, p Payment) (Payment, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (client_id, appointment_id, product_id, amount_cents, currency, method, reference, recorded_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING `+paymentColumns,
		p.ClientID, p.AppointmentID, p.ProductID, p.AmountCents, p.Currency, p.Method, p.Reference, p.RecordedBy,
	).Scan(&p.ID, &p.ClientID, &p.AppointmentID, &p.ProductID, &p.AmountCents, &p.Currency, &p.Method, &p.Reference, &p.RecordedBy, &p.CreatedAt)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

// SumBetween totals payment amounts for dashboard reporting.
func (r *PGRepository) SumBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE created_at >= $1 AND created_at < $2`,
		from, to).Scan(&total)
	return total, err
}

var _ Repository = (*PGRepository)(nil)
