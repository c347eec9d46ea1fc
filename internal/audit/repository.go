package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for the access audit trail.
type Repository interface {
	Insert(ctx context.Context, d AccessDenial) error
	Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]AccessDenial, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert appends a denial record.
func (r *PGRepository) Insert(ctx context.Context, d AccessDenial) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_denials (principal_id, role, method, path, remote_addr, reason, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.PrincipalID, d.Role, d.Method, d.Path, d.RemoteAddr, d.Reason, d.OccurredAt)
	return err
}

// Window returns one page of denials, newest first.
func (r *PGRepository) Window(ctx context.Context, filters TimelineFilters, offset, limit int) ([]AccessDenial, error) {
	query := `SELECT id, principal_id, role, method, path, remote_addr, reason, occurred_at FROM access_denials WHERE 1=1`
	var args []any
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		query += fmt.Sprintf(" AND occurred_at < $%d", len(args))
	}
	if filters.Reason != "" {
		args = append(args, filters.Reason)
		query += fmt.Sprintf(" AND reason = $%d", len(args))
	}
	if filters.Role != "" {
		args = append(args, filters.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccessDenial
	for rows.Next() {
		var d AccessDenial
		if err := rows.Scan(&d.ID, &d.PrincipalID, &d.Role, &d.Method, &d.Path, &d.RemoteAddr, &d.Reason, &d.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
