package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-spa/lumina/internal/authz"
)

// ListFilters narrows appointment listings beyond the authorization scope.
type ListFilters struct {
	From   time.Time
	To     time.Time
	Status Status
}

// Repository defines persistence operations for appointments. The scope
// filter from the guard must be applied to every read and own-scoped write.
type Repository interface {
	List(ctx context.Context, scope authz.ScopeFilter, filters ListFilters) ([]Appointment, error)
	Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Appointment, error)
	Create(ctx context.Context, a Appointment) (Appointment, error)
	UpdateStatus(ctx context.Context, scope authz.ScopeFilter, id int64, status Status) (Appointment, error)
	Delete(ctx context.Context, id int64) error
	CountOverlapping(ctx context.Context, providerID int64, startsAt, endsAt time.Time) (int64, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const apptColumns = `id, client_id, provider_id, service_id, starts_at, ends_at, status, notes, created_at, updated_at`

func (r *PGRepository) List(ctx context.Context, scope authz.ScopeFilter, filters ListFilters) ([]Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE 1=1`
	var args []any
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $%d", scope.Column, len(args))
	}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		query += fmt.Sprintf(" AND starts_at >= $%d", len(args))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		query += fmt.Sprintf(" AND starts_at < $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY starts_at`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *PGRepository) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE id = $1`
	args := []any{id}
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $2", scope.Column)
	}
	var a Appointment
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.ClientID, &a.ProviderID, &a.ServiceID, &a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	return a, nil
}

func (r *PGRepository) Create(ctx context.Context, a Appointment) (Appointment, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO appointments (client_id, provider_id, service_id, starts_at, ends_at, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING `+apptColumns,
		a.ClientID, a.ProviderID, a.ServiceID, a.StartsAt, a.EndsAt, a.Status, a.Notes,
	).Scan(&a.ID, &a.ClientID, &a.ProviderID, &a.ServiceID, &a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// UpdateStatus applies a status change; an own-scoped principal can only
// touch their own rows, so a foreign id surfaces as not found.
func (r *PGRepository) UpdateStatus(ctx context.Context, scope authz.ScopeFilter, id int64, status Status) (Appointment, error) {
	query := `UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`
	args := []any{id, status}
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $3", scope.Column)
	}
	var a Appointment
	err := r.pool.QueryRow(ctx, query+` RETURNING `+apptColumns, args...).Scan(
		&a.ID, &a.ClientID, &a.ProviderID, &a.ServiceID, &a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	return a, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) CountOverlapping(ctx context.Context, providerID int64, startsAt, endsAt time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE provider_id = $1 AND status IN ('booked', 'confirmed') AND starts_at < $3 AND ends_at > $2`,
		providerID, startsAt, endsAt).Scan(&count)
	return count, err
}

// ListStartingBetween returns appointments for the reminder sweep.
func (r *PGRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE status IN ('booked', 'confirmed') AND starts_at >= $1 AND starts_at < $2 ORDER BY starts_at`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.ClientID, &a.ProviderID, &a.ServiceID, &a.StartsAt, &a.EndsAt, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
