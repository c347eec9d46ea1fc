package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-spa/lumina/internal/authz"
)

// Repository abstracts document storage.
type Repository interface {
	List(ctx context.Context, scope authz.ScopeFilter, clientID int64) ([]Document, error)
	Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Document, error)
	Create(ctx context.Context, d Document) (Document, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const documentColumns = `id, client_id, appointment_id, kind, title, body, signed_at, created_at`

// List returns documents visible under the scope, newest first. A zero
// clientID lists across clients for unscoped callers.
func (r *PGRepository) List(ctx context.Context, scope authz.ScopeFilter, clientID int64) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	where := ""
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		where = fmt.Sprintf(" WHERE %s = $%d", scope.Column, len(args))
	}
	if clientID > 0 {
		args = append(args, clientID)
		if where == "" {
			where = fmt.Sprintf(" WHERE client_id = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND client_id = $%d", len(args))
		}
	}
	rows, err := r.pool.Query(ctx, query+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.ClientID, &d.AppointmentID, &d.Kind, &d.Title, &d.Body, &d.SignedAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get fetches a single document within scope.
func (r *PGRepository) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	args := []any{id}
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $2", scope.Column)
	}
	var d Document
	err := r.pool.QueryRow(ctx, query, args...).Scan(&d.ID, &d.ClientID, &d.AppointmentID, &d.Kind, &d.Title, &d.Body, &d.SignedAt, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return d, nil
}

// Create inserts a document record. Used by seed tooling and staff-side
// pipelines, not exposed over HTTP.
func (r *PGRepository) Create(ctx context.Context, d Document) (Document, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO documents (client_id, appointment_id, kind, title, body, signed_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING `+documentColumns,
		d.ClientID, d.AppointmentID, d.Kind, d.Title, d.Body, d.SignedAt,
	).Scan(&d.ID, &d.ClientID, &d.AppointmentID, &d.Kind, &d.Title, &d.Body, &d.SignedAt, &d.CreatedAt)
	if err != nil {
		return Document{}, err
	}
	return d, nil
}
