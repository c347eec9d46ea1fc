package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-spa/lumina/internal/authz"
)

// Repository defines persistence operations for client records. Every read
// accepts the scope filter computed by the guard and must apply it.
type Repository interface {
	List(ctx context.Context, scope authz.ScopeFilter, search string) ([]Client, error)
	Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Client, error)
	Create(ctx context.Context, c Client) (Client, error)
	Update(ctx context.Context, c Client) (Client, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const clientColumns = `id, name, email, phone, notes, created_at, updated_at`

// List returns clients visible under the scope filter, newest first.
func (r *PGRepository) List(ctx context.Context, scope authz.ScopeFilter, search string) ([]Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := []any{}
	where := ""
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		where = fmt.Sprintf(" WHERE %s = $%d", scope.Column, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		if where == "" {
			where = fmt.Sprintf(" WHERE name ILIKE $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
		}
	}
	rows, err := r.pool.Query(ctx, query+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get fetches a single client; a scoped principal only sees their own row.
func (r *PGRepository) Get(ctx context.Context, scope authz.ScopeFilter, id int64) (Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	args := []any{id}
	if scope.Restricted() {
		args = append(args, scope.PrincipalID)
		query += fmt.Sprintf(" AND %s = $2", scope.Column)
	}
	var c Client
	err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}

// Create inserts a client record.
func (r *PGRepository) Create(ctx context.Context, c Client) (Client, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, email, phone, notes, created_at, updated_at) VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING `+clientColumns,
		c.Name, c.Email, c.Phone, c.Notes,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Client{}, ErrDuplicateEmail
		}
		return Client{}, err
	}
	return c, nil
}

// Update modifies a client record.
func (r *PGRepository) Update(ctx context.Context, c Client) (Client, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE clients SET name = $2, email = $3, phone = $4, notes = $5, updated_at = NOW() WHERE id = $1 RETURNING `+clientColumns,
		c.ID, c.Name, c.Email, c.Phone, c.Notes,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return Client{}, ErrDuplicateEmail
		}
		return Client{}, err
	}
	return c, nil
}

// Delete removes a client record.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
