package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for the treatment and retail
// catalog. The catalog is reference data: reads everywhere, writes only
// through the package lifecycle and internal stock adjustments.
type Repository interface {
	ListServices(ctx context.Context, activeOnly bool) ([]TreatmentService, error)
	GetService(ctx context.Context, id int64) (TreatmentService, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	AdjustStock(ctx context.Context, productID int64, delta int64) error
	ListPackages(ctx context.Context) ([]Package, error)
	GetPackage(ctx context.Context, id int64) (Package, error)
	CreatePackage(ctx context.Context, p Package) (Package, error)
	UpdatePackage(ctx context.Context, p Package) (Package, error)
	DeletePackage(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) ListServices(ctx context.Context, activeOnly bool) ([]TreatmentService, error) {
	query := `SELECT id, name, description, duration_min, price_cents, is_active, created_at, updated_at FROM services`
	if activeOnly {
		query += ` WHERE is_active`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TreatmentService
	for rows.Next() {
		var s TreatmentService
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMin, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetService(ctx context.Context, id int64) (TreatmentService, error) {
	var s TreatmentService
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, duration_min, price_cents, is_active, created_at, updated_at FROM services WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Description, &s.DurationMin, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TreatmentService{}, ErrServiceNotFound
		}
		return TreatmentService{}, err
	}
	return s, nil
}

func (r *PGRepository) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT id, sku, name, price_cents, stock, is_active, created_at, updated_at FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, sku, name, price_cents, stock, is_active, created_at, updated_at FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// AdjustStock applies a stock delta, refusing to go negative.
func (r *PGRepository) AdjustStock(ctx context.Context, productID int64, delta int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1 AND stock + $2 >= 0`,
		productID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStockDepleted
	}
	return nil
}

func (r *PGRepository) ListPackages(ctx context.Context) ([]Package, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, service_id, sessions, price_cents, is_active, created_at, updated_at FROM packages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Package
	for rows.Next() {
		var p Package
		if err := rows.Scan(&p.ID, &p.Name, &p.ServiceID, &p.Sessions, &p.PriceCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetPackage(ctx context.Context, id int64) (Package, error) {
	var p Package
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, service_id, sessions, price_cents, is_active, created_at, updated_at FROM packages WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.ServiceID, &p.Sessions, &p.PriceCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Package{}, ErrPackageNotFound
		}
		return Package{}, err
	}
	return p, nil
}

func (r *PGRepository) CreatePackage(ctx context.Context, p Package) (Package, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO packages (name, service_id, sessions, price_cents, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING id, name, service_id, sessions, price_cents, is_active, created_at, updated_at`,
		p.Name, p.ServiceID, p.Sessions, p.PriceCents, p.IsActive,
	).Scan(&p.ID, &p.Name, &p.ServiceID, &p.Sessions, &p.PriceCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PGRepository) UpdatePackage(ctx context.Context, p Package) (Package, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE packages SET name = $2, service_id = $3, sessions = $4, price_cents = $5, is_active = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, name, service_id, sessions, price_cents, is_active, created_at, updated_at`,
		p.ID, p.Name, p.ServiceID, p.Sessions, p.PriceCents, p.IsActive,
	).Scan(&p.ID, &p.Name, &p.ServiceID, &p.Sessions, &p.PriceCents, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Package{}, ErrPackageNotFound
		}
		return Package{}, err
	}
	return p, nil
}

func (r *PGRepository) DeletePackage(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPackageNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
