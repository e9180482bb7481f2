package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/SUMI3747/ProductManagementApi/internal/product/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

const (
	findByIDQuery = `SELECT product_id, product_name, stock_available
FROM products
WHERE product_id = $1`

	findByNameQuery = `SELECT product_id, product_name, stock_available
FROM products
WHERE product_name = $1
ORDER BY product_id
LIMIT 1`

	findAllQuery = `SELECT product_id, product_name, stock_available
FROM products
ORDER BY product_id`

	// Identifiers are digit strings, so ordering by length first gives numeric order.
	maxIDQuery = `SELECT product_id
FROM products
ORDER BY length(product_id) DESC, product_id DESC
LIMIT 1`

	createQuery = `INSERT INTO products (product_id, product_name, stock_available)
VALUES ($1, $2, $3)
RETURNING product_id, product_name, stock_available`

	updateQuery = `UPDATE products
SET product_name = $2, stock_available = $3
WHERE product_id = $1
RETURNING product_id, product_name, stock_available`

	deleteQuery = `DELETE FROM products WHERE product_id = $1`
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id string) (*Product, error) {
	product, err := p.queryOne(ctx, findByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindByName retrieves a product by its exact name.
// Returns ErrProductNotFound if no product has that name.
func (p *PgStore) FindByName(ctx context.Context, name string) (*Product, error) {
	product, err := p.queryOne(ctx, findByNameQuery, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products ordered by identifier.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, findAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// MaxID returns the numerically largest identifier, or "" when the table is empty.
func (p *PgStore) MaxID(ctx context.Context) (string, error) {
	var id string
	err := p.db.QueryRow(ctx, maxIDQuery).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find max product ID: %w", err)
	}
	return id, nil
}

// Create adds a new product to the system.
// Returns ErrDuplicateID if the identifier is already taken.
func (p *PgStore) Create(ctx context.Context, product Product) (*Product, error) {
	created, err := p.queryOne(ctx, createQuery, product.ID, product.Name, product.Stock)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, perrors.ErrDuplicateID
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// Update replaces the name and stock of an existing product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, product Product) (*Product, error) {
	updated, err := p.queryOne(ctx, updateQuery, product.ID, product.Name, product.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Ping checks the database connection.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *PgStore) queryOne(ctx context.Context, sql string, args ...any) (*Product, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	product, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, err
	}
	return &product, nil
}
