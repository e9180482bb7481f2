// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// Product represents a product entity in the store.
type Product struct {
	ID    string `db:"product_id"`
	Name  string `db:"product_name"`
	Stock int32  `db:"stock_available"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindByName retrieves the product whose name matches exactly.
	// Returns ErrProductNotFound if no product has that name.
	FindByName(ctx context.Context, name string) (*Product, error)

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// MaxID returns the numerically largest product identifier, or "" when the store is empty.
	MaxID(ctx context.Context) (string, error)

	// Create adds a new product to the system.
	// Returns ErrDuplicateID if the identifier is already in use.
	Create(ctx context.Context, product Product) (*Product, error)

	// Update replaces the name and stock of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product Product) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error

	// Ping reports whether the underlying storage is reachable.
	Ping(ctx context.Context) error
}
