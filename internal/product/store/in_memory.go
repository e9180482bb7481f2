package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/SUMI3747/ProductManagementApi/internal/product/errors"
)

// inMemory implements ProductStore using an in-memory map.
type inMemory struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[string]Product),
	}
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &t, nil
}

// FindByName retrieves a product by its exact name.
func (s *inMemory) FindByName(_ context.Context, name string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.products {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, errors.ErrProductNotFound
}

// FindAll retrieves all products ordered by ID.
func (s *inMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, t := range s.products {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// MaxID returns the largest identifier by numeric value.
func (s *inMemory) MaxID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxID, maxNum := "", int64(-1)
	for id := range s.products {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return "", fmt.Errorf("failed to parse product ID %q: %w", id, errors.ErrMalformedID)
		}
		if n > maxNum {
			maxID, maxNum = id, n
		}
	}
	return maxID, nil
}

// Create stores a new product and returns it.
func (s *inMemory) Create(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return nil, errors.ErrDuplicateID
	}
	s.products[product.ID] = product
	return &product, nil
}

// Update replaces an existing product.
func (s *inMemory) Update(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; !exists {
		return nil, errors.ErrProductNotFound
	}
	s.products[product.ID] = product
	return &product, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return errors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *inMemory) Ping(_ context.Context) error {
	return nil
}
