package service

import (
	"context"
	"fmt"
	"strconv"

	perrors "github.com/SUMI3747/ProductManagementApi/internal/product/errors"
	"github.com/SUMI3747/ProductManagementApi/internal/product/store"
)

const (
	firstProductID = "000001"
	maxProductID   = 999999
)

// IDGenerator derives sequential six digit identifiers from the store's current maximum.
type IDGenerator struct {
	store store.ProductStore
}

func NewIDGenerator(s store.ProductStore) *IDGenerator {
	return &IDGenerator{store: s}
}

// NextID returns the identifier following the largest one in the store.
// The caller must hold the creation gate so that two callers never see the same maximum.
func (g *IDGenerator) NextID(ctx context.Context) (string, error) {
	current, err := g.store.MaxID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read max product ID: %w", err)
	}
	if current == "" {
		return firstProductID, nil
	}
	n, err := strconv.Atoi(current)
	if err != nil || n < 0 {
		return "", fmt.Errorf("failed to parse product ID %q: %w", current, perrors.ErrMalformedID)
	}
	if n >= maxProductID {
		return "", perrors.ErrIDSpaceExhausted
	}
	return fmt.Sprintf("%06d", n+1), nil
}
