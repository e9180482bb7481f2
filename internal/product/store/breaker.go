package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SUMI3747/ProductManagementApi/internal/config"
	perrors "github.com/SUMI3747/ProductManagementApi/internal/product/errors"
	"github.com/sony/gobreaker/v2"
)

// BreakerStore decorates a ProductStore with a circuit breaker so that a failing database
// is not hammered by every request. Domain outcomes such as "not found" do not count as failures.
type BreakerStore struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next with a circuit breaker configured from cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerStore {
	st := gobreaker.Settings{
		Name:        "product-store-cb",
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isStoreSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

// isStoreSuccess reports whether err should be counted as a healthy call.
func isStoreSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, perrors.ErrProductNotFound) ||
		errors.Is(err, perrors.ErrDuplicateID) ||
		errors.Is(err, context.Canceled)
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var result T
	_, err := cb.Execute(func() (any, error) {
		var err error
		result, err = fn()
		return nil, err
	})
	return result, err
}

func (b *BreakerStore) FindByID(ctx context.Context, id string) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.FindByID(ctx, id) })
}

func (b *BreakerStore) FindByName(ctx context.Context, name string) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.FindByName(ctx, name) })
}

func (b *BreakerStore) FindAll(ctx context.Context) ([]Product, error) {
	return execute(b.cb, func() ([]Product, error) { return b.next.FindAll(ctx) })
}

func (b *BreakerStore) MaxID(ctx context.Context) (string, error) {
	return execute(b.cb, func() (string, error) { return b.next.MaxID(ctx) })
}

func (b *BreakerStore) Create(ctx context.Context, product Product) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.Create(ctx, product) })
}

func (b *BreakerStore) Update(ctx context.Context, product Product) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.Update(ctx, product) })
}

func (b *BreakerStore) DeleteByID(ctx context.Context, id string) error {
	_, err := execute(b.cb, func() (struct{}, error) { return struct{}{}, b.next.DeleteByID(ctx, id) })
	return err
}

// Ping bypasses the breaker so readiness probes always see the real database state.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}
