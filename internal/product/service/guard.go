package service

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// StockGuard is a single-permit gate. The service shares one guard across all products
// for stock mutations and keeps a second one for creation.
// Waiters are served in arrival order.
type StockGuard struct {
	sem *semaphore.Weighted
}

func NewStockGuard() *StockGuard {
	return &StockGuard{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the permit is held or ctx is done.
// A caller that gives up never holds the permit.
func (g *StockGuard) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release returns the permit.
func (g *StockGuard) Release() {
	g.sem.Release(1)
}

// Do runs fn while holding the permit. The permit is released on every exit path, panics included.
// fn receives a context that is not cancelled when ctx is, so a started section always completes.
func (g *StockGuard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn(context.WithoutCancel(ctx))
}
