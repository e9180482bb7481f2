// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/SUMI3747/ProductManagementApi/internal/platform/messaging"
	perrors "github.com/SUMI3747/ProductManagementApi/internal/product/errors"
	"github.com/SUMI3747/ProductManagementApi/internal/product/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// Mutating operations never return an error; every failure is reported through Result.
type ProductService interface {
	// Create adds a new product unless one with the same name exists, in which case the
	// existing product is returned unchanged with StatusAlreadyExists.
	Create(ctx context.Context, product ProductCreateDto) Result

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// DeleteByID removes a product and reports whether anything was deleted.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// Update renames a product and/or adds a signed delta to its stock.
	Update(ctx context.Context, id string, product ProductUpdateDto) Result

	// DecrementStock removes quantity from the stock if enough is available.
	DecrementStock(ctx context.Context, id string, quantity int32) Result

	// IncrementStock adds quantity to the stock.
	IncrementStock(ctx context.Context, id string, quantity int32) Result
}

const (
	opIncrement = "increment"
	opDecrement = "decrement"
	opUpdate    = "update"
)

// Service implements ProductService and provides methods to manage products.
type Service struct {
	store         store.ProductStore
	ids           *IDGenerator
	stockGuard    *StockGuard
	createGate    *StockGuard
	publisher     messaging.Publisher
	logger        *slog.Logger
	adjustDelay   time.Duration
	createRetries int

	productsCounter metric.Int64Counter
	stockCounter    metric.Int64Counter
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the publisher that receives product events.
func WithPublisher(p messaging.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithAdjustDelay pauses every increment and decrement for d before it waits for the stock guard.
func WithAdjustDelay(d time.Duration) Option {
	return func(s *Service) { s.adjustDelay = d }
}

// WithCreateRetries bounds how often a create is retried after an identifier collision.
func WithCreateRetries(n int) Option {
	return func(s *Service) { s.createRetries = n }
}

// WithStockGuard replaces the stock guard, letting several services share one gate.
func WithStockGuard(g *StockGuard) Option {
	return func(s *Service) { s.stockGuard = g }
}

// NewService creates a new instance of ProductService with the provided store.
func NewService(productStore store.ProductStore, opts ...Option) *Service {
	meter := otel.Meter("product-service")
	productsCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	stockCounter, err := meter.Int64Counter("stock_operations", metric.WithDescription("Stock changing operations by operation and outcome"))
	if err != nil {
		panic(fmt.Sprintf("failed to create stock_operations counter: %v", err))
	}

	s := &Service{
		store:           productStore,
		ids:             NewIDGenerator(productStore),
		stockGuard:      NewStockGuard(),
		createGate:      NewStockGuard(),
		publisher:       messaging.NoopPublisher{},
		logger:          slog.Default(),
		createRetries:   3,
		productsCounter: productsCounter,
		stockCounter:    stockCounter,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "service")
	return s
}

// Create creates a new product and returns the outcome.
func (s *Service) Create(ctx context.Context, dto ProductCreateDto) Result {
	if strings.TrimSpace(dto.Name) == "" || dto.Stock <= 0 {
		return Result{Status: StatusInvalidArgument, Message: MsgInvalidBody, Err: perrors.ErrInvalidArgument}
	}

	var res Result
	err := s.createGate.Do(ctx, func(ctx context.Context) error {
		res = s.create(ctx, dto)
		return nil
	})
	if err != nil {
		return errorResult(fmt.Errorf("failed to acquire creation gate: %w", err))
	}

	if res.Status == StatusCreated {
		s.productsCounter.Add(ctx, 1)
		s.publish(ctx, newProductEvent(SubjectProductCreated, res.Product, res.Product.Stock))
	}
	return res
}

// create runs under the creation gate, so the name check and the identifier it picks stay valid
// until the insert.
func (s *Service) create(ctx context.Context, dto ProductCreateDto) Result {
	existing, err := s.store.FindByName(ctx, dto.Name)
	if err == nil {
		s.logger.InfoContext(ctx, "Product already exists", "ID", existing.ID, "Name", existing.Name)
		return newResult(StatusAlreadyExists, MsgAlreadyExists, existing)
	}
	if !errors.Is(err, perrors.ErrProductNotFound) {
		s.logger.ErrorContext(ctx, "Error looking up product by name", "error", err)
		return errorResult(err)
	}

	for attempt := 0; ; attempt++ {
		id, err := s.ids.NextID(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error generating product ID", "error", err)
			return errorResult(err)
		}
		created, err := s.store.Create(ctx, store.Product{ID: id, Name: dto.Name, Stock: dto.Stock})
		if err == nil {
			return newResult(StatusCreated, MsgCreated, created)
		}
		if errors.Is(err, perrors.ErrDuplicateID) && attempt < s.createRetries {
			s.logger.WarnContext(ctx, "Product ID collision, retrying", "ID", id, "attempt", attempt+1)
			continue
		}
		s.logger.ErrorContext(ctx, "Error creating product", "error", err)
		return errorResult(err)
	}
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i := range products {
		productDTOs[i] = *toDto(&products[i])
	}
	return productDTOs, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id string) (bool, error) {
	err := s.store.DeleteByID(ctx, id)
	if errors.Is(err, perrors.ErrProductNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete product by ID %s: %w", id, err)
	}
	s.publish(ctx, newProductEvent(SubjectProductDeleted, &ProductDto{ID: id}, 0))
	return true, nil
}

// Update applies a rename and an additive stock change under the stock guard.
// The whole record is written back, so even a rename must not interleave with stock changes.
func (s *Service) Update(ctx context.Context, id string, dto ProductUpdateDto) Result {
	res := s.guarded(ctx, opUpdate, func(ctx context.Context) Result {
		p, err := s.store.FindByID(ctx, id)
		if err != nil {
			return s.lookupFailure(ctx, id, err)
		}
		next := *p
		if strings.TrimSpace(dto.Name) != "" {
			next.Name = dto.Name
		}
		if dto.StockDelta != 0 {
			stock, res, ok := applyDelta(p, int64(dto.StockDelta))
			if !ok {
				return res
			}
			next.Stock = stock
		}
		return s.save(ctx, next, MsgUpdated)
	})
	if res.Status == StatusUpdated {
		s.publish(ctx, newProductEvent(SubjectProductUpdated, res.Product, dto.StockDelta))
	}
	return res
}

// DecrementStock reduces the stock of a product by quantity.
func (s *Service) DecrementStock(ctx context.Context, id string, quantity int32) Result {
	return s.adjustStock(ctx, opDecrement, id, -int64(quantity), quantity, MsgDecremented)
}

// IncrementStock increases the stock of a product by quantity.
func (s *Service) IncrementStock(ctx context.Context, id string, quantity int32) Result {
	return s.adjustStock(ctx, opIncrement, id, int64(quantity), quantity, MsgIncremented)
}

func (s *Service) adjustStock(ctx context.Context, op, id string, delta int64, quantity int32, successMsg string) Result {
	if quantity <= 0 {
		return Result{Status: StatusInvalidArgument, Message: MsgInvalidQuantity, Err: perrors.ErrInvalidArgument}
	}
	if err := s.pause(ctx); err != nil {
		return errorResult(err)
	}

	s.logger.DebugContext(ctx, "Adjusting stock", "ID", id, "operation", op, "quantity", quantity)
	res := s.guarded(ctx, op, func(ctx context.Context) Result {
		p, err := s.store.FindByID(ctx, id)
		if err != nil {
			return s.lookupFailure(ctx, id, err)
		}
		stock, res, ok := applyDelta(p, delta)
		if !ok {
			return res
		}
		p.Stock = stock
		return s.save(ctx, *p, successMsg)
	})
	if res.Status == StatusUpdated {
		s.publish(ctx, newProductEvent(SubjectProductStockUpdated, res.Product, int32(delta)))
	}
	return res
}

// guarded runs fn under the stock guard and records the outcome.
func (s *Service) guarded(ctx context.Context, op string, fn func(ctx context.Context) Result) Result {
	var res Result
	err := s.stockGuard.Do(ctx, func(ctx context.Context) error {
		res = fn(ctx)
		return nil
	})
	if err != nil {
		res = errorResult(fmt.Errorf("failed to acquire stock guard: %w", err))
	}
	s.stockCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", string(res.Status)),
	))
	return res
}

// applyDelta returns the new stock, or a terminal result when the change is not allowed.
func applyDelta(p *store.Product, delta int64) (int32, Result, bool) {
	next := int64(p.Stock) + delta
	if next < 0 {
		return 0, newResult(StatusInsufficientStock, MsgInsufficientStock, p), false
	}
	if next > math.MaxInt32 {
		return 0, errorResult(perrors.ErrStockOverflow), false
	}
	return int32(next), Result{}, true
}

func (s *Service) lookupFailure(ctx context.Context, id string, err error) Result {
	if errors.Is(err, perrors.ErrProductNotFound) {
		s.logger.WarnContext(ctx, "Product not found", "ID", id)
		return Result{Status: StatusNotFound, Message: MsgNotFound, Err: err}
	}
	s.logger.ErrorContext(ctx, "Error fetching product", "ID", id, "error", err)
	return errorResult(err)
}

func (s *Service) save(ctx context.Context, p store.Product, successMsg string) Result {
	saved, err := s.store.Update(ctx, p)
	if err != nil {
		return s.lookupFailure(ctx, p.ID, err)
	}
	s.logger.InfoContext(ctx, "Product saved", "ID", saved.ID, "Stock", saved.Stock)
	return newResult(StatusUpdated, successMsg, saved)
}

// pause sleeps for the configured adjust delay, returning early if ctx is done.
func (s *Service) pause(ctx context.Context) error {
	if s.adjustDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.adjustDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// publish sends an event. Failures are logged and never change the outcome of the operation.
func (s *Service) publish(ctx context.Context, event ProductEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}
