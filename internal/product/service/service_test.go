package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/SUMI3747/ProductManagementApi/internal/platform/messaging"
	perrors "github.com/SUMI3747/ProductManagementApi/internal/product/errors"
	"github.com/SUMI3747/ProductManagementApi/internal/product/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unavailable")

// stubStore wraps a real store and lets tests override single methods.
type stubStore struct {
	store.ProductStore
	findByIDFn   func(ctx context.Context, id string) (*store.Product, error)
	findByNameFn func(ctx context.Context, name string) (*store.Product, error)
	findAllFn    func(ctx context.Context) ([]store.Product, error)
	maxIDFn      func(ctx context.Context) (string, error)
	createFn     func(ctx context.Context, p store.Product) (*store.Product, error)
	updateFn     func(ctx context.Context, p store.Product) (*store.Product, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (s *stubStore) FindByID(ctx context.Context, id string) (*store.Product, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return s.ProductStore.FindByID(ctx, id)
}

func (s *stubStore) FindByName(ctx context.Context, name string) (*store.Product, error) {
	if s.findByNameFn != nil {
		return s.findByNameFn(ctx, name)
	}
	return s.ProductStore.FindByName(ctx, name)
}

func (s *stubStore) FindAll(ctx context.Context) ([]store.Product, error) {
	if s.findAllFn != nil {
		return s.findAllFn(ctx)
	}
	return s.ProductStore.FindAll(ctx)
}

func (s *stubStore) MaxID(ctx context.Context) (string, error) {
	if s.maxIDFn != nil {
		return s.maxIDFn(ctx)
	}
	return s.ProductStore.MaxID(ctx)
}

func (s *stubStore) Create(ctx context.Context, p store.Product) (*store.Product, error) {
	if s.createFn != nil {
		return s.createFn(ctx, p)
	}
	return s.ProductStore.Create(ctx, p)
}

func (s *stubStore) Update(ctx context.Context, p store.Product) (*store.Product, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, p)
	}
	return s.ProductStore.Update(ctx, p)
}

func (s *stubStore) DeleteByID(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return s.ProductStore.DeleteByID(ctx, id)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Subject()
	}
	return out
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestService(t *testing.T, s store.ProductStore, opts ...Option) *Service {
	t.Helper()
	return NewService(s, append([]Option{WithLogger(quietLogger)}, opts...)...)
}

func seed(t *testing.T, s store.ProductStore, products ...store.Product) {
	t.Helper()
	for _, p := range products {
		_, err := s.Create(context.Background(), p)
		require.NoError(t, err)
	}
}

func Test_ProductService_Create(t *testing.T) {
	testCases := []struct {
		name          string
		seed          []store.Product
		stub          func(s *stubStore)
		input         ProductCreateDto
		expectStatus  Status
		expectMessage string
		expected      *ProductDto
	}{
		{
			name:          "Success - first product",
			input:         ProductCreateDto{Name: "Widget", Stock: 10},
			expectStatus:  StatusCreated,
			expectMessage: MsgCreated,
			expected:      &ProductDto{ID: "000001", Name: "Widget", Stock: 10},
		},
		{
			name:          "Success - next sequential id",
			seed:          []store.Product{{ID: "000009", Name: "Gadget", Stock: 1}},
			input:         ProductCreateDto{Name: "Widget", Stock: 3},
			expectStatus:  StatusCreated,
			expectMessage: MsgCreated,
			expected:      &ProductDto{ID: "000010", Name: "Widget", Stock: 3},
		},
		{
			name:          "Already exists - stock untouched",
			seed:          []store.Product{{ID: "000001", Name: "Widget", Stock: 10}},
			input:         ProductCreateDto{Name: "Widget", Stock: 5},
			expectStatus:  StatusAlreadyExists,
			expectMessage: MsgAlreadyExists,
			expected:      &ProductDto{ID: "000001", Name: "Widget", Stock: 10},
		},
		{
			name:          "Invalid - blank name",
			input:         ProductCreateDto{Name: "   ", Stock: 5},
			expectStatus:  StatusInvalidArgument,
			expectMessage: MsgInvalidBody,
		},
		{
			name:          "Invalid - zero stock",
			input:         ProductCreateDto{Name: "Widget", Stock: 0},
			expectStatus:  StatusInvalidArgument,
			expectMessage: MsgInvalidBody,
		},
		{
			name:          "Error - id space exhausted",
			seed:          []store.Product{{ID: "999999", Name: "Last", Stock: 1}},
			input:         ProductCreateDto{Name: "Widget", Stock: 1},
			expectStatus:  StatusError,
			expectMessage: "An error occurred: product id space exhausted",
		},
		{
			name: "Error - name lookup fails",
			stub: func(s *stubStore) {
				s.findByNameFn = func(context.Context, string) (*store.Product, error) { return nil, errStore }
			},
			input:         ProductCreateDto{Name: "Widget", Stock: 1},
			expectStatus:  StatusError,
			expectMessage: "An error occurred: store unavailable",
		},
		{
			name: "Error - insert fails",
			stub: func(s *stubStore) {
				s.createFn = func(context.Context, store.Product) (*store.Product, error) { return nil, errStore }
			},
			input:         ProductCreateDto{Name: "Widget", Stock: 1},
			expectStatus:  StatusError,
			expectMessage: "An error occurred: store unavailable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mem := store.NewInMemoryStore()
			seed(t, mem, tc.seed...)
			stub := &stubStore{ProductStore: mem}
			if tc.stub != nil {
				tc.stub(stub)
			}
			service := newTestService(t, stub)

			// when
			res := service.Create(context.Background(), tc.input)

			// then
			assert.Equal(t, tc.expectStatus, res.Status)
			assert.Equal(t, tc.expectMessage, res.Message)
			assert.Equal(t, tc.expected, res.Product)
		})
	}
}

func Test_ProductService_Create_RetriesOnDuplicateID(t *testing.T) {
	// given
	mem := store.NewInMemoryStore()
	calls := 0
	stub := &stubStore{ProductStore: mem}
	stub.createFn = func(ctx context.Context, p store.Product) (*store.Product, error) {
		calls++
		if calls == 1 {
			// another writer took the id between MaxID and insert
			_, err := mem.Create(ctx, store.Product{ID: p.ID, Name: "Intruder", Stock: 1})
			require.NoError(t, err)
			return nil, perrors.ErrDuplicateID
		}
		return mem.Create(ctx, p)
	}
	service := newTestService(t, stub, WithCreateRetries(2))

	// when
	res := service.Create(context.Background(), ProductCreateDto{Name: "Widget", Stock: 4})

	// then
	require.Equal(t, StatusCreated, res.Status)
	assert.Equal(t, "000002", res.Product.ID)
	assert.Equal(t, 2, calls)
}

func Test_ProductService_Create_GivesUpAfterRetries(t *testing.T) {
	stub := &stubStore{ProductStore: store.NewInMemoryStore()}
	calls := 0
	stub.createFn = func(context.Context, store.Product) (*store.Product, error) {
		calls++
		return nil, perrors.ErrDuplicateID
	}
	service := newTestService(t, stub, WithCreateRetries(2))

	res := service.Create(context.Background(), ProductCreateDto{Name: "Widget", Stock: 4})

	assert.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, perrors.ErrDuplicateID)
	assert.Equal(t, 3, calls)
}

func Test_ProductService_FindAll(t *testing.T) {
	testCases := []struct {
		name         string
		seed         []store.Product
		failWith     error
		expectedList []ProductDto
		expectError  error
	}{
		{
			name:         "Success - products found",
			seed:         []store.Product{{ID: "000002", Name: "B", Stock: 2}, {ID: "000001", Name: "A", Stock: 1}},
			expectedList: []ProductDto{{ID: "000001", Name: "A", Stock: 1}, {ID: "000002", Name: "B", Stock: 2}},
		},
		{
			name:         "Success - no products",
			expectedList: []ProductDto{},
		},
		{
			name:        "Error - store error",
			failWith:    errStore,
			expectError: errStore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mem := store.NewInMemoryStore()
			seed(t, mem, tc.seed...)
			stub := &stubStore{ProductStore: mem}
			if tc.failWith != nil {
				stub.findAllFn = func(context.Context) ([]store.Product, error) { return nil, tc.failWith }
			}
			service := newTestService(t, stub)

			// when
			list, err := service.FindAll(context.Background())

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, list)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedList, list)
		})
	}
}

func Test_ProductService_FindByID(t *testing.T) {
	mem := store.NewInMemoryStore()
	seed(t, mem, store.Product{ID: "000001", Name: "Toy", Stock: 3})
	service := newTestService(t, mem)

	t.Run("Success - product found", func(t *testing.T) {
		found, err := service.FindByID(context.Background(), "000001")
		require.NoError(t, err)
		assert.Equal(t, &ProductDto{ID: "000001", Name: "Toy", Stock: 3}, found)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		found, err := service.FindByID(context.Background(), "000002")
		assert.ErrorIs(t, err, perrors.ErrProductNotFound)
		assert.Nil(t, found)
	})
}

func Test_ProductService_DeleteByID(t *testing.T) {
	// given
	mem := store.NewInMemoryStore()
	seed(t, mem, store.Product{ID: "000001", Name: "Toy", Stock: 3})
	pub := &recordingPublisher{}
	service := newTestService(t, mem, WithPublisher(pub))
	ctx := context.Background()

	// when
	deleted, err := service.DeleteByID(ctx, "000001")

	// then
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = service.FindByID(ctx, "000001")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
	assert.Equal(t, []string{SubjectProductDeleted}, pub.subjects())

	// when deleting again
	deleted, err = service.DeleteByID(ctx, "000001")

	// then
	require.NoError(t, err)
	assert.False(t, deleted)

	t.Run("store error", func(t *testing.T) {
		stub := &stubStore{ProductStore: mem, deleteFn: func(context.Context, string) error { return errStore }}
		deleted, err := newTestService(t, stub).DeleteByID(ctx, "000001")
		assert.ErrorIs(t, err, errStore)
		assert.False(t, deleted)
	})
}

func Test_ProductService_Update(t *testing.T) {
	testCases := []struct {
		name          string
		id            string
		input         ProductUpdateDto
		stub          func(s *stubStore)
		expectStatus  Status
		expectMessage string
		expected      *ProductDto
	}{
		{
			name:          "Rename only keeps stock",
			id:            "000001",
			input:         ProductUpdateDto{Name: "Gizmo"},
			expectStatus:  StatusUpdated,
			expectMessage: MsgUpdated,
			expected:      &ProductDto{ID: "000001", Name: "Gizmo", Stock: 10},
		},
		{
			name:          "Positive delta is added",
			id:            "000001",
			input:         ProductUpdateDto{StockDelta: 5},
			expectStatus:  StatusUpdated,
			expectMessage: MsgUpdated,
			expected:      &ProductDto{ID: "000001", Name: "Widget", Stock: 15},
		},
		{
			name:          "Negative delta is added",
			id:            "000001",
			input:         ProductUpdateDto{Name: "Gizmo", StockDelta: -10},
			expectStatus:  StatusUpdated,
			expectMessage: MsgUpdated,
			expected:      &ProductDto{ID: "000001", Name: "Gizmo", Stock: 0},
		},
		{
			name:          "Delta below zero is rejected",
			id:            "000001",
			input:         ProductUpdateDto{Name: "Gizmo", StockDelta: -11},
			expectStatus:  StatusInsufficientStock,
			expectMessage: MsgInsufficientStock,
			expected:      &ProductDto{ID: "000001", Name: "Widget", Stock: 10},
		},
		{
			name:          "Unknown product",
			id:            "000404",
			input:         ProductUpdateDto{StockDelta: 1},
			expectStatus:  StatusNotFound,
			expectMessage: MsgNotFound,
		},
		{
			name:  "Store failure on write",
			id:    "000001",
			input: ProductUpdateDto{StockDelta: 1},
			stub: func(s *stubStore) {
				s.updateFn = func(context.Context, store.Product) (*store.Product, error) { return nil, errStore }
			},
			expectStatus:  StatusError,
			expectMessage: "An error occurred: store unavailable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mem := store.NewInMemoryStore()
			seed(t, mem, store.Product{ID: "000001", Name: "Widget", Stock: 10})
			stub := &stubStore{ProductStore: mem}
			if tc.stub != nil {
				tc.stub(stub)
			}
			service := newTestService(t, stub)

			// when
			res := service.Update(context.Background(), tc.id, tc.input)

			// then
			assert.Equal(t, tc.expectStatus, res.Status)
			assert.Equal(t, tc.expectMessage, res.Message)
			assert.Equal(t, tc.expected, res.Product)
		})
	}
}

func Test_ProductService_AdjustStock(t *testing.T) {
	testCases := []struct {
		name          string
		increment     bool
		id            string
		quantity      int32
		stub          func(s *stubStore)
		expectStatus  Status
		expectMessage string
		expectStock   int32
	}{
		{name: "decrement within stock", id: "000001", quantity: 4, expectStatus: StatusUpdated, expectMessage: MsgDecremented, expectStock: 6},
		{name: "decrement all stock", id: "000001", quantity: 10, expectStatus: StatusUpdated, expectMessage: MsgDecremented, expectStock: 0},
		{name: "decrement beyond stock", id: "000001", quantity: 11, expectStatus: StatusInsufficientStock, expectMessage: MsgInsufficientStock, expectStock: 10},
		{name: "decrement zero", id: "000001", quantity: 0, expectStatus: StatusInvalidArgument, expectMessage: MsgInvalidQuantity, expectStock: 10},
		{name: "decrement unknown", id: "000404", quantity: 1, expectStatus: StatusNotFound, expectMessage: MsgNotFound, expectStock: 10},
		{name: "increment", increment: true, id: "000001", quantity: 3, expectStatus: StatusUpdated, expectMessage: MsgIncremented, expectStock: 13},
		{name: "increment negative", increment: true, id: "000001", quantity: -3, expectStatus: StatusInvalidArgument, expectMessage: MsgInvalidQuantity, expectStock: 10},
		{name: "increment unknown", increment: true, id: "000404", quantity: 1, expectStatus: StatusNotFound, expectMessage: MsgNotFound, expectStock: 10},
		{name: "increment overflow", increment: true, id: "000001", quantity: math.MaxInt32, expectStatus: StatusError, expectMessage: "An error occurred: stock quantity overflow", expectStock: 10},
		{
			name: "store failure on read", id: "000001", quantity: 1,
			stub: func(s *stubStore) {
				s.findByIDFn = func(context.Context, string) (*store.Product, error) { return nil, errStore }
			},
			expectStatus: StatusError, expectMessage: "An error occurred: store unavailable", expectStock: 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			ctx := context.Background()
			mem := store.NewInMemoryStore()
			seed(t, mem, store.Product{ID: "000001", Name: "Widget", Stock: 10})
			stub := &stubStore{ProductStore: mem}
			if tc.stub != nil {
				tc.stub(stub)
			}
			service := newTestService(t, stub)

			// when
			var res Result
			if tc.increment {
				res = service.IncrementStock(ctx, tc.id, tc.quantity)
			} else {
				res = service.DecrementStock(ctx, tc.id, tc.quantity)
			}

			// then
			assert.Equal(t, tc.expectStatus, res.Status)
			assert.Equal(t, tc.expectMessage, res.Message)
			switch tc.expectStatus {
			case StatusUpdated, StatusInsufficientStock:
				require.NotNil(t, res.Product)
				assert.Equal(t, tc.expectStock, res.Product.Stock)
			default:
				assert.Nil(t, res.Product)
			}
			stored, err := mem.FindByID(ctx, "000001")
			require.NoError(t, err)
			assert.Equal(t, tc.expectStock, stored.Stock)
		})
	}
}

func Test_ProductService_WorkedExample(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, store.NewInMemoryStore())

	res := service.Create(ctx, ProductCreateDto{Name: "Widget", Stock: 10})
	require.Equal(t, StatusCreated, res.Status)
	assert.Equal(t, &ProductDto{ID: "000001", Name: "Widget", Stock: 10}, res.Product)

	res = service.Create(ctx, ProductCreateDto{Name: "Widget", Stock: 5})
	require.Equal(t, StatusAlreadyExists, res.Status)
	assert.Equal(t, int32(10), res.Product.Stock)

	res = service.DecrementStock(ctx, "000001", 15)
	require.Equal(t, StatusInsufficientStock, res.Status)
	assert.Equal(t, int32(10), res.Product.Stock)

	res = service.DecrementStock(ctx, "000001", 10)
	require.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, int32(0), res.Product.Stock)

	res = service.IncrementStock(ctx, "000001", 3)
	require.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, int32(3), res.Product.Stock)
}

func Test_ProductService_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, store.NewInMemoryStore())

	for i := 1; i <= 25; i++ {
		res := service.Create(ctx, ProductCreateDto{Name: fmt.Sprintf("product-%d", i), Stock: 1})
		require.Equal(t, StatusCreated, res.Status)
		assert.Equal(t, fmt.Sprintf("%06d", i), res.Product.ID)
	}
}

func Test_ProductService_ConcurrentCreatesNeverShareID(t *testing.T) {
	ctx := context.Background()
	mem := store.NewInMemoryStore()
	service := newTestService(t, mem)

	const n = 40
	var wg sync.WaitGroup
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = service.Create(ctx, ProductCreateDto{Name: fmt.Sprintf("product-%d", i), Stock: 1})
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, res := range results {
		require.Equal(t, StatusCreated, res.Status)
		assert.False(t, seen[res.Product.ID], "duplicate id %s", res.Product.ID)
		seen[res.Product.ID] = true
	}
	all, err := mem.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func Test_ProductService_ConcurrentSameNameCreatesOnce(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, store.NewInMemoryStore())

	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := map[Status]int{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := service.Create(ctx, ProductCreateDto{Name: "Widget", Stock: 1})
			mu.Lock()
			statuses[res.Status]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, statuses[StatusCreated])
	assert.Equal(t, 19, statuses[StatusAlreadyExists])
}

func Test_ProductService_ConcurrentAdjustmentsConverge(t *testing.T) {
	// given
	ctx := context.Background()
	mem := store.NewInMemoryStore()
	seed(t, mem, store.Product{ID: "000001", Name: "Widget", Stock: 50})
	service := newTestService(t, mem)

	const workers = 200
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int64
	)

	// when
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := int32(i%7 + 1)
			var res Result
			var delta int64
			switch i % 3 {
			case 0:
				res, delta = service.IncrementStock(ctx, "000001", q), int64(q)
			case 1:
				res, delta = service.DecrementStock(ctx, "000001", q), -int64(q)
			default:
				res, delta = service.Update(ctx, "000001", ProductUpdateDto{StockDelta: -q}), -int64(q)
			}
			switch res.Status {
			case StatusUpdated:
				mu.Lock()
				applied += delta
				mu.Unlock()
			case StatusInsufficientStock:
			default:
				t.Errorf("unexpected status %s: %s", res.Status, res.Message)
			}
		}(i)
	}
	wg.Wait()

	// then
	final, err := mem.FindByID(ctx, "000001")
	require.NoError(t, err)
	assert.Equal(t, 50+applied, int64(final.Stock))
	assert.GreaterOrEqual(t, final.Stock, int32(0))
}

func Test_ProductService_AbandonedWaiterLeavesStockUntouched(t *testing.T) {
	// given
	mem := store.NewInMemoryStore()
	seed(t, mem, store.Product{ID: "000001", Name: "Widget", Stock: 5})
	guard := NewStockGuard()
	service := newTestService(t, mem, WithStockGuard(guard))
	require.NoError(t, guard.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// when
	res := service.DecrementStock(ctx, "000001", 1)
	guard.Release()

	// then
	assert.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	stored, err := mem.FindByID(context.Background(), "000001")
	require.NoError(t, err)
	assert.Equal(t, int32(5), stored.Stock)
}

func Test_ProductService_AdjustDelayHonoursCancellation(t *testing.T) {
	mem := store.NewInMemoryStore()
	seed(t, mem, store.Product{ID: "000001", Name: "Widget", Stock: 5})
	service := newTestService(t, mem, WithAdjustDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := service.IncrementStock(ctx, "000001", 1)

	assert.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func Test_ProductService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	service := newTestService(t, store.NewInMemoryStore(), WithPublisher(pub))

	service.Create(ctx, ProductCreateDto{Name: "Widget", Stock: 2})
	service.Create(ctx, ProductCreateDto{Name: "Widget", Stock: 2})
	service.IncrementStock(ctx, "000001", 1)
	service.DecrementStock(ctx, "000001", 100)
	service.Update(ctx, "000001", ProductUpdateDto{Name: "Gizmo"})

	assert.Equal(t, []string{SubjectProductCreated, SubjectProductStockUpdated, SubjectProductUpdated}, pub.subjects())
	payload, err := pub.events[1].Payload()
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"product_id":"000001"`)
	assert.Contains(t, string(payload), `"stock_available":3`)
	assert.Contains(t, string(payload), `"stock_delta":1`)
}

func Test_ProductService_PublishFailureDoesNotChangeOutcome(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	service := newTestService(t, store.NewInMemoryStore(), WithPublisher(pub))

	res := service.Create(context.Background(), ProductCreateDto{Name: "Widget", Stock: 2})

	assert.Equal(t, StatusCreated, res.Status)
	assert.Len(t, pub.subjects(), 1)
}
