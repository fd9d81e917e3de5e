package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/docstore"
	checkoutdomain "storefront/internal/features/checkout/domain"
	"storefront/internal/features/orders/adapters"
	"storefront/internal/features/orders/domain"
	"storefront/internal/features/orders/ports"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// casCounters is an optimistic counter: it reads, yields, then writes only
// when nobody moved the value in between.
type casCounters struct {
	mu        sync.Mutex
	value     int64
	exists    bool
	conflicts atomic.Int64
}

func (c *casCounters) UpdateCounter(_ context.Context, _ string, next func(int64, bool) int64) (int64, error) {
	c.mu.Lock()
	current, exists := c.value, c.exists
	c.mu.Unlock()

	runtime.Gosched()
	value := next(current, exists)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value != current || c.exists != exists {
		c.conflicts.Add(1)
		return 0, fmt.Errorf("%w: counter moved", docstore.ErrConflict)
	}
	c.value, c.exists = value, true
	return value, nil
}

// failingCounters fails the first failures calls with err.
type failingCounters struct {
	failures int
	err      error
	calls    int
	next     docstore.Counters
}

func (f *failingCounters) UpdateCounter(ctx context.Context, name string, next func(int64, bool) int64) (int64, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, f.err
	}
	return f.next.UpdateCounter(ctx, name, next)
}

// staleLookupRepository never sees an existing order by payment id, like two
// deliveries that both read before either one wrote.
type staleLookupRepository struct {
	ports.OrderRepository
}

func (staleLookupRepository) FindByPaymentID(context.Context, string) (*domain.Order, error) {
	return nil, nil
}

func newTestLedger(counters docstore.Counters) (*Ledger, *docstore.MemoryStore) {
	store := docstore.NewMemoryStore()
	if counters == nil {
		counters = store.Counters()
	}
	l := NewLedger(adapters.NewDocstoreOrderRepository(store), counters)
	l.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return l, store
}

func newOrderInput(userID, paymentID string) domain.NewOrder {
	return domain.NewOrder{
		UserID: userID,
		Items: []checkoutdomain.CartLine{
			{ProductID: "p1", Title: "Camiseta", UnitPrice: decimal.RequireFromString("89.90"), Quantity: 2},
		},
		ShippingAddress: checkoutdomain.ShippingAddress{Name: "Ana", City: "Franca", State: "SP", PostalCode: "14400000"},
		Total:           decimal.RequireFromString("204.80"),
		PaymentID:       paymentID,
		PaymentStatus:   "approved",
		PaymentMethod:   "pix",
	}
}

func TestLedger_NextOrderNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("StartsAt100", func(t *testing.T) {
		l, _ := newTestLedger(nil)

		first, err := l.NextOrderNumber(ctx)
		require.NoError(t, err)
		second, err := l.NextOrderNumber(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(100), first)
		assert.Equal(t, int64(101), second)
	})

	t.Run("RetriesConflicts", func(t *testing.T) {
		store := docstore.NewMemoryStore()
		counters := &failingCounters{failures: 3, err: docstore.ErrConflict, next: store.Counters()}
		l, _ := newTestLedger(counters)

		n, err := l.NextOrderNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), n)
		assert.Equal(t, 4, counters.calls)
	})

	t.Run("RetriesStoreErrors", func(t *testing.T) {
		store := docstore.NewMemoryStore()
		counters := &failingCounters{failures: 1, err: errors.New("connection reset"), next: store.Counters()}
		l, _ := newTestLedger(counters)

		n, err := l.NextOrderNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), n)
	})

	t.Run("ExhaustedRetries", func(t *testing.T) {
		counters := &failingCounters{failures: 1000, err: docstore.ErrConflict}
		l, _ := newTestLedger(counters)

		_, err := l.NextOrderNumber(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrStore)
		assert.Equal(t, defaultMaxRetries+1, counters.calls)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		counters := &failingCounters{failures: 1000, err: docstore.ErrConflict}
		l, _ := newTestLedger(counters)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := l.NextOrderNumber(cancelled)
		assert.ErrorIs(t, err, apperror.ErrStore)
		assert.LessOrEqual(t, counters.calls, 1)
	})
}

func assertContiguous(t *testing.T, numbers []int64, from int64) {
	t.Helper()
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, n := range numbers {
		assert.Equal(t, from+int64(i), n)
	}
}

func TestLedger_NextOrderNumber_Concurrent(t *testing.T) {
	const workers = 50

	run := func(t *testing.T, l *Ledger) []int64 {
		var wg sync.WaitGroup
		numbers := make([]int64, workers)
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				numbers[i], errs[i] = l.NextOrderNumber(context.Background())
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}
		return numbers
	}

	t.Run("MemoryStore", func(t *testing.T) {
		l, _ := newTestLedger(nil)
		assertContiguous(t, run(t, l), FirstOrderNumber)
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		counters := &casCounters{}
		l, _ := newTestLedger(counters)
		l.maxRetries = 10 * workers

		assertContiguous(t, run(t, l), FirstOrderNumber)
		assert.Equal(t, FirstOrderNumber+workers-1, counters.value)
	})
}

func TestLedger_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		l, _ := newTestLedger(nil)
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		order, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
		require.NoError(t, err)
		assert.NotEmpty(t, order.ID)
		assert.Equal(t, int64(100), order.OrderNumber)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.Equal(t, now, order.CreatedAt)
		assert.Equal(t, "pix", order.PaymentMethod)

		stored, err := l.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, stored.OrderNumber)
		assert.True(t, stored.Total.Equal(decimal.RequireFromString("204.80")))
	})

	t.Run("DuplicatePayment", func(t *testing.T) {
		l, store := newTestLedger(nil)

		first, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
		require.NoError(t, err)

		again, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
		require.ErrorIs(t, err, domain.ErrOrderExists)
		var dup *domain.DuplicateOrderError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, first.ID, dup.OrderID)
		assert.Equal(t, first.ID, again.ID)

		orders, err := l.ListOrders(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 1)

		// No order number was burned on the duplicate.
		n, err := store.UpdateCounter(ctx, OrderCounterName, nextOrderNumber)
		require.NoError(t, err)
		assert.Equal(t, int64(101), n)
	})

	t.Run("DuplicatePaymentAfterStaleLookup", func(t *testing.T) {
		store := docstore.NewMemoryStore()
		repo := staleLookupRepository{OrderRepository: adapters.NewDocstoreOrderRepository(store)}
		l := NewLedger(repo, store.Counters())
		l.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

		first, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentOrderID("pay_1"), first.ID)

		again, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
		var dup *domain.DuplicateOrderError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, first.ID, dup.OrderID)
		assert.Equal(t, first.OrderNumber, dup.OrderNumber)
		require.NotNil(t, again)
		assert.Equal(t, first.ID, again.ID)

		orders, err := l.ListOrders(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("ConcurrentSamePayment", func(t *testing.T) {
		l, _ := newTestLedger(nil)

		const callers = 10
		var wg sync.WaitGroup
		var created, duplicates atomic.Int64
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
				switch {
				case err == nil:
					created.Add(1)
				case errors.Is(err, domain.ErrOrderExists):
					duplicates.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), created.Load())
		assert.Equal(t, int64(callers-1), duplicates.Load())
		orders, err := l.ListOrders(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("Invalid", func(t *testing.T) {
		l, _ := newTestLedger(nil)
		in := newOrderInput("u1", "pay_1")
		in.Items = nil

		_, err := l.CreateOrder(ctx, in)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("CounterUnavailable", func(t *testing.T) {
		l, _ := newTestLedger(&failingCounters{failures: 1000, err: errors.New("down")})

		_, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
		assert.ErrorIs(t, err, apperror.ErrStore)

		orders, err := l.ListOrders(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestLedger_HasPayment(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(nil)

	has, err := l.HasPayment(ctx, "pay_1")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
	require.NoError(t, err)

	has, err = l.HasPayment(ctx, "pay_1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestLedger_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(nil)

	order, err := l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
	require.NoError(t, err)

	updated, err := l.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	_, err = l.UpdateStatus(ctx, order.ID, "lost")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = l.UpdateStatus(ctx, "missing", "shipped")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLedger_ListUserOrders(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, user := range []string{"u1", "u2", "u1", "u1"} {
		at := base.Add(time.Duration(i) * time.Hour)
		l.now = func() time.Time { return at }
		_, err := l.CreateOrder(ctx, newOrderInput(user, fmt.Sprintf("pay_%d", i)))
		require.NoError(t, err)
	}

	orders, err := l.ListUserOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, int64(103), orders[0].OrderNumber)
	assert.Equal(t, int64(102), orders[1].OrderNumber)
	assert.Equal(t, int64(100), orders[2].OrderNumber)

	all, err := l.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, int64(103), all[0].OrderNumber)

	none, err := l.ListUserOrders(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedger_SubscribeOrders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l, _ := newTestLedger(nil)

	snapshots := make(chan []domain.Order, 8)
	unsubscribe, err := l.SubscribeOrders(ctx, func(orders []domain.Order) { snapshots <- orders })
	require.NoError(t, err)
	defer unsubscribe()

	_, err = l.CreateOrder(ctx, newOrderInput("u1", "pay_1"))
	require.NoError(t, err)
	_, err = l.CreateOrder(ctx, newOrderInput("u1", "pay_2"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case orders := <-snapshots:
			return len(orders) == 2 && orders[0].OrderNumber == 101
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
