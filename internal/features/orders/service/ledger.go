package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/logger"
	"storefront/internal/features/orders/domain"
	"storefront/internal/features/orders/ports"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// OrderCounterName is the counter that numbers orders.
	OrderCounterName = "orders"
	// FirstOrderNumber is the number given to the first order ever placed.
	FirstOrderNumber int64 = 100

	defaultMaxRetries = 8
)

// Ledger creates and tracks orders.
type Ledger struct {
	repo       ports.OrderRepository
	counters   ports.Counters
	maxRetries uint64
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

var _ ports.OrderLedger = (*Ledger)(nil)

// NewLedger creates a new instance of Ledger.
func NewLedger(repo ports.OrderRepository, counters ports.Counters) *Ledger {
	return &Ledger{
		repo:       repo,
		counters:   counters,
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 25 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return b
		},
		now: time.Now,
	}
}

func nextOrderNumber(current int64, exists bool) int64 {
	if !exists {
		return FirstOrderNumber
	}
	return current + 1
}

// NextOrderNumber atomically advances the order counter and returns the new
// value. Lost compare-and-swap races and store errors are retried with
// exponential backoff; when retries run out the error wraps apperror.ErrStore.
func (l *Ledger) NextOrderNumber(ctx context.Context) (int64, error) {
	var number int64
	attempts := 0

	op := func() error {
		attempts++
		n, err := l.counters.UpdateCounter(ctx, OrderCounterName, nextOrderNumber)
		if err != nil {
			return err
		}
		number = n
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Get().Debug("Retrying order number", zap.Int("attempt", attempts), zap.Duration("wait", wait), zap.Error(err))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(l.newBackOff(), l.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		logger.Get().Error("Failed to assign order number", zap.Int("attempts", attempts), zap.Error(err))
		return 0, fmt.Errorf("%w: order number not assigned after %d attempts: %v", apperror.ErrStore, attempts, err)
	}
	return number, nil
}

// CreateOrder stores a pending order. When n carries a payment id that
// already has an order, the existing order is returned together with a
// *domain.DuplicateOrderError and nothing is written. Orders with a payment id
// are stored under domain.PaymentOrderID, so two concurrent calls for the same
// payment cannot both insert.
func (l *Ledger) CreateOrder(ctx context.Context, n domain.NewOrder) (*domain.Order, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	if n.PaymentID != "" {
		existing, err := l.repo.FindByPaymentID(ctx, n.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperror.ErrStore, err)
		}
		if existing != nil {
			return existing, &domain.DuplicateOrderError{
				PaymentID:   n.PaymentID,
				OrderID:     existing.ID,
				OrderNumber: existing.OrderNumber,
			}
		}
	}

	number, err := l.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()
	order := &domain.Order{
		OrderNumber:     number,
		UserID:          n.UserID,
		Items:           n.Items,
		Shipping:        n.Shipping,
		ShippingAddress: n.ShippingAddress,
		Total:           n.Total,
		PaymentID:       n.PaymentID,
		PaymentStatus:   n.PaymentStatus,
		PaymentMethod:   n.PaymentMethod,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if n.PaymentID != "" {
		order.ID = domain.PaymentOrderID(n.PaymentID)
	}

	id, err := l.repo.Create(ctx, order)
	if errors.Is(err, domain.ErrOrderExists) {
		logger.Get().Warn("Order number discarded, payment already has an order",
			zap.Int64("order_number", number),
			zap.String("payment_id", n.PaymentID),
		)
		return l.existingOrder(ctx, n.PaymentID, order.ID)
	}
	if err != nil {
		logger.Get().Error("Failed to store order",
			zap.Int64("order_number", number),
			zap.String("payment_id", n.PaymentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: order #%d not stored: %v", apperror.ErrStore, number, err)
	}
	order.ID = id

	logger.Get().Info("Order created",
		zap.String("order_id", id),
		zap.Int64("order_number", number),
		zap.String("user_id", n.UserID),
		zap.String("payment_id", n.PaymentID),
		zap.String("total", n.Total.StringFixed(2)),
	)
	return order, nil
}

// existingOrder loads the order that won the insert for paymentID.
func (l *Ledger) existingOrder(ctx context.Context, paymentID, orderID string) (*domain.Order, error) {
	existing, err := l.repo.Get(ctx, orderID)
	if err != nil {
		return nil, storeError(err)
	}
	return existing, &domain.DuplicateOrderError{
		PaymentID:   paymentID,
		OrderID:     existing.ID,
		OrderNumber: existing.OrderNumber,
	}
}

// HasPayment reports whether an order already references paymentID.
func (l *Ledger) HasPayment(ctx context.Context, paymentID string) (bool, error) {
	exists, err := l.repo.ExistsByPaymentID(ctx, paymentID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperror.ErrStore, err)
	}
	return exists, nil
}

// UpdateStatus moves an order to status and returns the updated order.
func (l *Ledger) UpdateStatus(ctx context.Context, orderID string, status string) (*domain.Order, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if err := l.repo.UpdateStatus(ctx, orderID, parsed, l.now().UTC()); err != nil {
		return nil, storeError(err)
	}

	logger.Get().Info("Order status updated", zap.String("order_id", orderID), zap.String("status", string(parsed)))
	return l.GetOrder(ctx, orderID)
}

// GetOrder fetches one order.
func (l *Ledger) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := l.repo.Get(ctx, orderID)
	if err != nil {
		return nil, storeError(err)
	}
	return order, nil
}

// ListOrders returns every order, highest order number first.
func (l *Ledger) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := l.repo.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	sortNewestFirst(orders)
	return orders, nil
}

// ListUserOrders returns the orders of userID, most recent first.
func (l *Ledger) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	sortNewestFirst(orders)
	return orders, nil
}

// SubscribeOrders calls fn with the full sorted order list now and after every change.
func (l *Ledger) SubscribeOrders(ctx context.Context, fn func([]domain.Order)) (func(), error) {
	unsubscribe, err := l.repo.Subscribe(ctx, func(orders []domain.Order) {
		sortNewestFirst(orders)
		fn(orders)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return unsubscribe, nil
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].OrderNumber > orders[j].OrderNumber
	})
}

// storeError keeps not-found and validation errors as they are and marks
// anything else as a store failure.
func storeError(err error) error {
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %v", apperror.ErrStore, err)
}
