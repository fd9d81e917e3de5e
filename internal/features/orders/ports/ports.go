package ports

import (
	"context"
	"time"

	"storefront/internal/features/orders/domain"
)

// OrderRepository persists orders.
// This is a Secondary Port (Driven Port).
type OrderRepository interface {
	// Create stores order and returns its id.
	Create(ctx context.Context, order *domain.Order) (string, error)
	// Get returns domain.ErrOrderNotFound when the order does not exist.
	Get(ctx context.Context, id string) (*domain.Order, error)
	// FindByPaymentID returns nil, nil when no order references the payment.
	FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
	// ExistsByPaymentID reports whether an order references the payment.
	ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error
	// Subscribe calls fn with every order now and after each change.
	Subscribe(ctx context.Context, fn func([]domain.Order)) (unsubscribe func(), err error)
}

// Counters hands out values from named atomic counters.
type Counters interface {
	UpdateCounter(ctx context.Context, name string, next func(current int64, exists bool) int64) (int64, error)
}

// OrderLedger is the primary port for everything that reads or writes orders.
type OrderLedger interface {
	NextOrderNumber(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, order domain.NewOrder) (*domain.Order, error)
	HasPayment(ctx context.Context, paymentID string) (bool, error)
	UpdateStatus(ctx context.Context, orderID string, status string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error)
	SubscribeOrders(ctx context.Context, fn func([]domain.Order)) (unsubscribe func(), err error)
}
