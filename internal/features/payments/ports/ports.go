package ports

import (
	"context"
	"time"

	checkoutdomain "storefront/internal/features/checkout/domain"
	ordersdomain "storefront/internal/features/orders/domain"
	"storefront/internal/features/payments/domain"
)

// PaymentFetcher reads the authoritative payment state from the gateway.
type PaymentFetcher interface {
	FetchPayment(ctx context.Context, paymentID string) (*checkoutdomain.PaymentRecord, error)
}

// OrderWriter is the part of the order ledger the reconciler needs.
type OrderWriter interface {
	HasPayment(ctx context.Context, paymentID string) (bool, error)
	CreateOrder(ctx context.Context, order ordersdomain.NewOrder) (*ordersdomain.Order, error)
}

// Locker provides short-lived exclusive keys shared across instances.
type Locker interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Reconciler turns payment notifications into orders.
// This is a Primary Port (Driving Port).
type Reconciler interface {
	HandleNotification(ctx context.Context, n domain.Notification) (*domain.Result, error)
}
