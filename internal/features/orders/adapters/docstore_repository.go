package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/core/docstore"
	"storefront/internal/core/logger"
	"storefront/internal/features/orders/domain"
	"storefront/internal/features/orders/ports"

	"go.uber.org/zap"
)

// OrdersCollection is the collection holding orders.
const OrdersCollection = "orders"

// DocstoreOrderRepository stores orders in a docstore collection.
type DocstoreOrderRepository struct {
	coll docstore.Collection
}

var _ ports.OrderRepository = (*DocstoreOrderRepository)(nil)

// NewDocstoreOrderRepository creates a repository over the orders collection of store.
func NewDocstoreOrderRepository(store docstore.Store) *DocstoreOrderRepository {
	return &DocstoreOrderRepository{coll: store.Collection(OrdersCollection)}
}

// Create stores order and returns the assigned id. When order.ID is already
// taken the error wraps domain.ErrOrderExists.
func (r *DocstoreOrderRepository) Create(ctx context.Context, order *domain.Order) (string, error) {
	doc, err := docstore.Encode(order)
	if err != nil {
		return "", err
	}
	id, err := r.coll.Create(ctx, doc)
	if errors.Is(err, docstore.ErrConflict) {
		return "", fmt.Errorf("%w: %v", domain.ErrOrderExists, err)
	}
	return id, err
}

// Get fetches an order by id.
func (r *DocstoreOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	doc, err := r.coll.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeOrder(doc)
}

// FindByPaymentID returns the order for a payment, or nil when there is none.
func (r *DocstoreOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	docs, err := r.coll.FindByField(ctx, "paymentId", paymentID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) > 1 {
		logger.Get().Warn("Multiple orders for one payment", zap.String("payment_id", paymentID), zap.Int("count", len(docs)))
	}
	return decodeOrder(docs[0])
}

// ExistsByPaymentID reports whether an order references the payment.
func (r *DocstoreOrderRepository) ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	return r.coll.ExistsByField(ctx, "paymentId", paymentID)
}

// List returns every order in storage order.
func (r *DocstoreOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	docs, err := r.coll.List(ctx)
	if err != nil {
		return nil, err
	}
	return decodeOrders(docs)
}

// ListByUser returns the orders placed by userID.
func (r *DocstoreOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	docs, err := r.coll.FindByField(ctx, "userId", userID)
	if err != nil {
		return nil, err
	}
	return decodeOrders(docs)
}

// UpdateStatus sets status and updatedAt on the order.
func (r *DocstoreOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	patch := docstore.Document{
		"status":    string(status),
		"updatedAt": updatedAt.UTC().Format(time.RFC3339Nano),
	}
	err := r.coll.Update(ctx, id, patch)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return err
}

// Subscribe forwards every snapshot of the collection as decoded orders.
// Documents that fail to decode are skipped.
func (r *DocstoreOrderRepository) Subscribe(ctx context.Context, fn func([]domain.Order)) (func(), error) {
	return r.coll.Subscribe(ctx, func(docs []docstore.Document) {
		orders := make([]domain.Order, 0, len(docs))
		for _, doc := range docs {
			order, err := decodeOrder(doc)
			if err != nil {
				logger.Get().Warn("Skipping undecodable order", zap.String("order_id", doc.ID()), zap.Error(err))
				continue
			}
			orders = append(orders, *order)
		}
		fn(orders)
	})
}

func decodeOrder(doc docstore.Document) (*domain.Order, error) {
	var order domain.Order
	if err := docstore.Decode(doc, &order); err != nil {
		return nil, fmt.Errorf("order %s: %w", doc.ID(), err)
	}
	return &order, nil
}

func decodeOrders(docs []docstore.Document) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := decodeOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}
