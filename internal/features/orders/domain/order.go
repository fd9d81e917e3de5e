package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/core/apperror"
	checkoutdomain "storefront/internal/features/checkout/domain"
	shippingdomain "storefront/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusPending is set on creation, before the store starts handling the order.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing indicates the order is being prepared.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the buyer received the order.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order will not be fulfilled.
	OrderStatusCancelled OrderStatus = "cancelled"
)

var (
	// ErrOrderExists is returned when an order already exists for a payment.
	ErrOrderExists = errors.New("order already exists for payment")
	// ErrOrderNotFound is returned when the order does not exist.
	ErrOrderNotFound = fmt.Errorf("order %w", apperror.ErrNotFound)
)

// ParseStatus accepts the five known statuses, case-insensitively.
func ParseStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	default:
		return "", apperror.Validation("invalid order status %q", s)
	}
}

// Order represents a paid customer order.
type Order struct {
	// ID is the store-assigned document id.
	ID string `json:"id"`
	// OrderNumber is the sequential number shown to the buyer, starting at 100.
	OrderNumber int64 `json:"orderNumber"`
	// UserID is the buyer.
	UserID string `json:"userId"`
	// Items are the purchased cart lines.
	Items []checkoutdomain.CartLine `json:"items"`
	// Shipping is the chosen delivery option, nil when none was chosen.
	Shipping *shippingdomain.ShippingOption `json:"shipping,omitempty"`
	// ShippingAddress is where the order is delivered.
	ShippingAddress checkoutdomain.ShippingAddress `json:"shippingAddress"`
	// Total is the amount actually charged by the gateway.
	Total decimal.Decimal `json:"total" swaggertype:"string"`
	// PaymentID links the order to the gateway payment.
	PaymentID string `json:"paymentId,omitempty"`
	// PaymentStatus is the gateway status at creation time.
	PaymentStatus string `json:"paymentStatus,omitempty"`
	// PaymentMethod is the gateway payment method id (pix, credit card brand, ...).
	PaymentMethod string `json:"paymentMethod,omitempty"`
	// Status is the fulfilment status.
	Status OrderStatus `json:"status"`
	// CreatedAt is the timestamp when the order was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp of the last status change.
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentOrderID is the document id of the order created for a gateway
// payment. The store refuses a second document with the same id, so at most
// one order exists per payment.
func PaymentOrderID(paymentID string) string {
	return "mp-" + paymentID
}

// NewOrder is the data needed to create an order.
type NewOrder struct {
	UserID          string
	Items           []checkoutdomain.CartLine
	Shipping        *shippingdomain.ShippingOption
	ShippingAddress checkoutdomain.ShippingAddress
	Total           decimal.Decimal
	PaymentID       string
	PaymentStatus   string
	PaymentMethod   string
}

// Validate checks the fields every order must carry.
func (n NewOrder) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return apperror.Validation("order user id is required")
	}
	if len(n.Items) == 0 {
		return apperror.Validation("order has no items")
	}
	if n.Total.IsNegative() {
		return apperror.Validation("order total must not be negative, got %s", n.Total)
	}
	return nil
}

// DuplicateOrderError carries the order that already exists for a payment.
type DuplicateOrderError struct {
	PaymentID   string
	OrderID     string
	OrderNumber int64
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("order #%d (%s) already exists for payment %s", e.OrderNumber, e.OrderID, e.PaymentID)
}

// Is makes errors.Is(err, ErrOrderExists) match.
func (e *DuplicateOrderError) Is(target error) bool {
	return target == ErrOrderExists
}
