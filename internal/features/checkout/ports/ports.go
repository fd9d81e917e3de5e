package ports

import (
	"context"

	"storefront/internal/features/checkout/domain"
	shippingdomain "storefront/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
)

// PaymentGateway is the external payment provider.
// This is a Secondary Port (Driven Port).
type PaymentGateway interface {
	// CreatePreference registers a checkout and returns where to send the buyer.
	// It is never retried automatically.
	CreatePreference(ctx context.Context, pref *domain.PaymentPreference) (*domain.PreferenceResult, error)
	// FetchPayment returns the authoritative state of a payment.
	FetchPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error)
}

// ShippingQuoter prices delivery for a cart. Checkout re-quotes the buyer's
// selection with it so the charged freight never comes from the client.
type ShippingQuoter interface {
	Estimate(destinationState, destinationPostalCode string, subtotal decimal.Decimal) ([]shippingdomain.ShippingOption, error)
}

// CheckoutService is the primary port used by the HTTP handler.
type CheckoutService interface {
	CreatePreference(ctx context.Context, req domain.CheckoutRequest, requestBaseURL string) (*domain.PreferenceResult, error)
	PaymentStatus(ctx context.Context, userID, paymentID string) (*domain.PaymentStatus, error)
}
