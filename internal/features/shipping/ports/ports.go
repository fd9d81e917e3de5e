package ports

import (
	"context"

	"storefront/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
)

// PostalLookup resolves a postal code into an address.
// This is a Secondary Port (Driven Port).
type PostalLookup interface {
	// Lookup returns domain.ErrPostalCodeNotFound for unknown codes.
	Lookup(ctx context.Context, postalCode string) (*domain.PostalAddress, error)
}

// ShippingService is the primary port used by the HTTP handler.
type ShippingService interface {
	LookupPostalCode(ctx context.Context, postalCode string) (*domain.PostalAddress, error)
	Estimate(ctx context.Context, postalCode string, subtotal decimal.Decimal) (*domain.Estimate, error)
}
