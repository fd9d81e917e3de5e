package service

import (
	"context"
	"fmt"

	"storefront/internal/core/apperror"
	"storefront/internal/features/shipping/domain"
	"storefront/internal/features/shipping/ports"

	"github.com/shopspring/decimal"
)

// ShippingService resolves destinations and prices deliveries.
type ShippingService struct {
	// lookup resolves postal codes into addresses.
	lookup ports.PostalLookup
	// estimator holds the regional price table.
	estimator *domain.Estimator
}

// NewShippingService creates a new instance of ShippingService.
func NewShippingService(lookup ports.PostalLookup, estimator *domain.Estimator) *ShippingService {
	return &ShippingService{
		lookup:    lookup,
		estimator: estimator,
	}
}

// LookupPostalCode returns the address registered for postalCode.
func (s *ShippingService) LookupPostalCode(ctx context.Context, postalCode string) (*domain.PostalAddress, error) {
	addr, err := s.lookup.Lookup(ctx, postalCode)
	if err != nil {
		return nil, fmt.Errorf("postal lookup %s: %w", postalCode, err)
	}
	return addr, nil
}

// Estimate looks up the destination state and prices the delivery options.
// A failed lookup fails the estimate; no fallback price is ever offered.
func (s *ShippingService) Estimate(ctx context.Context, postalCode string, subtotal decimal.Decimal) (*domain.Estimate, error) {
	if subtotal.IsNegative() {
		return nil, apperror.Validation("subtotal must not be negative, got %s", subtotal)
	}

	addr, err := s.LookupPostalCode(ctx, postalCode)
	if err != nil {
		return nil, err
	}

	options, err := s.estimator.Estimate(addr.State, addr.PostalCode, subtotal)
	if err != nil {
		return nil, err
	}

	return &domain.Estimate{Address: addr, Options: options}, nil
}
