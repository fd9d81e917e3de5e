package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/core/apperror"
	"storefront/internal/core/logger"
	"storefront/internal/features/checkout/domain"
	"storefront/internal/features/checkout/ports"
	shippingdomain "storefront/internal/features/shipping/domain"

	"go.uber.org/zap"
)

// ErrPaymentNotFound is returned when a payment does not exist or belongs to another user.
var ErrPaymentNotFound = fmt.Errorf("payment %w", apperror.ErrNotFound)

// CheckoutService turns carts into gateway checkouts.
type CheckoutService struct {
	builder  *domain.Builder
	shipping ports.ShippingQuoter
	gateway  ports.PaymentGateway
}

// NewCheckoutService creates a new instance of CheckoutService.
func NewCheckoutService(builder *domain.Builder, shipping ports.ShippingQuoter, gateway ports.PaymentGateway) *CheckoutService {
	return &CheckoutService{
		builder:  builder,
		shipping: shipping,
		gateway:  gateway,
	}
}

// CreatePreference validates the request, builds the preference and sends it
// to the gateway exactly once. No order is written here.
func (s *CheckoutService) CreatePreference(ctx context.Context, req domain.CheckoutRequest, requestBaseURL string) (*domain.PreferenceResult, error) {
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, err
	}

	shipping, err := s.quoteSelection(req)
	if err != nil {
		return nil, err
	}

	pref, err := s.builder.Build(domain.BuildInput{
		Cart:     req.Items,
		Shipping: shipping,
		Address:  req.ShippingAddress,
		UserID:   req.UserID,
		Draft:    domain.NewOrderDraft(req.Items, shipping, req.ShippingAddress),
	}, requestBaseURL)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.CreatePreference(ctx, pref)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	logger.Get().Info("Payment preference created",
		zap.String("user_id", req.UserID),
		zap.String("preference_id", result.PreferenceID),
		zap.Int("items", len(pref.Items)),
	)

	return result, nil
}

// quoteSelection re-estimates shipping for the request's address and cart and
// returns the server-side option matching the buyer's choice by name and price.
func (s *CheckoutService) quoteSelection(req domain.CheckoutRequest) (*shippingdomain.ShippingOption, error) {
	if req.Shipping == nil {
		return nil, apperror.Validation("a shipping option must be selected")
	}

	options, err := s.shipping.Estimate(req.ShippingAddress.State, req.ShippingAddress.PostalCode, domain.Subtotal(req.Items))
	if err != nil {
		return nil, err
	}
	for _, opt := range options {
		if opt.Name == req.Shipping.Name && opt.Price.Equal(req.Shipping.Price) {
			return &opt, nil
		}
	}

	logger.Get().Warn("Shipping selection does not match the estimate",
		zap.String("user_id", req.UserID),
		zap.String("name", req.Shipping.Name),
		zap.String("price", req.Shipping.Price.StringFixed(2)),
	)
	return nil, apperror.Validation("shipping option %q at %s is not available for this cart", req.Shipping.Name, req.Shipping.Price.StringFixed(2))
}

// PaymentStatus reports a payment's state to the buyer who made it. It is
// purely informational; orders are only created from gateway notifications.
func (s *CheckoutService) PaymentStatus(ctx context.Context, userID, paymentID string) (*domain.PaymentStatus, error) {
	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	var gwErr *apperror.GatewayError
	if errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}

	if payment.UserID() != userID {
		return nil, ErrPaymentNotFound
	}

	return &domain.PaymentStatus{
		PaymentID:     payment.ID,
		Status:        payment.Status,
		StatusDetail:  payment.StatusDetail,
		PaymentMethod: payment.PaymentMethodID,
		Amount:        payment.TransactionAmount,
	}, nil
}
