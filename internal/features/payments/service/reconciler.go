package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/cache"
	"storefront/internal/core/logger"
	checkoutdomain "storefront/internal/features/checkout/domain"
	ordersdomain "storefront/internal/features/orders/domain"
	"storefront/internal/features/payments/domain"
	"storefront/internal/features/payments/ports"

	"go.uber.org/zap"
)

const (
	lockOperation = "webhook-payment"
	// LockTTL bounds how long a crashed delivery can block redeliveries of the same payment.
	LockTTL = 2 * time.Minute
)

// Reconciler creates orders for approved payments.
type Reconciler struct {
	gateway ports.PaymentFetcher
	orders  ports.OrderWriter
	locks   ports.Locker
}

var _ ports.Reconciler = (*Reconciler)(nil)

// NewReconciler creates a new instance of Reconciler.
func NewReconciler(gateway ports.PaymentFetcher, orders ports.OrderWriter, locks ports.Locker) *Reconciler {
	return &Reconciler{
		gateway: gateway,
		orders:  orders,
		locks:   locks,
	}
}

// HandleNotification processes one webhook delivery. Deliveries for the same
// payment may arrive many times, out of order and concurrently; at most one
// order is ever created per payment id.
//
// Errors are returned only for failures a redelivery could fix (gateway or
// store); unusable payment metadata is logged and reported as
// domain.OutcomeUnreconcilable.
func (r *Reconciler) HandleNotification(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	if n.Type != domain.NotificationTypePayment {
		logger.Get().Debug("Ignoring notification", zap.String("type", n.Type), zap.String("action", n.Action))
		return &domain.Result{Outcome: domain.OutcomeIgnored}, nil
	}

	paymentID := n.Data.ID.String()
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment notification without id", apperror.ErrReconciliation)
	}
	result := &domain.Result{PaymentID: paymentID}
	log := logger.Get().With(zap.String("payment_id", paymentID))

	exists, err := r.orders.HasPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Info("Order already exists for payment")
		result.Outcome = domain.OutcomeDuplicate
		return result, nil
	}

	payment, err := r.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Approved() {
		log.Info("Payment not approved, no order created", zap.String("status", payment.Status), zap.String("status_detail", payment.StatusDetail))
		result.Outcome = domain.OutcomeNotApproved
		return result, nil
	}

	key := cache.Key(lockOperation, paymentID)
	acquired, err := r.locks.SetNX(ctx, key, []byte(time.Now().UTC().Format(time.RFC3339)), LockTTL)
	switch {
	case err != nil:
		// The ledger stores the order under an id derived from the payment id, so a
		// concurrent delivery still cannot insert a second order.
		log.Warn("Payment lock unavailable, continuing without it", zap.Error(err))
	case !acquired:
		log.Info("Payment is being reconciled by another delivery")
		result.Outcome = domain.OutcomeInProgress
		return result, nil
	}

	order, outcome, err := r.createOrder(ctx, paymentID, payment)
	if err != nil {
		if acquired {
			if delErr := r.locks.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				log.Warn("Failed to release payment lock", zap.Error(delErr))
			}
		}
		return nil, err
	}

	result.Outcome = outcome
	if order != nil {
		result.OrderID = order.ID
		result.OrderNumber = order.OrderNumber
	}
	return result, nil
}

// createOrder keys the order on the notified payment id, the same id the
// duplicate check uses.
func (r *Reconciler) createOrder(ctx context.Context, paymentID string, payment *checkoutdomain.PaymentRecord) (*ordersdomain.Order, domain.Outcome, error) {
	log := logger.Get().With(zap.String("payment_id", paymentID))

	userID := payment.UserID()
	if userID == "" {
		log.Error("Approved payment has no user reference, order not created")
		return nil, domain.OutcomeUnreconcilable, nil
	}

	draft, err := checkoutdomain.ParseOrderDraft(payment.Metadata.OrderDraft)
	if err != nil {
		log.Error("Approved payment has an unusable order draft, order not created", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.OutcomeUnreconcilable, nil
	}

	if !draft.Total.Equal(payment.TransactionAmount) {
		log.Warn("Charged amount differs from cart total",
			zap.String("charged", payment.TransactionAmount.StringFixed(2)),
			zap.String("cart_total", draft.Total.StringFixed(2)),
		)
	}

	order, err := r.orders.CreateOrder(ctx, ordersdomain.NewOrder{
		UserID:          userID,
		Items:           draft.Items,
		Shipping:        draft.Shipping,
		ShippingAddress: draft.ShippingAddress,
		Total:           payment.TransactionAmount,
		PaymentID:       paymentID,
		PaymentStatus:   payment.Status,
		PaymentMethod:   payment.PaymentMethodID,
	})
	if errors.Is(err, ordersdomain.ErrOrderExists) {
		return order, domain.OutcomeDuplicate, nil
	}
	if errors.Is(err, apperror.ErrValidation) {
		log.Error("Order draft rejected by the ledger", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.OutcomeUnreconcilable, nil
	}
	if err != nil {
		return nil, "", err
	}
	return order, domain.OutcomeCreated, nil
}
