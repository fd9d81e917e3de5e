package domain

import (
	checkoutdomain "storefront/internal/features/checkout/domain"
)

// NotificationTypePayment is the only notification type that can create orders.
const NotificationTypePayment = "payment"

// Notification is the webhook body Mercado Pago posts on payment events.
// Only Type and Data.ID are trusted; the payment itself is always re-fetched.
type Notification struct {
	Type   string           `json:"type" example:"payment"`
	Action string           `json:"action,omitempty" example:"payment.updated"`
	Data   NotificationData `json:"data"`
}

// NotificationData identifies the resource the notification is about.
type NotificationData struct {
	// ID arrives as a string or as a number depending on the event.
	ID checkoutdomain.FlexibleID `json:"id" swaggertype:"string" example:"1234567890"`
}

// WebhookAck is the body returned to the gateway for every accepted delivery.
type WebhookAck struct {
	Received bool `json:"received" example:"true"`
}

// Outcome describes what a notification led to.
type Outcome string

const (
	// OutcomeIgnored means the notification was not about a payment.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeNotApproved means the fetched payment is not approved; no order was written.
	OutcomeNotApproved Outcome = "not_approved"
	// OutcomeDuplicate means an order already exists for the payment.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeInProgress means another delivery holds the payment lock.
	OutcomeInProgress Outcome = "in_progress"
	// OutcomeUnreconcilable means the payment metadata could not be turned into an order.
	OutcomeUnreconcilable Outcome = "unreconcilable"
	// OutcomeCreated means an order was created.
	OutcomeCreated Outcome = "created"
)

// Result reports the outcome of one notification.
type Result struct {
	Outcome     Outcome
	PaymentID   string
	OrderID     string
	OrderNumber int64
}
