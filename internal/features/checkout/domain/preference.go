package domain

import (
	shippingdomain "storefront/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
)

// CurrencyBRL is the only currency the storefront sells in.
const CurrencyBRL = "BRL"

// AutoReturnApproved sends the buyer back automatically after an approved payment.
const AutoReturnApproved = "approved"

// PreferenceItem is one line of the checkout request.
type PreferenceItem struct {
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
	CurrencyID string
}

// Phone is the payer's phone split into area code and number.
type Phone struct {
	AreaCode string
	Number   string
}

// PayerAddress is the payer's address as the gateway expects it.
type PayerAddress struct {
	ZipCode      string
	StreetName   string
	StreetNumber int
}

// Payer identifies the buyer to the gateway.
type Payer struct {
	Name string
	// Phone is nil when the buyer's phone has fewer than 10 digits.
	Phone   *Phone
	Address PayerAddress
}

// CallbackURLs are the pages the gateway redirects the buyer back to.
type CallbackURLs struct {
	Success string
	Failure string
	Pending string
}

// PaymentMetadata is echoed back by the gateway on the payment record.
type PaymentMetadata struct {
	UserID     string `json:"user_id"`
	OrderDraft string `json:"order_draft"`
}

// PaymentPreference is the checkout request sent to the gateway.
type PaymentPreference struct {
	Items             []PreferenceItem
	Payer             Payer
	CallbackURLs      CallbackURLs
	AutoReturn        string
	ExternalReference string
	NotificationURL   string
	Metadata          PaymentMetadata
}

// PreferenceResult is the gateway's answer to a created preference.
type PreferenceResult struct {
	PreferenceID       string `json:"preferenceId"`
	RedirectURL        string `json:"initPoint"`
	SandboxRedirectURL string `json:"sandboxInitPoint"`
}

// Payment statuses reported by the gateway.
const (
	PaymentStatusApproved = "approved"
	PaymentStatusPending  = "pending"
	PaymentStatusRejected = "rejected"
)

// PaymentRecord is the authoritative payment state fetched from the gateway.
type PaymentRecord struct {
	ID                string
	Status            string
	StatusDetail      string
	TransactionAmount decimal.Decimal
	PaymentMethodID   string
	ExternalReference string
	Metadata          PaymentMetadata
}

// UserID is the metadata user id, falling back to the external reference.
func (p PaymentRecord) UserID() string {
	if p.Metadata.UserID != "" {
		return p.Metadata.UserID
	}
	return p.ExternalReference
}

// Approved reports whether the payment went through.
func (p PaymentRecord) Approved() bool {
	return p.Status == PaymentStatusApproved
}

// PaymentStatus is the informational view of a payment shown after checkout.
type PaymentStatus struct {
	PaymentID     string          `json:"paymentId"`
	Status        string          `json:"status"`
	StatusDetail  string          `json:"statusDetail,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
}

// CheckoutRequest is what the buyer submits to start paying.
type CheckoutRequest struct {
	Items           []CartLine                     `json:"items"`
	Shipping        *shippingdomain.ShippingOption `json:"shipping,omitempty"`
	ShippingAddress ShippingAddress                `json:"shippingAddress"`
	// UserID comes from the bearer token, never from the body.
	UserID string `json:"-"`
}
