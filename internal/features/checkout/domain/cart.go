package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/core/apperror"
	shippingdomain "storefront/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
)

// MaxOrderDraftBytes bounds the serialized draft carried in the gateway metadata.
// Larger drafts are rejected at build time instead of being truncated.
const MaxOrderDraftBytes = 4000

// CartLine is one product line of the buyer's cart.
type CartLine struct {
	ProductID     string          `json:"productId"`
	Title         string          `json:"title"`
	UnitPrice     decimal.Decimal `json:"unitPrice" swaggertype:"string" example:"89.90"`
	Quantity      int             `json:"quantity"`
	Size          string          `json:"size,omitempty"`
	Color         string          `json:"color,omitempty"`
	CoverImageURL string          `json:"coverImageUrl,omitempty"`
}

// LineTotal is UnitPrice times Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums the line totals of cart.
func Subtotal(cart []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range cart {
		total = total.Add(l.LineTotal())
	}
	return total
}

// ShippingAddress is where the order is delivered.
type ShippingAddress struct {
	Name         string `json:"name"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Phone        string `json:"phone"`
}

// Validate reports the first required field left empty. Complement is optional.
func (a ShippingAddress) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"street", a.Street},
		{"number", a.Number},
		{"neighborhood", a.Neighborhood},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"phone", a.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return apperror.Validation("shipping address %s is required", f.name)
		}
	}
	if _, err := shippingdomain.NormalizePostalCode(a.PostalCode); err != nil {
		return err
	}
	return nil
}

// OrderDraft is the order content carried through the payment round trip.
type OrderDraft struct {
	Items           []CartLine                     `json:"items"`
	Shipping        *shippingdomain.ShippingOption `json:"shipping,omitempty"`
	ShippingAddress ShippingAddress                `json:"shippingAddress"`
	Subtotal        decimal.Decimal                `json:"subtotal" swaggertype:"string"`
	Total           decimal.Decimal                `json:"total" swaggertype:"string"`
}

// NewOrderDraft assembles a draft and computes its totals.
func NewOrderDraft(cart []CartLine, shipping *shippingdomain.ShippingOption, address ShippingAddress) OrderDraft {
	subtotal := Subtotal(cart)
	total := subtotal
	if shipping != nil {
		total = total.Add(shipping.Price)
	}
	return OrderDraft{
		Items:           cart,
		Shipping:        shipping,
		ShippingAddress: address,
		Subtotal:        subtotal,
		Total:           total,
	}
}

// Serialize encodes the draft for the gateway metadata, failing when it
// would not fit.
func (d OrderDraft) Serialize() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to serialize order draft: %w", err)
	}
	if len(data) > MaxOrderDraftBytes {
		return "", apperror.Validation("order draft is %d bytes, limit is %d", len(data), MaxOrderDraftBytes)
	}
	return string(data), nil
}

// ParseOrderDraft decodes a draft produced by Serialize.
func ParseOrderDraft(raw string) (*OrderDraft, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: order draft is empty", apperror.ErrReconciliation)
	}
	var d OrderDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("%w: malformed order draft: %v", apperror.ErrReconciliation, err)
	}
	if len(d.Items) == 0 {
		return nil, fmt.Errorf("%w: order draft has no items", apperror.ErrReconciliation)
	}
	return &d, nil
}
