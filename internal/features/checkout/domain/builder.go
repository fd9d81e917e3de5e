package domain

import (
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/core/apperror"
	shippingdomain "storefront/internal/features/shipping/domain"
)

// NotificationPath is where the gateway posts payment notifications.
const NotificationPath = "/webhooks/mercadopago"

// BuildInput is everything a checkout attempt provides to the Builder.
type BuildInput struct {
	Cart     []CartLine
	Shipping *shippingdomain.ShippingOption
	Address  ShippingAddress
	UserID   string
	Draft    OrderDraft
}

// Builder assembles gateway checkout requests.
type Builder struct {
	baseURL string
}

// NewBuilder creates a Builder. An empty baseURL makes Build fall back to
// the request's own base URL.
func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Build validates the input and returns the preference to send. It has no side effects.
func (b *Builder) Build(in BuildInput, requestBaseURL string) (*PaymentPreference, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	base := b.baseURL
	if base == "" {
		base = strings.TrimRight(requestBaseURL, "/")
	}
	if base == "" {
		return nil, fmt.Errorf("%w: no public base URL for callbacks", apperror.ErrConfiguration)
	}

	draft, err := in.Draft.Serialize()
	if err != nil {
		return nil, err
	}

	items := make([]PreferenceItem, 0, len(in.Cart)+1)
	for _, line := range in.Cart {
		items = append(items, PreferenceItem{
			Title:      lineTitle(line),
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			CurrencyID: CurrencyBRL,
		})
	}
	if in.Shipping != nil && in.Shipping.Price.IsPositive() {
		items = append(items, PreferenceItem{
			Title:      "Frete - " + in.Shipping.Name,
			Quantity:   1,
			UnitPrice:  in.Shipping.Price,
			CurrencyID: CurrencyBRL,
		})
	}

	return &PaymentPreference{
		Items: items,
		Payer: buildPayer(in.Address),
		CallbackURLs: CallbackURLs{
			Success: base + "/checkout/success",
			Failure: base + "/checkout/failure",
			Pending: base + "/checkout/pending",
		},
		AutoReturn:        AutoReturnApproved,
		ExternalReference: in.UserID,
		NotificationURL:   base + NotificationPath,
		Metadata: PaymentMetadata{
			UserID:     in.UserID,
			OrderDraft: draft,
		},
	}, nil
}

func validate(in BuildInput) error {
	if len(in.Cart) == 0 {
		return apperror.Validation("cart is empty")
	}
	for i, line := range in.Cart {
		if !line.UnitPrice.IsPositive() {
			return apperror.Validation("line %d (%s): unit price must be positive, got %s", i, line.Title, line.UnitPrice)
		}
		if line.Quantity <= 0 {
			return apperror.Validation("line %d (%s): quantity must be positive, got %d", i, line.Title, line.Quantity)
		}
	}
	if strings.TrimSpace(in.Address.Name) == "" {
		return apperror.Validation("shipping address name is required")
	}
	if strings.TrimSpace(in.Address.Phone) == "" {
		return apperror.Validation("shipping address phone is required")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return apperror.Validation("user id is required")
	}
	if in.Shipping != nil && in.Shipping.Price.IsNegative() {
		return apperror.Validation("shipping price must not be negative, got %s", in.Shipping.Price)
	}
	return nil
}

func lineTitle(line CartLine) string {
	title := line.Title
	if line.Size != "" {
		title += " - " + line.Size
	}
	if line.Color != "" {
		title += " - " + line.Color
	}
	return title
}

func buildPayer(addr ShippingAddress) Payer {
	payer := Payer{
		Name: addr.Name,
		Address: PayerAddress{
			ZipCode:      shippingdomain.DigitsOnly(addr.PostalCode),
			StreetName:   addr.Street,
			StreetNumber: parseStreetNumber(addr.Number),
		},
	}

	if digits := shippingdomain.DigitsOnly(addr.Phone); len(digits) >= 10 {
		payer.Phone = &Phone{AreaCode: digits[:2], Number: digits[2:]}
	}

	return payer
}

// parseStreetNumber returns 0 for numbers like "s/n" or "12A".
func parseStreetNumber(number string) int {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		return 0
	}
	return n
}
