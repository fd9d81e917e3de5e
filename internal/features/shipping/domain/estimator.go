package domain

import (
	"strings"

	"storefront/internal/core/apperror"

	"github.com/shopspring/decimal"
)

const (
	// FreeShippingName labels the option offered above the free-shipping threshold.
	FreeShippingName = "Frete Grátis"
	// LocalPickupName labels the option offered when the destination is the store itself.
	LocalPickupName = "Retirada Local - Grátis"

	freeShippingDays = 5
)

// FreeShippingThreshold is the cart subtotal from which shipping is free.
var FreeShippingThreshold = decimal.NewFromInt(150)

// ShippingOption is a priced delivery choice.
type ShippingOption struct {
	// Name is the carrier service shown to the buyer (e.g. PAC, SEDEX).
	Name string `json:"name"`
	// Price is the shipping cost in BRL, never negative.
	Price decimal.Decimal `json:"price"`
	// EtaDays is the estimated delivery time in business days.
	EtaDays int `json:"etaDays"`
}

// Region groups states that share shipping prices.
type Region string

const (
	RegionSoutheast Region = "southeast"
	RegionSouth     Region = "south"
	RegionMidwest   Region = "midwest"
	RegionNortheast Region = "northeast"
	RegionNorth     Region = "north"
)

type regionRates struct {
	pacPrice   decimal.Decimal
	pacDays    int
	sedexPrice decimal.Decimal
	sedexDays  int
}

var rates = map[Region]regionRates{
	RegionSoutheast: {decimal.NewFromInt(12), 3, decimal.NewFromInt(20), 1},
	RegionSouth:     {decimal.NewFromInt(15), 5, decimal.NewFromInt(25), 2},
	RegionMidwest:   {decimal.NewFromInt(18), 6, decimal.NewFromInt(28), 3},
	RegionNortheast: {decimal.NewFromInt(22), 8, decimal.NewFromInt(35), 4},
	RegionNorth:     {decimal.NewFromInt(28), 12, decimal.NewFromInt(45), 6},
}

var stateRegions = map[string]Region{
	"SP": RegionSoutheast, "RJ": RegionSoutheast, "MG": RegionSoutheast, "ES": RegionSoutheast,
	"PR": RegionSouth, "SC": RegionSouth, "RS": RegionSouth,
	"GO": RegionMidwest, "MT": RegionMidwest, "MS": RegionMidwest, "DF": RegionMidwest,
	"BA": RegionNortheast, "SE": RegionNortheast, "AL": RegionNortheast, "PE": RegionNortheast,
	"PB": RegionNortheast, "RN": RegionNortheast, "CE": RegionNortheast, "PI": RegionNortheast,
	"MA": RegionNortheast,
	"AM": RegionNorth, "RR": RegionNorth, "AP": RegionNorth, "PA": RegionNorth,
	"TO": RegionNorth, "RO": RegionNorth, "AC": RegionNorth,
}

// RegionOf classifies a two-letter state code. Unknown codes fall back to the South.
func RegionOf(state string) Region {
	if r, ok := stateRegions[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return r
	}
	return RegionSouth
}

// Estimator prices shipping from the store's origin to a destination.
type Estimator struct {
	originPostalCode string
	freeThreshold    decimal.Decimal
}

// NewEstimator creates an Estimator shipping from originPostalCode.
func NewEstimator(originPostalCode string) (*Estimator, error) {
	origin, err := NormalizePostalCode(originPostalCode)
	if err != nil {
		return nil, err
	}
	return &Estimator{
		originPostalCode: origin,
		freeThreshold:    FreeShippingThreshold,
	}, nil
}

// Estimate returns the delivery options for a cart of the given subtotal.
// Local pickup wins over free shipping; otherwise PAC and SEDEX are returned in that order.
func (e *Estimator) Estimate(destinationState, destinationPostalCode string, subtotal decimal.Decimal) ([]ShippingOption, error) {
	if subtotal.IsNegative() {
		return nil, apperror.Validation("subtotal must not be negative, got %s", subtotal)
	}
	postal, err := NormalizePostalCode(destinationPostalCode)
	if err != nil {
		return nil, err
	}

	if postal == e.originPostalCode {
		return []ShippingOption{{Name: LocalPickupName, Price: decimal.Zero, EtaDays: 0}}, nil
	}

	if subtotal.GreaterThanOrEqual(e.freeThreshold) {
		return []ShippingOption{{Name: FreeShippingName, Price: decimal.Zero, EtaDays: freeShippingDays}}, nil
	}

	r := rates[RegionOf(destinationState)]
	return []ShippingOption{
		{Name: "PAC", Price: r.pacPrice, EtaDays: r.pacDays},
		{Name: "SEDEX", Price: r.sedexPrice, EtaDays: r.sedexDays},
	}, nil
}

// NormalizePostalCode strips everything but digits and requires exactly eight of them.
func NormalizePostalCode(cep string) (string, error) {
	digits := DigitsOnly(cep)
	if len(digits) != 8 {
		return "", apperror.Validation("postal code must have 8 digits, got %q", cep)
	}
	return digits, nil
}

// DigitsOnly drops every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
