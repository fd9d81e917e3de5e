package domain

import (
	"fmt"

	"storefront/internal/core/apperror"
)

// ErrPostalCodeNotFound is returned when the postal lookup knows no such code.
var ErrPostalCodeNotFound = fmt.Errorf("postal code %w", apperror.ErrNotFound)

// PostalAddress is the address registered for a postal code.
type PostalAddress struct {
	PostalCode   string `json:"postalCode"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Estimate is an address lookup together with the options for it.
type Estimate struct {
	Address *PostalAddress   `json:"address"`
	Options []ShippingOption `json:"options"`
}
