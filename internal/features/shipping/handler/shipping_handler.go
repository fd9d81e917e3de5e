package handler

import (
	"net/http"

	"storefront/internal/core/httperror"
	"storefront/internal/features/shipping/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ShippingHandler handles HTTP requests for postal lookups and shipping estimates.
type ShippingHandler struct {
	service ports.ShippingService
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(service ports.ShippingService) *ShippingHandler {
	return &ShippingHandler{
		service: service,
	}
}

// EstimateRequest is the body of POST /shipping/estimate.
type EstimateRequest struct {
	// PostalCode is the destination postal code (CEP), with or without the dash.
	PostalCode string `json:"postalCode"`
	// Subtotal is the cart subtotal in BRL.
	Subtotal decimal.Decimal `json:"subtotal" swaggertype:"string" example:"179.80"`
}

// LookupPostalCode handles GET /shipping/postal-codes/:cep.
// @Summary Look up a postal code
// @Description Resolves a Brazilian postal code (CEP) into street, neighborhood, city and state.
// @Tags Shipping
// @Produce json
// @Param cep path string true "Postal code (8 digits)"
// @Success 200 {object} domain.PostalAddress
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Failure 502 {object} httperror.ErrorResponse
// @Router /shipping/postal-codes/{cep} [get]
func (h *ShippingHandler) LookupPostalCode(c *fiber.Ctx) error {
	addr, err := h.service.LookupPostalCode(c.UserContext(), c.Params("cep"))
	if err != nil {
		return httperror.Write(c, err, "Failed to look up postal code")
	}
	return c.Status(http.StatusOK).JSON(addr)
}

// Estimate handles POST /shipping/estimate.
// @Summary Estimate shipping
// @Description Looks up the destination and returns the delivery options for the cart subtotal.
// @Tags Shipping
// @Accept json
// @Produce json
// @Param request body EstimateRequest true "Destination and subtotal"
// @Success 200 {object} domain.Estimate
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Failure 502 {object} httperror.ErrorResponse
// @Router /shipping/estimate [post]
func (h *ShippingHandler) Estimate(c *fiber.Ctx) error {
	var req EstimateRequest
	if err := c.BodyParser(&req); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	estimate, err := h.service.Estimate(c.UserContext(), req.PostalCode, req.Subtotal)
	if err != nil {
		return httperror.Write(c, err, "Failed to estimate shipping")
	}
	return c.Status(http.StatusOK).JSON(estimate)
}
