package handler

import (
	"net/http"

	"storefront/internal/core/auth"
	"storefront/internal/core/httperror"
	"storefront/internal/features/checkout/domain"
	"storefront/internal/features/checkout/ports"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for the checkout flow.
type CheckoutHandler struct {
	service ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// CreatePreference handles POST /checkout/preferences.
// @Summary Start a checkout
// @Description Validates the cart and address, creates a Mercado Pago preference and returns the redirect URLs.
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CheckoutRequest true "Cart, shipping option and address"
// @Success 201 {object} domain.PreferenceResult
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 401 {object} httperror.ErrorResponse
// @Failure 502 {object} httperror.ErrorResponse
// @Router /checkout/preferences [post]
func (h *CheckoutHandler) CreatePreference(c *fiber.Ctx) error {
	var req domain.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}
	req.UserID = auth.UserID(c)

	result, err := h.service.CreatePreference(c.UserContext(), req, c.BaseURL())
	if err != nil {
		return httperror.Write(c, err, "Failed to create payment preference")
	}

	return c.Status(http.StatusCreated).JSON(result)
}

// PaymentStatus handles GET /checkout/payments/:id.
// @Summary Get payment status
// @Description Reports the gateway status of one of the caller's payments. Never creates orders.
// @Tags Checkout
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} domain.PaymentStatus
// @Failure 401 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Router /checkout/payments/{id} [get]
func (h *CheckoutHandler) PaymentStatus(c *fiber.Ctx) error {
	status, err := h.service.PaymentStatus(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return httperror.Write(c, err, "Failed to fetch payment")
	}
	return c.Status(http.StatusOK).JSON(status)
}
