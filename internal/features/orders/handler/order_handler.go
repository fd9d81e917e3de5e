package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/core/auth"
	"storefront/internal/core/httperror"
	"storefront/internal/core/sse"
	"storefront/internal/features/orders/domain"
	"storefront/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	ledger ports.OrderLedger
	// streamTimeout closes long-lived streams; EventSource clients reconnect on their own.
	streamTimeout time.Duration
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(ledger ports.OrderLedger) *OrderHandler {
	return &OrderHandler{
		ledger:        ledger,
		streamTimeout: sse.DefaultTimeout,
	}
}

// UpdateStatusRequest is the body of PATCH /admin/orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" example:"shipped"`
}

// ListMine handles GET /orders.
// @Summary List my orders
// @Description Returns the caller's orders, most recent first.
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Failure 401 {object} httperror.ErrorResponse
// @Failure 503 {object} httperror.ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	orders, err := h.ledger.ListUserOrders(c.UserContext(), auth.UserID(c))
	if err != nil {
		return httperror.Write(c, err, "Failed to list orders")
	}
	return c.Status(http.StatusOK).JSON(orders)
}

// GetMine handles GET /orders/:id.
// @Summary Get one of my orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 401 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetMine(c *fiber.Ctx) error {
	order, err := h.ledger.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return httperror.Write(c, err, "Failed to fetch order")
	}
	// Another user's order answers exactly like a missing one.
	if order.UserID != auth.UserID(c) {
		return httperror.Write(c, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, c.Params("id")), "Failed to fetch order")
	}
	return c.Status(http.StatusOK).JSON(order)
}

// ListAll handles GET /admin/orders.
// @Summary List all orders
// @Description Returns every order, most recent first. Admin only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Failure 401 {object} httperror.ErrorResponse
// @Failure 403 {object} httperror.ErrorResponse
// @Router /admin/orders [get]
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	orders, err := h.ledger.ListOrders(c.UserContext())
	if err != nil {
		return httperror.Write(c, err, "Failed to list orders")
	}
	return c.Status(http.StatusOK).JSON(orders)
}

// UpdateStatus handles PATCH /admin/orders/:id/status.
// @Summary Change an order's status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	order, err := h.ledger.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return httperror.Write(c, err, "Failed to update order status")
	}
	return c.Status(http.StatusOK).JSON(order)
}

// Stream handles GET /admin/orders/stream.
// @Summary Live order feed
// @Description Server-sent events. Every "orders" event carries the full order list, most recent first.
// @Tags Admin
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Failure 401 {object} httperror.ErrorResponse
// @Failure 403 {object} httperror.ErrorResponse
// @Router /admin/orders/stream [get]
func (h *OrderHandler) Stream(c *fiber.Ctx) error {
	return sse.Stream(c, "orders", h.streamTimeout, func(ctx context.Context, send func(any)) (func(), error) {
		return h.ledger.SubscribeOrders(ctx, func(orders []domain.Order) { send(orders) })
	})
}
