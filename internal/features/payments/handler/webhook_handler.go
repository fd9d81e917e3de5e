package handler

import (
	"encoding/json"
	"net/http"

	"storefront/internal/core/httperror"
	"storefront/internal/core/logger"
	checkoutdomain "storefront/internal/features/checkout/domain"
	"storefront/internal/features/payments/domain"
	"storefront/internal/features/payments/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebhookHandler receives payment notifications from the gateway.
type WebhookHandler struct {
	reconciler ports.Reconciler
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconciler ports.Reconciler) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
	}
}

// MercadoPago handles POST /webhooks/mercadopago.
// Processing failures are logged and still acknowledged with 200, otherwise
// the gateway keeps redelivering. Only an unparseable body answers 500.
// @Summary Mercado Pago notification
// @Description Receives payment notifications. The body form {type, data.id} and the query form ?type=payment&data.id= are both accepted.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param notification body domain.Notification false "Notification"
// @Param type query string false "Notification type"
// @Param data.id query string false "Resource id"
// @Success 200 {object} domain.WebhookAck
// @Failure 500 {object} httperror.ErrorResponse
// @Router /webhooks/mercadopago [post]
func (h *WebhookHandler) MercadoPago(c *fiber.Ctx) error {
	log := logger.ForRequest(httperror.RayID(c))

	var n domain.Notification
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &n); err != nil {
			log.Warn("Malformed notification body", zap.Error(err))
			return httperror.Abort(c, http.StatusInternalServerError, "Malformed notification body")
		}
	}
	if n.Type == "" {
		n.Type = c.Query("type", c.Query("topic"))
	}
	if n.Data.ID == "" {
		n.Data.ID = checkoutdomain.FlexibleID(c.Query("data.id", c.Query("id")))
	}

	result, err := h.reconciler.HandleNotification(c.UserContext(), n)
	if err != nil {
		log.Error("Failed to reconcile notification",
			zap.String("type", n.Type),
			zap.String("payment_id", n.Data.ID.String()),
			zap.Error(err),
		)
	} else {
		log.Info("Notification processed",
			zap.String("type", n.Type),
			zap.String("payment_id", result.PaymentID),
			zap.String("outcome", string(result.Outcome)),
			zap.String("order_id", result.OrderID),
		)
	}

	return c.Status(http.StatusOK).JSON(domain.WebhookAck{Received: true})
}
