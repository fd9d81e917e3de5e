package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/core/httperror"
	"storefront/internal/features/messages/ports"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles HTTP requests for contact messages.
type MessageHandler struct {
	service ports.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service ports.MessageService) *MessageHandler {
	return &MessageHandler{
		service: service,
	}
}

// SendMessageRequest represents the contact form body.
type SendMessageRequest struct {
	Name    string `json:"name" example:"Ana Souza"`
	Email   string `json:"email" example:"ana@example.com"`
	Subject string `json:"subject" example:"Troca de tamanho"`
	Body    string `json:"body" example:"Posso trocar a camiseta M por uma G?"`
}

// SetReadRequest represents the body of PATCH /admin/messages/:id/read.
type SetReadRequest struct {
	Read bool `json:"read"`
}

// SendMessage handles POST /messages.
// @Summary Send a contact message
// @Description Stores a contact form submission for the store admins.
// @Tags Messages
// @Accept json
// @Produce json
// @Param message body SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 429 {object} httperror.ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	message, err := h.service.SendMessage(c.UserContext(), req.Name, req.Email, req.Subject, req.Body)
	if err != nil {
		return httperror.Write(c, err, "Failed to send message")
	}

	return c.Status(http.StatusCreated).JSON(message)
}

// ListMessages handles GET /admin/messages.
// @Summary List contact messages
// @Description Newest first. Filter with ?read=true or ?read=false.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param read query bool false "Read flag filter"
// @Success 200 {array} domain.Message
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 403 {object} httperror.ErrorResponse
// @Router /admin/messages [get]
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	var read *bool
	if raw := c.Query("read"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return httperror.Abort(c, http.StatusBadRequest, "read must be true or false")
		}
		read = &v
	}

	messages, err := h.service.ListMessages(c.UserContext(), read)
	if err != nil {
		return httperror.Write(c, err, "Failed to list messages")
	}
	return c.Status(http.StatusOK).JSON(messages)
}

// SetRead handles PATCH /admin/messages/:id/read.
// @Summary Mark a message as read or unread
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param request body SetReadRequest true "Read flag"
// @Success 200 {object} domain.Message
// @Failure 400 {object} httperror.ErrorResponse
// @Failure 404 {object} httperror.ErrorResponse
// @Router /admin/messages/{id}/read [patch]
func (h *MessageHandler) SetRead(c *fiber.Ctx) error {
	var req SetReadRequest
	if err := c.BodyParser(&req); err != nil {
		return httperror.Abort(c, http.StatusBadRequest, "Invalid request body")
	}

	message, err := h.service.SetRead(c.UserContext(), c.Params("id"), req.Read)
	if err != nil {
		return httperror.Write(c, err, "Failed to update message")
	}
	return c.Status(http.StatusOK).JSON(message)
}
