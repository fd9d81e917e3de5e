// Package httperror turns application errors into JSON error responses.
package httperror

import (
	"errors"
	"net/http"

	"storefront/internal/core/apperror"
	"storefront/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// RayID returns the request id set by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return rayID
}

// Abort answers status with msg without logging.
func Abort(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   RayID(c),
	})
}

// Write logs err and answers with the status apperror.HTTPStatus assigns to it.
// Client and gateway errors expose their message; anything else answers with
// the generic fallback.
func Write(c *fiber.Ctx, err error, fallback string) error {
	rayID := RayID(c)
	status := apperror.HTTPStatus(err)

	log := logger.ForRequest(rayID).With(zap.String("path", c.Path()), zap.Error(err))
	if status >= http.StatusInternalServerError {
		log.Error(fallback)
	} else {
		log.Info(fallback)
	}

	msg := fallback
	var gwErr *apperror.GatewayError
	if status < http.StatusInternalServerError || errors.As(err, &gwErr) {
		msg = err.Error()
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID,
	})
}
