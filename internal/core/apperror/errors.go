// Package apperror defines the error taxonomy shared by every feature.
//
// Features wrap the sentinels with context (fmt.Errorf("...: %w", ErrValidation)) and
// handlers translate them into HTTP statuses with HTTPStatus.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks malformed input. Never retried, no side effects happened.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration marks missing or invalid configuration, such as gateway credentials.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrStore marks a persistent store failure after retries were exhausted.
	ErrStore = errors.New("store unavailable")
	// ErrReconciliation marks a webhook that could not be turned into an order.
	ErrReconciliation = errors.New("reconciliation failed")
	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that would break a uniqueness rule, such as a taken slug.
	ErrConflict = errors.New("conflict")
)

// GatewayError is a failed call to an upstream API (payment provider, postal lookup).
type GatewayError struct {
	// Upstream names the remote service. Empty means the payment gateway.
	Upstream string
	// StatusCode is the provider's HTTP status, 0 when no response arrived.
	StatusCode int
	// Body is the provider's raw error body.
	Body string
}

func (e *GatewayError) Error() string {
	upstream := e.Upstream
	if upstream == "" {
		upstream = "payment gateway"
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s unreachable: %s", upstream, e.Body)
	}
	return fmt.Sprintf("%s returned status %d: %s", upstream, e.StatusCode, e.Body)
}

// Validation wraps ErrValidation with a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error to the status code a handler should answer with.
func HTTPStatus(err error) int {
	var gwErr *GatewayError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &gwErr):
		// The provider's status stays in the message; a provider 401 must not
		// read as the caller's own credentials failing.
		return http.StatusBadGateway
	case errors.Is(err, ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
