package httpclient

import (
	"net/http"
	"time"

	"storefront/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs every outbound request tagged with the upstream name.
// Headers are never logged since they carry bearer tokens.
type LoggingRoundTripper struct {
	// Upstream names the remote service (e.g. "mercadopago", "viacep").
	Upstream string
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs its outcome.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logger.Get().With(
		zap.String("upstream", lrt.Upstream),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)

	log.Debug("HTTP Request Started")

	resp, err := lrt.Proxied.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP Request Failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	log.Debug("HTTP Request Completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client bounded by timeout that logs calls to upstream.
func NewClient(upstream string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Upstream: upstream,
			Proxied:  http.DefaultTransport,
		},
		Timeout: timeout,
	}
}
