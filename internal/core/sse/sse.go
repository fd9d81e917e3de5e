// Package sse streams collection snapshots to EventSource clients.
package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/core/httperror"
	"storefront/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout closes long-lived streams; EventSource clients reconnect on their own.
	DefaultTimeout = 30 * time.Minute
	// KeepAliveInterval is how often a comment line is sent on an idle stream.
	KeepAliveInterval = 15 * time.Second
)

// SubscribeFunc starts delivering snapshots to send until ctx is done or the
// returned unsubscribe function is called.
type SubscribeFunc func(ctx context.Context, send func(payload any)) (unsubscribe func(), err error)

// Stream answers c with a text/event-stream. Every snapshot is written as one
// event named event. A subscription error is answered as a regular JSON error.
func Stream(c *fiber.Ctx, event string, timeout time.Duration, subscribe SubscribeFunc) error {
	rayID := httperror.RayID(c)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Only the latest snapshot matters, so a slow client skips intermediate ones.
	updates := make(chan any, 1)
	unsubscribe, err := subscribe(ctx, func(payload any) {
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- payload:
		default:
		}
	})
	if err != nil {
		cancel()
		return httperror.Write(c, err, "Failed to subscribe to "+event)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()

		log := logger.ForRequest(rayID).With(zap.String("event", event))
		log.Debug("Stream opened")

		ticker := time.NewTicker(KeepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case payload := <-updates:
				if err := writeEvent(w, event, payload); err != nil {
					log.Debug("Stream closed by client", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug("Stream closed by client", zap.Error(err))
					return
				}
			case <-ctx.Done():
				log.Debug("Stream expired")
				return
			}
		}
	})

	return nil
}

func writeEvent(w *bufio.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
