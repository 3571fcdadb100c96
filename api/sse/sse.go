package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/slotgrid/cache"
	"github.com/kasuganosora/slotgrid/game/inventory"
	"go.uber.org/zap"
)

const keepaliveInterval = 30 * time.Second

// Handler streams inventory events to browsers.
type Handler struct {
	pubsub    cache.PubSub
	state     func() inventory.State
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler. mgr supplies the snapshot sent when a
// client connects.
func NewHandler(pubsub cache.PubSub, mgr *inventory.Manager, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, state: mgr.State, keepalive: keepaliveInterval, logger: logger}
}

// ServeSSE handles GET /sse. The stream opens with a "state" event holding the
// full inventory, followed by one "inventory" event per published change.
func (h *Handler) ServeSSE(c *gin.Context) {
	ctx := c.Request.Context()
	msgCh, unsub, err := h.pubsub.Subscribe(ctx, inventory.Channel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("state", h.state())
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", inventory.Channel, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-ctx.Done():
			return
		}
	}
}
