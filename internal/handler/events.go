package handler

import (
	"encoding/json"
	"io"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/relay"

	"github.com/gin-gonic/gin"
)

// EventsHandler streams relay events to dashboards over SSE. Each connection
// holds one Redis subscription; dropped connections resubscribe and reconcile
// by re-fetching, so missed events are harmless.
type EventsHandler struct{ sub *relay.Subscriber }

func NewEventsHandler(sub *relay.Subscriber) *EventsHandler { return &EventsHandler{sub: sub} }

const keepaliveInterval = 25 * time.Second

// Restaurante streams the caller's tenant channel.
func (h *EventsHandler) Restaurante(c *gin.Context) {
	restauranteID, ok := tenantID(c)
	if !ok {
		return
	}
	h.stream(c, relay.RestauranteChannel(restauranteID.String()))
}

// Admin streams the firehose channel carrying all tenants.
func (h *EventsHandler) Admin(c *gin.Context) {
	h.stream(c, relay.AdminChannel)
}

func (h *EventsHandler) stream(c *gin.Context, channel string) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, cancel := h.sub.Subscribe(c.Request.Context(), channel)
	defer cancel()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, open := <-events:
			if !open {
				return false
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return true
			}
			c.SSEvent(ev.Type, string(data))
			return true
		case <-keepalive.C:
			// Comment frame keeps proxies from closing the idle stream.
			c.SSEvent("ping", time.Now().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
