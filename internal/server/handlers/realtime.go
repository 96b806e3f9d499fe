package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/waajacu/minerals/internal/server/events"
	"github.com/waajacu/minerals/internal/server/response"
)

// HandleWebSocket handles WebSocket connections at /api/v1/updates/ws.
// @Summary WebSocket updates
// @Description WebSocket connection for real-time catalog updates
// @Tags updates
// @Success 101 "Switching Protocols"
// @Router /api/v1/updates/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		response.BadRequest(w, "WebSocket upgrade required", "")
		return
	}
	h.wsHub.ServeHTTP(w, r)
	h.broker.Publish(events.ClientConnected, map[string]any{"transport": "websocket"})
}

// HandleSSE handles Server-Sent Events at /api/v1/updates/stream.
// @Summary SSE updates stream
// @Description Server-Sent Events stream for catalog change notifications
// @Tags updates
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /api/v1/updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.broker.Publish(events.ClientConnected, map[string]any{"transport": "sse"})
	h.sseBroadcaster.ServeHTTP(w, r)
}
