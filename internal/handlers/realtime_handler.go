package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/realtime"
	"github.com/unionhub/unionhub-api/internal/response"
)

// RealtimeHandler upgrades websocket connections and exposes hub queries over HTTP
type RealtimeHandler struct {
	hub      *realtime.Hub
	auth     realtime.Authenticator
	upgrader *websocket.Upgrader
	cfg      realtime.ClientConfig
	log      *log.Logger
}

// NewRealtimeHandler creates a handler; auth verifies authenticate frames on every socket
func NewRealtimeHandler(hub *realtime.Hub, auth realtime.Authenticator, upgrader *websocket.Upgrader, cfg realtime.ClientConfig) *RealtimeHandler {
	return &RealtimeHandler{
		hub:      hub,
		auth:     auth,
		upgrader: upgrader,
		cfg:      cfg,
		log:      logger.Handler("realtime"),
	}
}

// PublishEventRequest is a server-originated event. Kind accepts the short
// name ("announcement") or the client frame name ("announcement:new").
type PublishEventRequest struct {
	Kind string          `json:"kind" binding:"required"`
	Data json.RawMessage `json:"data"`
}

// ServeWS handles GET /ws
func (h *RealtimeHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		h.log.Warn("Websocket upgrade failed", "remote_addr", c.ClientIP(), "error", err)
		return
	}
	realtime.NewClient(h.hub, conn, h.auth, h.cfg).Serve(c.Request.Context())
}

// Presence handles GET /api/realtime/presence
func (h *RealtimeHandler) Presence(c *gin.Context) {
	n, err := h.hub.CountAuthenticated(c.Request.Context())
	if err != nil {
		h.hubError(c, err)
		return
	}
	response.OK(c, "Presence retrieved", gin.H{"count": n})
}

// Connections handles GET /api/realtime/connections
func (h *RealtimeHandler) Connections(c *gin.Context) {
	conns, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		h.hubError(c, err)
		return
	}
	response.OK(c, "Connections retrieved", conns)
}

// PublishEvent handles POST /api/realtime/events
func (h *RealtimeHandler) PublishEvent(c *gin.Context) {
	var req PublishEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request body: "+err.Error())
		return
	}

	kind, ok := notification.KindFromString(req.Kind)
	if !ok {
		kind, ok = notification.KindFromInbound(req.Kind)
	}
	if !ok {
		response.BadRequestError(c, "Unknown event kind: "+req.Kind)
		return
	}

	ev, err := notification.DecodeKind(kind, req.Data)
	if err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	if err := h.hub.Publish(c.Request.Context(), realtime.ServerSource, ev); err != nil {
		h.hubError(c, err)
		return
	}

	h.log.Info("Published server event", "kind", kind)
	response.SuccessResponse(c, http.StatusAccepted, "Event published", gin.H{"event": kind.OutboundName()})
}

func (h *RealtimeHandler) hubError(c *gin.Context, err error) {
	if errors.Is(err, realtime.ErrHubStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		response.ServiceUnavailableError(c, "Realtime hub is unavailable")
		return
	}
	h.log.Error("Realtime hub request failed", "error", err)
	response.InternalServerError(c, "Realtime hub request failed")
}
