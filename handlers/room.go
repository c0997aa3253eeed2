package handlers

import (
	"errors"
	"net/http"

	"github.com/Arvi89/planning-taki/config"
	"github.com/Arvi89/planning-taki/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// standardResponse sends a consistent JSON response
func standardResponse(c *gin.Context, code int, status string, data interface{}, err string) {
	response := gin.H{"status": status}

	if data != nil {
		response["data"] = data
	}

	if err != "" {
		response["error"] = err
	}

	c.JSON(code, response)
}

// RoomHandler serves the websocket endpoint and the read-only session API
type RoomHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	wsCfg    config.WebSocketConfig
	log      *zap.Logger
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(hub *Hub, wsCfg config.WebSocketConfig, log *zap.Logger) *RoomHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsCfg.ReadBufferSize,
			WriteBufferSize: wsCfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		wsCfg: wsCfg,
		log:   log,
	}
}

// ServeWS upgrades the request and attaches a new connection to the hub
func (h *RoomHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn, h.hub, h.wsCfg, h.log)
	if err := h.hub.Register(client.id, client); err != nil {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// GetSession returns the current snapshot of a session
func (h *RoomHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	var (
		snap   models.Snapshot
		lookup error
	)
	err := h.hub.Call(c.Request.Context(), func(d *Dispatcher) {
		snap, lookup = d.Snapshot(sessionID)
	})
	if err != nil {
		standardResponse(c, http.StatusServiceUnavailable, "error", nil, err.Error())
		return
	}
	if errors.Is(lookup, models.ErrSessionNotFound) {
		standardResponse(c, http.StatusNotFound, "error", nil, models.ErrSessionNotFound.Error())
		return
	}

	standardResponse(c, http.StatusOK, "ok", snap, "")
}

// Health reports how many sessions and connections are live
func (h *RoomHandler) Health(c *gin.Context) {
	var sessions, connections int
	err := h.hub.Call(c.Request.Context(), func(d *Dispatcher) {
		sessions, connections = d.Stats()
	})
	if err != nil {
		standardResponse(c, http.StatusServiceUnavailable, "error", nil, err.Error())
		return
	}

	standardResponse(c, http.StatusOK, "ok", gin.H{
		"sessions":    sessions,
		"connections": connections,
	}, "")
}
