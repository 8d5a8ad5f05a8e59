package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/risingpath/pulse-go/internal/infrastructure/messaging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/pkg/config"
)

// LiveHandlers contains the websocket live event feed handler
type LiveHandlers struct {
	broadcaster *messaging.LiveBroadcaster
	upgrader    websocket.Upgrader
	logger      *logging.ChanneledLogger
}

// NewLiveHandlers creates live feed handlers with injected dependencies
func NewLiveHandlers(broadcaster *messaging.LiveBroadcaster, logger *logging.ChanneledLogger) *LiveHandlers {
	return &LiveHandlers{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range config.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
		logger: logger,
	}
}

// GetLive handles GET /api/v1/analytics/live - upgrades to a websocket that
// streams every tracked event as it arrives
func (h *LiveHandlers) GetLive(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Realtime().Warn("Websocket upgrade failed", "error", err.Error(), "remote", c.ClientIP())
		return
	}

	client := &messaging.LiveClient{
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	h.broadcaster.Register(client)
	h.logger.Realtime().Info("Live feed client connected", "remote", c.ClientIP(), "clients", h.broadcaster.ClientCount())

	go client.WritePump()

	// Read loop exists only to detect disconnects; inbound frames are
	// discarded.
	go func() {
		defer h.broadcaster.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.logger.Realtime().Debug("Live feed client disconnected", "remote", c.ClientIP())
				return
			}
		}
	}()
}
