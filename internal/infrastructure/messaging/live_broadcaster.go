package messaging

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
)

// LiveClient represents a single connected live-dashboard client.
type LiveClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// LiveBroadcaster pushes tracked events to all connected dashboard
// websockets. A full client buffer drops the message rather than blocking
// the tracking path.
type LiveBroadcaster struct {
	clients    map[*LiveClient]bool
	register   chan *LiveClient
	unregister chan *LiveClient
	events     chan []byte
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewLiveBroadcaster creates a broadcaster instance.
func NewLiveBroadcaster(logger *logging.ChanneledLogger) *LiveBroadcaster {
	return &LiveBroadcaster{
		clients:    make(map[*LiveClient]bool),
		register:   make(chan *LiveClient),
		unregister: make(chan *LiveClient),
		events:     make(chan []byte, 64),
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *LiveBroadcaster) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.Realtime().Debug("Live client registered", "clients", b.ClientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Realtime().Debug("Live client unregistered", "clients", b.ClientCount())

		case message := <-b.events:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop rather than stall tracking.
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Register adds a client to the broadcast set.
func (b *LiveBroadcaster) Register(client *LiveClient) {
	b.register <- client
}

// Unregister removes a client from the broadcast set.
func (b *LiveBroadcaster) Unregister(client *LiveClient) {
	b.unregister <- client
}

// BroadcastEvent fans one tracked event out to every connected client.
func (b *LiveBroadcaster) BroadcastEvent(event *analytics.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Realtime().Error("Failed to encode live event", "error", err.Error(), "eventId", event.ID)
		return
	}
	select {
	case b.events <- payload:
	default:
		// Broadcast queue full; live feed is best-effort.
	}
}

// ClientCount returns the number of connected live clients.
func (b *LiveBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// WritePump drains a client's send channel onto its websocket connection.
func (c *LiveClient) WritePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
