// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// WebSocketClient represents a connected client watching one analysis run
type WebSocketClient struct {
	conn         *websocket.Conn
	send         chan []byte
	runID        string
	natsConn     *nats.Conn
	subscription *nats.Subscription
	mu           sync.Mutex
	closed       bool
	closeOnce    sync.Once
}

// trySend queues a message for the write pump. Messages are dropped when the
// client is closed or its buffer is full; events are advisory, not durable.
func (c *WebSocketClient) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		log.Debug().Str("run_id", c.runID).Msg("Dropping event for slow WebSocket client")
	}
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// AnalysisWebSocketHandler streams run lifecycle events to clients. Each
// client gets the events published on the run's topic; clients only watch, so
// inbound messages beyond control frames are discarded.
func AnalysisWebSocketHandler(natsConn *nats.Conn, topicPrefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "id")
		if runID == "" {
			http.Error(w, "Missing analysis ID", http.StatusBadRequest)
			return
		}

		if natsConn == nil {
			http.Error(w, "Event streaming is not enabled", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to upgrade to WebSocket")
			return
		}

		client := &WebSocketClient{
			conn:     conn,
			send:     make(chan []byte, 256),
			runID:    runID,
			natsConn: natsConn,
		}

		go client.writePump()
		go client.readPump()

		if err := client.subscribeToRun(topicPrefix); err != nil {
			log.Warn().Err(err).Str("run_id", runID).Msg("Failed to subscribe to run events")
			client.closeConnection()
			return
		}

		welcomeMsg := map[string]interface{}{
			"type":   "welcome",
			"run_id": runID,
			"time":   time.Now().UTC(),
		}

		welcomeJSON, _ := json.Marshal(welcomeMsg)
		client.trySend(welcomeJSON)

		log.Debug().Str("run_id", runID).Msg("New WebSocket connection")
	}
}

// readPump consumes the WebSocket connection so control frames are handled
// and a closed peer is noticed.
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("run_id", c.runID).Msg("WebSocket read error")
			}
			break
		}
	}
}

// writePump pumps events to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// subscribeToRun subscribes to the run's event topic
func (c *WebSocketClient) subscribeToRun(topicPrefix string) error {
	topic := fmt.Sprintf("%s.run.%s", topicPrefix, c.runID)
	sub, err := c.natsConn.Subscribe(topic, func(msg *nats.Msg) {
		c.trySend(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	c.subscription = sub

	return nil
}

// closeConnection closes the WebSocket connection and cleans up resources.
// Both pumps call it, so it runs once.
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		if c.subscription != nil {
			c.subscription.Unsubscribe()
		}

		c.conn.Close()

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		log.Debug().Str("run_id", c.runID).Msg("WebSocket connection closed")
	})
}
