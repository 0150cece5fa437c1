package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"
)

const topicAll = "*"

// Client represents a connected WebSocket subscriber
type Client struct {
	conn  *websocket.Conn
	topic string
	send  chan []byte
}

// Hub fans enriched events out to dashboard WebSocket clients. Clients
// subscribe to everything, to one vehicle or to one tracker.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool // topic -> set of clients
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
	}
}

func vehicleTopic(id string) string { return "vehicle:" + id }
func trackerTopic(id string) string { return "tracker:" + id }

func topicFor(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("vehicle_id"); v != "" {
		return vehicleTopic(v)
	}
	if t := q.Get("tracker_ident"); t != "" {
		return trackerTopic(t)
	}
	return topicAll
}

// ServeWS handles WebSocket upgrade and client lifecycle.
// URL: /ws[?vehicle_id=001|?tracker_ident=9171006261]
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	topic := topicFor(r)

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		client := &Client{
			conn:  conn,
			topic: topic,
			send:  make(chan []byte, 256),
		}

		h.register(client)
		defer h.unregister(client)

		slog.Info("client connected",
			"topic", topic,
			"remote", conn.Request().RemoteAddr)

		// Write pump
		go func() {
			for msg := range client.send {
				if _, err := conn.Write(msg); err != nil {
					return
				}
			}
		}()

		// Read pump (for close detection)
		buf := make([]byte, 512)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	})

	wsHandler.ServeHTTP(w, r)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.topic] == nil {
		h.clients[c.topic] = make(map[*Client]bool)
	}
	h.clients[c.topic][c] = true
	hubClients.Inc()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[c.topic]; ok {
		if _, ok := clients[c]; !ok {
			return
		}
		delete(clients, c)
		close(c.send)
		hubClients.Dec()
		if len(clients) == 0 {
			delete(h.clients, c.topic)
		}
	}
	slog.Info("client disconnected", "topic", c.topic)
}

// Publish sends the event to every client subscribed to all events, to its
// vehicle or to its tracker. Slow clients miss the message.
func (h *Hub) Publish(_ context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	evt := env.Data
	topics := []string{topicAll, trackerTopic(evt.TrackerIdent)}
	if evt.VehicleID != nil {
		topics = append(topics, vehicleTopic(*evt.VehicleID))
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, topic := range topics {
		for client := range h.clients[topic] {
			select {
			case client.send <- data:
			default:
				slog.Warn("client buffer full", "topic", topic)
			}
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// CloseAll closes all client connections
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
			client.conn.Close()
			hubClients.Dec()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}
