package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"advisingdash/internal/config"
	"advisingdash/internal/infrastructure"
	"advisingdash/internal/services"
)

// Message types sent by the hub in addition to the dataset events.
const (
	MessageTypeConnection = "connection"
	MessageTypeHeartbeat  = "heartbeat"
)

// Message is the envelope of every frame pushed to browsers.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DatasetNotice is the payload of dataset.added and dataset.removed messages.
type DatasetNotice struct {
	services.Dataset
	Reason string `json:"reason,omitempty"`
}

type outbound struct {
	msgType string
	data    []byte
}

// Hub fans dataset events out to connected dashboard pages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	quit chan struct{}
	done chan struct{}

	mu      sync.RWMutex
	running bool
	stopped bool

	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics
}

// NewHub creates a hub. Start must be called before clients are served.
func NewHub(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket_hub")),
		metrics:    metrics,
	}
}

// Start runs the hub loop in a goroutine. Calling it again is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
	h.logger.Info("websocket hub started")
}

// Stop closes every client and waits for the loop to exit. A stopped hub
// cannot be restarted.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	wasRunning := h.running
	h.running = false
	close(h.quit)
	h.mu.Unlock()

	if wasRunning {
		<-h.done
	}
	h.logger.Info("websocket hub stopped")
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.RecordWebSocketClients(ctx, 1)

			h.logger.Debug("client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			if data, err := encode(Message{
				Type:      MessageTypeConnection,
				Data:      map[string]any{"client_id": client.id, "app": config.AppName},
				Timestamp: time.Now(),
			}); err == nil {
				h.deliver(ctx, client, outbound{MessageTypeConnection, data})
			}

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(ctx, client)
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client unregistered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count))

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			for _, c := range targets {
				h.deliver(ctx, c, msg)
			}

		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				h.remove(ctx, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// deliver queues msg for one client, dropping clients whose buffer is full.
// It runs on the hub goroutine only.
func (h *Hub) deliver(ctx context.Context, c *Client, msg outbound) {
	select {
	case c.send <- msg.data:
		h.metrics.RecordWebSocketMessage(ctx, msg.msgType)
	default:
		h.logger.Warn("client send buffer full, disconnecting",
			slog.String("client_id", c.id))
		h.mu.Lock()
		h.remove(ctx, c)
		h.mu.Unlock()
	}
}

// remove must be called with mu held.
func (h *Hub) remove(ctx context.Context, c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.RecordWebSocketClients(ctx, -1)
}

// Register adds a client. It reports false once the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Broadcast queues msg for every client. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Broadcast(msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := encode(msg)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- outbound{msg.Type, data}:
		return nil
	case <-h.quit:
		return nil
	default:
		h.logger.Warn("broadcast queue full, dropping message", slog.String("type", msg.Type))
		return nil
	}
}

// ObserveDataset forwards a store event to every client. It has the
// services.Observer signature.
func (h *Hub) ObserveDataset(ev services.DatasetEvent) {
	err := h.Broadcast(Message{
		Type: ev.Type,
		Data: DatasetNotice{Dataset: ev.Dataset, Reason: ev.Reason},
	})
	if err != nil {
		h.logger.Error("failed to broadcast dataset event",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msg.Type, err)
	}
	return data, nil
}
