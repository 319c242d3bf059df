package websocket

import (
	"encoding/json"
	"sync"

	"github.com/creamloft/creamloft-backend/internal/app/model"
	"github.com/creamloft/creamloft-backend/pkg/logger"
)

// Event types pushed over the admin order feed.
const (
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

// OrderEvent is the wire format of one feed message.
type OrderEvent struct {
	Type           string            `json:"type"`
	OrderID        uint              `json:"order_id"`
	UserID         uint              `json:"user_id"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previous_status,omitempty"`
	TotalAmount    float64           `json:"total_amount"`
	ItemCount      int               `json:"item_count"`
}

// Client is one connected admin session.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub fans order events out to every connected admin. A slow client whose
// send buffer fills is disconnected rather than blocking the others.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Run processes registrations and broadcasts until the process exits.
// Call it once from a dedicated goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Order feed client registered", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Order feed client unregistered", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Buffer full, drop the laggard
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register attaches a client to the feed.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister detaches a client from the feed.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) publish(event OrderEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode order event", err, map[string]interface{}{
			"type":     event.Type,
			"order_id": event.OrderID,
		})
		return
	}

	select {
	case h.broadcast <- message:
	default:
		logger.Warn("Order feed broadcast buffer full, dropping event", map[string]interface{}{
			"type":     event.Type,
			"order_id": event.OrderID,
		})
	}
}

// NotifyOrderCreated pushes a placement event to the feed.
func (h *Hub) NotifyOrderCreated(order *model.Order) {
	h.publish(OrderEvent{
		Type:        EventOrderCreated,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.OrderItems),
	})
}

// NotifyOrderStatusChanged pushes a status transition event to the feed.
func (h *Hub) NotifyOrderStatusChanged(order *model.Order, previous model.OrderStatus) {
	h.publish(OrderEvent{
		Type:           EventOrderStatusChanged,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		ItemCount:      len(order.OrderItems),
	})
}
