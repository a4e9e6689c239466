package kitchen

import (
	"context"
	"encoding/json"
	"log/slog"
)

const (
	EventOrders        = "orders"
	EventNewOrder      = "newOrder"
	EventPrepareStatus = "prepareStatus"
)

// Message is one frame pushed to the kitchen console.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type Client struct {
	Send chan []byte
}

func NewClient() *Client {
	return &Client{Send: make(chan []byte, 64)}
}

type frame struct {
	data     []byte
	snapshot bool
}

// Hub fans messages out to every connected console. The latest queue
// snapshot is replayed to consoles as they join. A console that cannot keep
// up is dropped.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan frame
	done       chan struct{}
	snapshot   []byte
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan frame, 16),
		done:       make(chan struct{}),
		log:        log.With("component", "kitchen_hub"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			if h.snapshot != nil {
				h.push(c, h.snapshot)
			}

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}

		case f := <-h.broadcast:
			if f.snapshot {
				h.snapshot = f.data
			}
			for c := range h.clients {
				h.push(c, f.data)
			}
		}
	}
}

func (h *Hub) push(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		h.log.Warn("Kitchen console too slow, disconnecting")
		close(c.Send)
		delete(h.clients, c)
	}
}

// Register adds a console. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Broadcast(msg Message) {
	h.send(msg, false)
}

// Publish broadcasts the full live queue and keeps it for late joiners.
func (h *Hub) Publish(queue interface{}) {
	h.send(Message{Event: EventOrders, Payload: queue}, true)
}

func (h *Hub) send(msg Message, snapshot bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("Failed to encode kitchen message", "event", msg.Event, "error", err)
		return
	}
	select {
	case h.broadcast <- frame{data: data, snapshot: snapshot}:
	case <-h.done:
	}
}
