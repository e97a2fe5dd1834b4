package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// relayChannel carries events between instances sharing one Redis.
const relayChannel = "pattern_sphere_events"

// Hub fans committed catalog events out to every connected feed client.
// It implements events.Publisher.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Optional cross-instance relay
	rdb     *redis.Client
	origin  string
	relayed events.Publisher

	logger logger.ILogger
}

type relayMessage struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
	}
}

// OnRelay hands every event received from another instance to p, after it
// has been delivered to local clients. Call it before Run.
func (h *Hub) OnRelay(p events.Publisher) {
	h.relayed = p
}

// Run serves register and unregister requests until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"subject": client.Subject})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"subject": client.Subject})
			}
			h.mu.Unlock()
		}
	}
}

// Count reports the connected clients on this instance.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	data, err := events.Marshal(event)
	if err != nil {
		return err
	}

	h.deliver(data)

	if h.rdb != nil {
		payload, err := json.Marshal(relayMessage{Origin: h.origin, Message: data})
		if err != nil {
			return err
		}
		return h.rdb.Publish(ctx, relayChannel, payload).Err()
	}
	return nil
}

// deliver never blocks: a client whose buffer is full is dropped.
func (h *Hub) deliver(data []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"subject": client.Subject})
		go h.drop(client)
	}
}

// drop asks Run to unregister c. It gives up once Run has returned.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.receive(ctx, []byte(msg.Payload))
		}
	}
}

func (h *Hub) receive(ctx context.Context, raw []byte) {
	var payload relayMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Malformed relay message", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.origin {
		return
	}
	h.deliver(payload.Message)

	if h.relayed == nil {
		return
	}
	event, err := events.Decode(payload.Message)
	if err != nil {
		h.logger.Warn("Hub", "Undecodable relayed event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := h.relayed.Publish(ctx, event); err != nil {
		h.logger.Warn("Hub", "Relayed event handler failed", map[string]interface{}{"type": event.Type, "error": err.Error()})
	}
}
