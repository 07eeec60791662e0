package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"bet-ledger/internal/observability"
)

// HubOptions contains configuration for creating a Hub.
type HubOptions struct {
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	// AllowedOrigins lists origins accepted on upgrade. Empty or "*" accepts all.
	AllowedOrigins []string
}

// Hub maintains the set of active clients and broadcasts events to them.
// Clients are only touched from the Run goroutine.
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}

	upgrader websocket.Upgrader
	logger   zerolog.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewHub creates a new Hub. Call Run to start it.
func NewHub(opts HubOptions) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		logger:     opts.Logger.With().Str("component", "notify").Logger(),
		metrics:    opts.Metrics,
		now:        time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

// Run starts the hub's main loop and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.logger.Info().Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.SetFeedClients(len(h.clients))
			h.logger.Debug().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("client connected")

		case c := <-h.unregister:
			h.remove(c)

		case e := <-h.broadcast:
			h.deliver(e)

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// Publish queues e for all clients. Events are dropped when the queue is
// full or the hub has stopped.
func (h *Hub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = h.now().UTC()
	}
	select {
	case h.broadcast <- e:
	case <-h.done:
	default:
		h.logger.Warn().Str("type", e.Type).Msg("broadcast buffer full, dropping event")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// ServeHTTP upgrades the request and attaches a new client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(uuid.New().String(), conn, h)
	h.Register(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.SetFeedClients(len(h.clients))
	h.logger.Debug().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("client disconnected")
}

func (h *Hub) deliver(e Event) {
	dropped := 0
	for c := range h.clients {
		if !c.trySend(e) {
			// Client buffer full - too slow, disconnect
			dropped++
			h.remove(c)
		}
	}
	h.metrics.RecordFeedBroadcast(dropped)
	if dropped > 0 {
		h.logger.Warn().Int("dropped", dropped).Str("type", e.Type).Msg("slow clients disconnected")
	}
}

func (h *Hub) shutdown() {
	h.logger.Info().Int("clients", len(h.clients)).Msg("shutting down hub")
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.metrics.SetFeedClients(0)
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
