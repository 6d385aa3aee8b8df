package notifier

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"OptionPulse/internal/access"
	"OptionPulse/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub broadcasts signal views to connected websocket clients (dashboards).
// Each connection is projected through the access filter at its viewer's
// tier. Slow clients drop messages rather than stall the broadcast.
type Hub struct {
	subs access.SubscriptionService
	log  zerolog.Logger

	mu      sync.Mutex
	clients map[*hubClient]bool
}

type hubClient struct {
	conn *websocket.Conn
	tier access.Tier
	send chan access.SignalView
}

// NewHub creates a Hub.
func NewHub(subs access.SubscriptionService, log zerolog.Logger) *Hub {
	return &Hub{
		subs:    subs,
		log:     log.With().Str("component", "ws-hub").Logger(),
		clients: make(map[*hubClient]bool),
	}
}

// ServeHTTP upgrades a connection; the viewer id comes from the query
// string and determines the tier for the life of the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	tier := access.TierFree
	if h.subs != nil {
		tier = h.subs.TierFor(r.URL.Query().Get("viewer"))
	}
	c := &hubClient{conn: conn, tier: tier, send: make(chan access.SignalView, 16)}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.log.Info().Str("tier", string(tier)).Msg("ws client connected")

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) writeLoop(c *hubClient) {
	defer h.drop(c)
	for view := range c.send {
		if err := c.conn.WriteJSON(view); err != nil {
			h.log.Warn().Err(err).Msg("ws write failed, dropping client")
			return
		}
	}
}

// readLoop discards inbound frames. The hub is broadcast-only, but the
// connection still needs a reader so close and ping frames are processed
// and a client-initiated close drops the client immediately.
func (h *Hub) readLoop(c *hubClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

// drop unregisters a client and closes its connection. Safe to call more
// than once; the send channel is closed exactly once, under the lock, so
// Broadcast never writes to a closed channel.
func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Broadcast enqueues the tier-appropriate view of a signal to every client.
// Full queues are skipped.
func (h *Hub) Broadcast(sig *model.Signal) {
	full := access.Project(sig, access.TierPremium)
	redacted := access.Project(sig, access.TierFree)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		view := redacted
		if c.tier == access.TierPremium {
			view = full
		}
		select {
		case c.send <- view:
		default:
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.drop(c)
	}
}
