package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/adroste/nowte/board"
)

// Hub fans messages out to every client connected to one document. A
// hub owns the document's live canvas for the duration of the session;
// the canvas does its own locking, the hub only guards the client set.
type Hub struct {
	documentID string
	canvas     *board.Canvas
	log        *slog.Logger
	persist    PersistFunc

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// PersistFunc receives every finalized spline so it can be written back
// to durable storage. It must not block; hand the spline to a queue.
type PersistFunc func(documentID string, brickID board.BrickID, spline board.Spline)

// NewHub creates a hub around an already-loaded canvas. persist may be
// nil for documents that don't need durability (tests).
func NewHub(documentID string, canvas *board.Canvas, log *slog.Logger, persist PersistFunc) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		documentID: documentID,
		canvas:     canvas,
		log:        log.With("document_id", documentID),
		persist:    persist,
		clients:    make(map[*Client]struct{}),
	}
}

// Canvas returns the live canvas this hub serves.
func (h *Hub) Canvas() *board.Canvas { return h.canvas }

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// register adds a client and announces it to the others. The snapshot
// for the joining client is taken by the caller before any of its own
// events can race it.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("client joined", "conn_id", c.connID, "user_id", c.userID, "clients", n)
	h.broadcast(c, &Envelope{Type: TypeUserJoin, UserID: c.userID, Username: c.username})
}

// unregister drops a client, discards its unfinished stroke and tells
// the remaining clients the user left.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if !present {
		return
	}

	// Closing the send channel only after the client has left the set
	// means broadcast can never enqueue into a closed channel.
	c.close()

	h.canvas.DisconnectUser(c.userID)
	h.log.Info("client left", "conn_id", c.connID, "user_id", c.userID, "clients", n)
	h.broadcast(c, &Envelope{Type: TypeUserDisconnect, UserID: c.userID})
}

// broadcast sends env to every client except the originator. A client
// whose send buffer is full is dropped rather than allowed to stall
// the rest of the document.
func (h *Hub) broadcast(from *Client, env *Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("encode broadcast", "type", env.Type, "error", err)
		return
	}

	for _, c := range h.targets(from) {
		if c.trySend(data) {
			continue
		}
		h.log.Warn("dropping stalled client", "conn_id", c.connID, "user_id", c.userID)
		h.unregister(c)
	}
}

// targets snapshots the recipient set so delivery happens without the
// hub lock held.
func (h *Hub) targets(from *Client) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c != from {
			out = append(out, c)
		}
	}
	return out
}
