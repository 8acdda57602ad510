package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adroste/nowte/board"
)

// ConnSettings tunes every websocket connection.
type ConnSettings struct {
	SendBuffer   int
	PingInterval time.Duration
	PongTimeout  time.Duration
	MaxMessage   int64
	WriteTimeout time.Duration
}

func (s *ConnSettings) defaults() {
	if s.SendBuffer <= 0 {
		s.SendBuffer = 64
	}
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	if s.PongTimeout <= 0 {
		s.PongTimeout = 60 * time.Second
	}
	if s.MaxMessage <= 0 {
		s.MaxMessage = 256 << 10
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 10 * time.Second
	}
}

// Client is one websocket connection bound to a user and a document.
// The read pump applies incoming events to the canvas; the write pump
// drains the send buffer. All writes to the conn happen on the write
// pump goroutine.
type Client struct {
	connID   string
	userID   string
	username string

	hub      *Hub
	conn     *websocket.Conn
	settings ConnSettings
	log      *slog.Logger

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	cursorMu   sync.Mutex
	lastCursor board.Point
}

// NewClient wraps an upgraded connection. Call Run to start serving.
func NewClient(connID, userID, username string, hub *Hub, conn *websocket.Conn, settings ConnSettings) *Client {
	settings.defaults()
	return &Client{
		connID:   connID,
		userID:   userID,
		username: username,
		hub:      hub,
		conn:     conn,
		settings: settings,
		log:      hub.log.With("conn_id", connID, "user_id", userID),
		send:     make(chan []byte, settings.SendBuffer),
	}
}

// LastCursor returns the most recent cursor position reported by this
// client.
func (c *Client) LastCursor() board.Point {
	c.cursorMu.Lock()
	defer c.cursorMu.Unlock()
	return c.lastCursor
}

// Run registers the client, sends the document snapshot and serves the
// connection until it drops. It blocks until the read pump exits.
func (c *Client) Run() {
	c.hub.register(c)
	defer c.hub.unregister(c)

	// Snapshot after registration so no event between the two is lost:
	// anything applied after this point reaches the client as a
	// broadcast.
	snap := c.hub.canvas.FullSnapshot()
	c.enqueue(&Envelope{Type: TypeDocInit, UserID: c.userID, Bricks: snap.Bricks})

	go c.writePump()
	c.readPump()
}

// close releases the send buffer, which stops the write pump. Only the
// hub calls it, after the client has left the client set, so nothing
// can enqueue into a closed channel.
func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// trySend enqueues one encoded frame. Returns false when the client is
// closed or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// enqueue marshals env into the send buffer. Returns false if the
// buffer is full.
func (c *Client) enqueue(env *Envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		c.log.Error("encode frame", "type", env.Type, "error", err)
		return false
	}
	return c.trySend(data)
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(c.settings.MaxMessage)
	c.conn.SetReadDeadline(time.Now().Add(c.settings.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.settings.PongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("connection dropped", "error", err)
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.settings.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle applies one client frame to the canvas and fans the accepted
// change out. Rejections go back to the sender only.
func (c *Client) handle(data []byte) {
	env, err := decodeEnvelope(data)
	if err != nil {
		c.enqueue(errorEnvelope(CodeBadMessage, err.Error()))
		return
	}

	switch env.Type {
	case TypePathBegin:
		brickID, err := c.hub.canvas.BeginPath(c.userID, *env.StrokeStyle, *env.Position)
		if err != nil {
			c.enqueue(errorEnvelope(errorCode(err), err.Error()))
			return
		}
		c.hub.broadcast(c, &Envelope{
			Type: TypePathBegin, UserID: c.userID, BrickID: brickID,
			StrokeStyle: env.StrokeStyle, Position: env.Position,
		})

	case TypePathAddPoints:
		brickID, err := c.hub.canvas.AddPathPoints(c.userID, env.Points)
		if err != nil {
			c.enqueue(errorEnvelope(errorCode(err), err.Error()))
			return
		}
		c.hub.broadcast(c, &Envelope{
			Type: TypePathAddPoints, UserID: c.userID, BrickID: brickID, Points: env.Points,
		})

	case TypePathEnd:
		brickID, err := c.hub.canvas.EndPath(c.userID, *env.Spline)
		if err != nil {
			c.enqueue(errorEnvelope(errorCode(err), err.Error()))
			return
		}
		c.hub.broadcast(c, &Envelope{
			Type: TypePathEnd, UserID: c.userID, BrickID: brickID, Spline: env.Spline,
		})
		if c.hub.persist != nil {
			c.hub.persist(c.hub.documentID, brickID, *env.Spline)
		}

	case TypeCursorMove:
		c.cursorMu.Lock()
		c.lastCursor = *env.Position
		c.cursorMu.Unlock()
		c.hub.broadcast(c, &Envelope{
			Type: TypeCursorMove, UserID: c.userID, Position: env.Position,
		})
	}
}
