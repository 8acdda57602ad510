package board

import (
	"sort"
	"sync"
)

// Canvas aggregates all bricks of one document. It routes drawing events
// to the owning brick by spatial coordinate and assembles snapshots for
// late-joining clients.
//
// The canvas pins each user's active stroke to the brick the begin
// coordinate routed to, so every subsequent append and the final end
// land on the same brick regardless of where the pointer wanders.
// Mutating operations report the affected BrickID so a broadcasting
// layer can fan the change out without re-deriving state.
type Canvas struct {
	documentID string

	mu     sync.RWMutex
	bricks map[BrickID]*Brick
	active map[string]BrickID
}

// NewCanvas creates an empty canvas for the given document.
func NewCanvas(documentID string) *Canvas {
	return &Canvas{
		documentID: documentID,
		bricks:     make(map[BrickID]*Brick),
		active:     make(map[string]BrickID),
	}
}

// DocumentID returns the document this canvas belongs to.
func (c *Canvas) DocumentID() string { return c.documentID }

// BeginPath starts a stroke for userID in the brick that at routes to.
// Returns *ErrConflictingPath if the user already has an active stroke
// anywhere on the canvas.
func (c *Canvas) BeginPath(userID string, style StrokeStyle, at Point) (BrickID, error) {
	if err := validPoints([]Point{at}); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[userID]; ok {
		return "", &ErrConflictingPath{UserID: userID}
	}
	id := BrickAt(at)
	b, ok := c.bricks[id]
	if !ok {
		b = NewBrick(id)
	}
	if err := b.BeginPath(userID, style); err != nil {
		return "", err
	}
	// Register only after the brick accepted the path, so a validation
	// failure leaves no half-created brick behind.
	c.bricks[id] = b
	c.active[userID] = id
	return id, nil
}

// AddPathPoints appends points to userID's active stroke. The points
// land on the brick pinned at BeginPath even if they cross its boundary;
// callers partition long strokes before they reach the engine.
func (c *Canvas) AddPathPoints(userID string, points []Point) (BrickID, error) {
	c.mu.RLock()
	id, ok := c.active[userID]
	b := c.bricks[id]
	c.mu.RUnlock()

	if !ok || b == nil {
		return "", &ErrNoActivePath{UserID: userID}
	}
	if err := b.AddPathPoints(userID, points); err != nil {
		return "", err
	}
	return id, nil
}

// EndPath finalizes userID's active stroke into the given spline and
// releases the brick pin.
func (c *Canvas) EndPath(userID string, spline Spline) (BrickID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.active[userID]
	b := c.bricks[id]
	if !ok || b == nil {
		return "", &ErrNoActivePath{UserID: userID}
	}
	if err := b.EndPath(userID, spline); err != nil {
		return "", err
	}
	delete(c.active, userID)
	return id, nil
}

// AddSpline appends a persisted spline to the given brick, creating the
// brick if needed. Used when loading a document from storage.
func (c *Canvas) AddSpline(id BrickID, spline Spline) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bricks[id]
	if !ok {
		b = NewBrick(id)
	}
	if err := b.AddSpline(spline); err != nil {
		return err
	}
	c.bricks[id] = b
	return nil
}

// DisconnectUser discards userID's in-progress stroke wherever it lives.
// A user's pointer may be anywhere, so the disconnect fans out to every
// brick. Idempotent and infallible.
func (c *Canvas) DisconnectUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.active, userID)
	for _, b := range c.bricks {
		b.DisconnectUser(userID)
	}
}

// FullSnapshot assembles the state a newly joining client needs. Each
// brick is copied atomically with respect to its own mutations;
// cross-brick atomicity is not required since bricks are independent.
// Bricks are ordered by ID for deterministic output.
func (c *Canvas) FullSnapshot() CanvasSnapshot {
	c.mu.RLock()
	bricks := make([]*Brick, 0, len(c.bricks))
	for _, b := range c.bricks {
		bricks = append(bricks, b)
	}
	c.mu.RUnlock()

	sort.Slice(bricks, func(i, j int) bool { return bricks[i].ID() < bricks[j].ID() })

	snap := CanvasSnapshot{Bricks: make([]BrickSnapshot, 0, len(bricks))}
	for _, b := range bricks {
		snap.Bricks = append(snap.Bricks, b.Snapshot())
	}
	return snap
}
