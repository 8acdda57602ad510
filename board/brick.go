package board

import "sync"

// Path is a mutable, in-progress sequence of points owned by exactly one
// user. It lives in a brick's tempPaths map from begin to end (or
// disconnect) and is never shared outside the brick's critical section.
type Path struct {
	OwnerID string
	Style   StrokeStyle
	Points  []Point
}

// Brick is the unit of shared canvas state: one bounded region holding
// the in-progress path of each user drawing inside it and the ordered,
// append-only list of finalized splines.
//
// Every operation either fully succeeds or has no effect. A single mutex
// serializes all mutations; Snapshot deep-copies under the same lock so
// concurrent readers never observe torn state.
type Brick struct {
	id BrickID

	mu        sync.Mutex
	tempPaths map[string]*Path
	splines   []Spline
}

// NewBrick creates an empty brick for the given region.
func NewBrick(id BrickID) *Brick {
	return &Brick{
		id:        id,
		tempPaths: make(map[string]*Path),
	}
}

// ID returns the brick's stable region identifier.
func (b *Brick) ID() BrickID { return b.id }

// BeginPath starts a new in-progress path for userID. Returns
// *ErrConflictingPath if the user already has one: the existing stroke
// must be ended or aborted explicitly, never replaced silently.
func (b *Brick) BeginPath(userID string, style StrokeStyle) error {
	if userID == "" {
		return &ErrInvalidArgument{Reason: "empty user id"}
	}
	if err := validStyle(style); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tempPaths[userID]; ok {
		return &ErrConflictingPath{UserID: userID}
	}
	b.tempPaths[userID] = &Path{OwnerID: userID, Style: style}
	return nil
}

// AddPathPoints appends points to userID's active path in call order.
// The point sequence is an append-only log for the path's lifetime;
// points are never reordered, deduplicated or replaced. Returns
// *ErrNoActivePath if the user has no path — points are never silently
// attached to a path that was not begun.
func (b *Brick) AddPathPoints(userID string, points []Point) error {
	if err := validPoints(points); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.tempPaths[userID]
	if !ok {
		return &ErrNoActivePath{UserID: userID}
	}
	p.Points = append(p.Points, points...)
	return nil
}

// EndPath finalizes userID's active path: the temp entry is removed and
// the given spline is appended to the brick's permanent shapes, in one
// critical section. The spline is assumed already fitted from the path's
// points by the caller.
func (b *Brick) EndPath(userID string, spline Spline) error {
	if err := validStyle(spline.Style); err != nil {
		return err
	}
	if err := validPoints(spline.Points); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tempPaths[userID]; !ok {
		return &ErrNoActivePath{UserID: userID}
	}
	delete(b.tempPaths, userID)
	b.splines = append(b.splines, cloneSpline(spline))
	return nil
}

// AddSpline appends a finalized spline without an in-progress path,
// used when loading persisted shapes into a fresh brick.
func (b *Brick) AddSpline(spline Spline) error {
	if err := validStyle(spline.Style); err != nil {
		return err
	}
	if err := validPoints(spline.Points); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.splines = append(b.splines, cloneSpline(spline))
	return nil
}

// DisconnectUser discards userID's in-progress path, if any. Idempotent
// and infallible: network failures must never be compounded by cleanup
// failures. The aborted stroke produces no spline.
func (b *Brick) DisconnectUser(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tempPaths, userID)
}

// Snapshot returns a deep copy of the brick's visible state. Safe to
// call concurrently with mutating operations.
func (b *Brick) Snapshot() BrickSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := BrickSnapshot{
		ID:      b.id,
		Paths:   make([]PathSnapshot, 0, len(b.tempPaths)),
		Splines: make([]Spline, 0, len(b.splines)),
	}
	for _, p := range b.tempPaths {
		snap.Paths = append(snap.Paths, PathSnapshot{
			Style:  p.Style,
			Points: append([]Point(nil), p.Points...),
		})
	}
	for _, s := range b.splines {
		snap.Splines = append(snap.Splines, cloneSpline(s))
	}
	return snap
}

func cloneSpline(s Spline) Spline {
	return Spline{
		Style:  s.Style,
		Points: append([]Point(nil), s.Points...),
	}
}
