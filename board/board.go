// Package board implements the canvas synchronization engine for
// collaborative documents.
//
// A document's canvas is partitioned into fixed-size bricks. Each brick
// holds the in-progress path of every user currently drawing inside it
// plus the ordered list of finalized splines. All concurrency control is
// scoped to a single brick: operations on one brick are serialized,
// operations on different bricks run fully in parallel.
//
// A stroke never spans bricks at this layer. The Canvas pins each user's
// stroke to the brick the begin coordinate routed to; callers partition
// long strokes before they reach the engine.
package board

import (
	"fmt"
	"math"
)

// BrickSize is the edge length of one brick in canvas units.
const BrickSize = 1024.0

// BrickID identifies one grid cell of a document's canvas ("col:row").
type BrickID string

// Point is a single canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeStyle describes how a path is rendered. Immutable once attached
// to a path.
type StrokeStyle struct {
	Color     string  `json:"color"`
	Thickness float64 `json:"thickness"`
}

// Spline is an immutable finalized vector shape derived from a completed
// path. Curve fitting happens client-side; the engine only coordinates
// when a path's life ends and how it becomes permanent state.
type Spline struct {
	Style  StrokeStyle `json:"style"`
	Points []Point     `json:"points"`
}

// PathSnapshot is the read-only view of an in-progress path as exposed
// to late-joining clients.
type PathSnapshot struct {
	Style  StrokeStyle `json:"style"`
	Points []Point     `json:"points"`
}

// BrickSnapshot is a point-in-time copy of one brick's visible state.
// Spline order is append order and is preserved exactly; path order is
// unspecified (active strokes form a key-less set).
type BrickSnapshot struct {
	ID      BrickID        `json:"id"`
	Paths   []PathSnapshot `json:"paths"`
	Splines []Spline       `json:"splines"`
}

// CanvasSnapshot is the full state transferred to a newly joining client.
type CanvasSnapshot struct {
	Bricks []BrickSnapshot `json:"bricks"`
}

// BrickAt maps a canvas coordinate to its brick. Pure and stable: the
// same coordinate always routes to the same brick.
func BrickAt(p Point) BrickID {
	col := int(math.Floor(p.X / BrickSize))
	row := int(math.Floor(p.Y / BrickSize))
	return BrickID(fmt.Sprintf("%d:%d", col, row))
}

func validStyle(s StrokeStyle) error {
	if s.Color == "" {
		return &ErrInvalidArgument{Reason: "stroke style has no color"}
	}
	if s.Thickness <= 0 || math.IsNaN(s.Thickness) || math.IsInf(s.Thickness, 0) {
		return &ErrInvalidArgument{Reason: fmt.Sprintf("stroke thickness %v out of range", s.Thickness)}
	}
	return nil
}

func validPoints(pts []Point) error {
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return &ErrInvalidArgument{Reason: "point coordinate is not finite"}
		}
	}
	return nil
}
