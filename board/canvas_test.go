package board

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestBrickAtStable(t *testing.T) {
	// WHAT: BrickAt maps coordinates to grid cells deterministically,
	// including negative coordinates.
	// WHY: Every append for an active path must resolve exactly like the
	// begin did, or per-brick coordination breaks down.
	cases := []struct {
		p    Point
		want BrickID
	}{
		{Point{0, 0}, "0:0"},
		{Point{BrickSize - 1, BrickSize - 1}, "0:0"},
		{Point{BrickSize, 0}, "1:0"},
		{Point{0, BrickSize * 2}, "0:2"},
		{Point{-1, -1}, "-1:-1"},
		{Point{-BrickSize, 0}, "-1:0"},
	}
	for _, tc := range cases {
		if got := BrickAt(tc.p); got != tc.want {
			t.Errorf("BrickAt(%v): got %s, want %s", tc.p, got, tc.want)
		}
		if again := BrickAt(tc.p); again != BrickAt(tc.p) {
			t.Errorf("BrickAt(%v) not stable", tc.p)
		}
	}
}

func TestCanvasRoutesToBeginBrick(t *testing.T) {
	// WHAT: Appends and the final end land on the brick the begin
	// coordinate routed to, even when later points cross the boundary.
	// WHY: A stroke never spans bricks at this layer; the canvas pins it.
	c := NewCanvas("doc-1")

	id, err := c.BeginPath("alice", redStyle(), Point{10, 10})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if id != "0:0" {
		t.Fatalf("begin brick: got %s, want 0:0", id)
	}

	// Points far outside brick 0:0 still land on it.
	appendID, err := c.AddPathPoints("alice", []Point{{BrickSize * 3, BrickSize * 3}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if appendID != id {
		t.Errorf("append brick: got %s, want %s", appendID, id)
	}

	endID, err := c.EndPath("alice", Spline{Style: redStyle(), Points: []Point{{10, 10}}})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if endID != id {
		t.Errorf("end brick: got %s, want %s", endID, id)
	}

	snap := c.FullSnapshot()
	if len(snap.Bricks) != 1 || snap.Bricks[0].ID != id {
		t.Fatalf("snapshot bricks: %+v", snap.Bricks)
	}
	if len(snap.Bricks[0].Splines) != 1 {
		t.Errorf("splines: got %d, want 1", len(snap.Bricks[0].Splines))
	}
}

func TestCanvasDoubleBeginAcrossBricks(t *testing.T) {
	// WHAT: A second begin for the same user is rejected even when it
	// targets a different brick.
	// WHY: One active stroke per user is a canvas-wide invariant, not a
	// per-brick one.
	c := NewCanvas("doc-1")
	if _, err := c.BeginPath("alice", redStyle(), Point{0, 0}); err != nil {
		t.Fatal(err)
	}

	_, err := c.BeginPath("alice", redStyle(), Point{BrickSize * 5, 0})
	var conflict *ErrConflictingPath
	if !errors.As(err, &conflict) {
		t.Fatalf("error: got %v, want ErrConflictingPath", err)
	}
}

func TestCanvasAppendWithoutBegin(t *testing.T) {
	// WHAT: Appending with no active stroke fails with ErrNoActivePath
	// and creates no brick.
	// WHY: Protocol violations must not materialize state.
	c := NewCanvas("doc-1")

	_, err := c.AddPathPoints("carol", []Point{{5, 5}})
	var noPath *ErrNoActivePath
	if !errors.As(err, &noPath) {
		t.Fatalf("error: got %v, want ErrNoActivePath", err)
	}
	if snap := c.FullSnapshot(); len(snap.Bricks) != 0 {
		t.Errorf("bricks created by failed append: %+v", snap.Bricks)
	}
}

func TestCanvasDisconnectFansOut(t *testing.T) {
	// WHAT: DisconnectUser clears the user's stroke and pin; a new begin
	// afterwards succeeds. Twice in a row ends in the same state as once.
	// WHY: The disconnect is the cancellation primitive and must be
	// idempotent across all bricks.
	c := NewCanvas("doc-1")
	c.BeginPath("bob", redStyle(), Point{0, 0})
	c.AddPathPoints("bob", []Point{{1, 1}})

	c.DisconnectUser("bob")
	c.DisconnectUser("bob")

	snap := c.FullSnapshot()
	for _, b := range snap.Bricks {
		if len(b.Paths) != 0 {
			t.Errorf("brick %s still has paths after disconnect", b.ID)
		}
		if len(b.Splines) != 0 {
			t.Errorf("aborted stroke produced a spline in brick %s", b.ID)
		}
	}

	if _, err := c.BeginPath("bob", redStyle(), Point{0, 0}); err != nil {
		t.Errorf("begin after disconnect: %v", err)
	}
}

func TestCanvasEndClearsPin(t *testing.T) {
	// WHAT: After EndPath the user can begin a fresh stroke in another
	// brick.
	// WHY: The active-brick pin exists only for the stroke's lifetime.
	c := NewCanvas("doc-1")
	c.BeginPath("alice", redStyle(), Point{0, 0})
	c.EndPath("alice", Spline{Style: redStyle(), Points: []Point{{0, 0}}})

	id, err := c.BeginPath("alice", redStyle(), Point{BrickSize, BrickSize})
	if err != nil {
		t.Fatalf("begin in second brick: %v", err)
	}
	if id != "1:1" {
		t.Errorf("second brick: got %s, want 1:1", id)
	}
}

func TestCanvasSnapshotOrdering(t *testing.T) {
	// WHAT: FullSnapshot lists bricks sorted by ID.
	// WHY: Deterministic output keeps the join payload reproducible.
	c := NewCanvas("doc-1")
	for _, p := range []Point{{BrickSize * 2, 0}, {0, 0}, {BrickSize, 0}} {
		c.AddSpline(BrickAt(p), Spline{Style: redStyle(), Points: []Point{p}})
	}

	snap := c.FullSnapshot()
	var ids []BrickID
	for _, b := range snap.Bricks {
		ids = append(ids, b.ID)
	}
	want := []BrickID{"0:0", "1:0", "2:0"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("brick order: got %v, want %v", ids, want)
	}
}

func TestCanvasParallelBricks(t *testing.T) {
	// WHAT: Users drawing in different bricks in parallel all complete
	// without interference.
	// WHY: Bricks carry independent locks; the canvas must not serialize
	// unrelated regions.
	c := NewCanvas("doc-1")

	const users = 8
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			id := string(rune('a' + u))
			origin := Point{float64(u) * BrickSize, 0}
			for s := 0; s < 25; s++ {
				if _, err := c.BeginPath(id, redStyle(), origin); err != nil {
					t.Errorf("user %s begin: %v", id, err)
					return
				}
				c.AddPathPoints(id, []Point{origin})
				if _, err := c.EndPath(id, Spline{Style: redStyle(), Points: []Point{origin}}); err != nil {
					t.Errorf("user %s end: %v", id, err)
					return
				}
			}
		}(u)
	}
	wg.Wait()

	snap := c.FullSnapshot()
	if len(snap.Bricks) != users {
		t.Fatalf("bricks: got %d, want %d", len(snap.Bricks), users)
	}
	for _, b := range snap.Bricks {
		if len(b.Splines) != 25 {
			t.Errorf("brick %s splines: got %d, want 25", b.ID, len(b.Splines))
		}
	}
}
