package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adroste/nowte/board"
	"github.com/adroste/nowte/dbopen"
)

// ErrSplineExists is returned by InsertSpline when the spline ID is
// already stored. Queue redelivery makes this a normal outcome.
var ErrSplineExists = errors.New("store: spline already persisted")

// InsertSpline persists one finalized spline. Writes race the writeback
// worker against interactive deletes, so BUSY is retried.
func (s *Store) InsertSpline(ctx context.Context, ps *PersistedSpline) error {
	if ps.CreatedAt == 0 {
		ps.CreatedAt = time.Now().Unix()
	}
	points, err := json.Marshal(ps.Spline.Points)
	if err != nil {
		return fmt.Errorf("marshal spline points: %w", err)
	}
	_, err = dbopen.Exec(ctx, s.DB, `
		INSERT INTO document_splines (spline_id, document_id, brick_id, color, thickness, points_json, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		ps.ID, ps.DocumentID, string(ps.BrickID), ps.Spline.Style.Color, ps.Spline.Style.Thickness,
		string(points), ps.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrSplineExists
		}
		return fmt.Errorf("insert spline: %w", err)
	}
	return nil
}

// ListSplines returns all persisted splines for a document in insertion
// order, which is the per-brick stacking order a loaded canvas must keep.
func (s *Store) ListSplines(ctx context.Context, documentID string) ([]*PersistedSpline, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT spline_id, document_id, brick_id, color, thickness, points_json, created_at
		FROM document_splines
		WHERE document_id = ?
		ORDER BY rowid`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list splines: %w", err)
	}
	defer rows.Close()

	var out []*PersistedSpline
	for rows.Next() {
		var (
			ps         PersistedSpline
			brickID    string
			pointsJSON string
		)
		err := rows.Scan(&ps.ID, &ps.DocumentID, &brickID, &ps.Spline.Style.Color,
			&ps.Spline.Style.Thickness, &pointsJSON, &ps.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan spline: %w", err)
		}
		ps.BrickID = board.BrickID(brickID)
		if err := json.Unmarshal([]byte(pointsJSON), &ps.Spline.Points); err != nil {
			return nil, fmt.Errorf("decode spline %s points: %w", ps.ID, err)
		}
		out = append(out, &ps)
	}
	return out, rows.Err()
}

// DeleteSplines removes every persisted spline for a document. Used when
// a document is cleared without being deleted.
func (s *Store) DeleteSplines(ctx context.Context, documentID string) (int64, error) {
	res, err := dbopen.Exec(ctx, s.DB, `
		DELETE FROM document_splines WHERE document_id = ?`, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete splines: %w", err)
	}
	return res.RowsAffected()
}

// LoadCanvas rebuilds a document's canvas from persisted splines.
func (s *Store) LoadCanvas(ctx context.Context, documentID string) (*board.Canvas, error) {
	splines, err := s.ListSplines(ctx, documentID)
	if err != nil {
		return nil, err
	}
	canvas := board.NewCanvas(documentID)
	for _, ps := range splines {
		if err := canvas.AddSpline(ps.BrickID, ps.Spline); err != nil {
			return nil, fmt.Errorf("restore spline %s: %w", ps.ID, err)
		}
	}
	return canvas, nil
}
