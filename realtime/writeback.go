package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adroste/nowte/board"
	"github.com/adroste/nowte/idgen"
	"github.com/adroste/nowte/store"
	"github.com/adroste/nowte/vtq"
)

// WritebackQueue is the queue name finalized splines travel through on
// their way to the document_splines table.
const WritebackQueue = "spline_writeback"

// writebackJob is the queue payload for one finalized spline.
type writebackJob struct {
	SplineID   string        `json:"splineId"`
	DocumentID string        `json:"documentId"`
	BrickID    board.BrickID `json:"brickId"`
	Spline     board.Spline  `json:"spline"`
}

// Writeback drains finalized splines from the queue into the store.
// Persistence runs behind a queue so a slow disk never stalls the
// drawing path; redelivery after a crash is the durability guarantee.
type Writeback struct {
	queue *vtq.Q
	store *store.Store
	log   *slog.Logger
	newID idgen.Generator
}

// NewWriteback wires a queue to a store.
func NewWriteback(queue *vtq.Q, st *store.Store, log *slog.Logger) *Writeback {
	if log == nil {
		log = slog.Default()
	}
	return &Writeback{
		queue: queue,
		store: st,
		log:   log,
		newID: idgen.Prefixed("spl_", idgen.UUIDv7()),
	}
}

// Publish enqueues one finalized spline. Safe to call from the hub's
// event path; it's a single queue insert.
func (w *Writeback) Publish(documentID string, brickID board.BrickID, spline board.Spline) {
	job := writebackJob{
		SplineID:   w.newID(),
		DocumentID: documentID,
		BrickID:    brickID,
		Spline:     spline,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		w.log.Error("encode writeback job", "document_id", documentID, "error", err)
		return
	}
	if err := w.queue.Publish(context.Background(), job.SplineID, payload); err != nil {
		w.log.Error("enqueue spline", "spline_id", job.SplineID, "document_id", documentID, "error", err)
	}
}

// PersistFunc adapts Publish to the hub callback signature.
func (w *Writeback) PersistFunc() PersistFunc {
	return w.Publish
}

// Run consumes the queue until ctx is cancelled.
func (w *Writeback) Run(ctx context.Context) {
	w.queue.Run(ctx, w.handle)
}

func (w *Writeback) handle(ctx context.Context, job *vtq.Job) error {
	var wj writebackJob
	if err := json.Unmarshal(job.Payload, &wj); err != nil {
		// A payload that never parses would redeliver forever.
		w.log.Error("discarding unreadable writeback job", "job_id", job.ID, "error", err)
		return nil
	}

	err := w.store.InsertSpline(ctx, &store.PersistedSpline{
		ID:         wj.SplineID,
		DocumentID: wj.DocumentID,
		BrickID:    wj.BrickID,
		Spline:     wj.Spline,
	})
	if errors.Is(err, store.ErrSplineExists) {
		// Redelivered after a crash between insert and ack.
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist spline %s: %w", wj.SplineID, err)
	}
	if err := w.store.TouchDocument(ctx, wj.DocumentID); err != nil {
		w.log.Warn("touch document", "document_id", wj.DocumentID, "error", err)
	}
	return nil
}
