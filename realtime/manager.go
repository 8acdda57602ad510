package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/adroste/nowte/store"
)

// Manager keeps one live hub per open document. The first connection
// loads the persisted canvas; the last one to leave unloads it. Pending
// writeback jobs survive the unload because they sit in the queue, not
// in memory.
type Manager struct {
	store   *store.Store
	log     *slog.Logger
	persist PersistFunc

	mu   sync.Mutex
	hubs map[string]*managedHub
}

type managedHub struct {
	hub  *Hub
	refs int
}

// NewManager creates a document manager. persist is handed to every
// hub; nil disables writeback.
func NewManager(st *store.Store, log *slog.Logger, persist PersistFunc) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store:   st,
		log:     log,
		persist: persist,
		hubs:    make(map[string]*managedHub),
	}
}

// Acquire returns the live hub for a document, loading its canvas from
// storage on first use. Every Acquire must be paired with a Release.
func (m *Manager) Acquire(ctx context.Context, documentID string) (*Hub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mh, ok := m.hubs[documentID]; ok {
		mh.refs++
		return mh.hub, nil
	}

	// Load under the lock so two first-connections can't each build a
	// canvas and diverge. Document opens are rare enough that the
	// serialization doesn't matter.
	canvas, err := m.store.LoadCanvas(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}
	hub := NewHub(documentID, canvas, m.log, m.persist)
	m.hubs[documentID] = &managedHub{hub: hub, refs: 1}
	m.log.Info("document loaded", "document_id", documentID)
	return hub, nil
}

// Release drops one reference to a document's hub and unloads the
// canvas when nobody holds it anymore.
func (m *Manager) Release(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mh, ok := m.hubs[documentID]
	if !ok {
		return
	}
	mh.refs--
	if mh.refs <= 0 {
		delete(m.hubs, documentID)
		m.log.Info("document unloaded", "document_id", documentID)
	}
}

// OpenCount returns the number of currently loaded documents.
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hubs)
}
