package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/adroste/nowte/auth"
	"github.com/adroste/nowte/observability"
	"github.com/adroste/nowte/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The token cookie is the access check; cross-origin pages can't
	// read it, so origin enforcement adds nothing here.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleDocumentWS upgrades the connection and serves the document's
// drawing session until the client leaves. Any authenticated user who
// knows the document ID may join; that's how documents are shared.
// GET /api/documents/{documentID}/ws
func (s *Server) handleDocumentWS(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	documentID := chi.URLParam(r, "documentID")
	doc, err := s.store.GetDocument(r.Context(), documentID)
	if err != nil {
		s.log.Error("get document", "document_id", documentID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	hub, err := s.manager.Acquire(r.Context(), doc.ID)
	if err != nil {
		s.log.Error("load document", "document_id", doc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer s.manager.Release(doc.ID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.log.Warn("websocket upgrade", "document_id", doc.ID, "error", err)
		return
	}

	connID := s.newConnID()
	s.recordEvent(r, observability.Event{
		EventType: "session", EntityType: "connection", EntityID: connID,
		DocumentID: doc.ID, Action: "join", Success: true,
	})

	client := realtime.NewClient(connID, claims.UserID, claims.Username, hub, conn, realtime.ConnSettings{
		SendBuffer:   s.cfg.Realtime.SendBuffer,
		PingInterval: s.cfg.Realtime.PingInterval,
		PongTimeout:  s.cfg.Realtime.PongTimeout,
		MaxMessage:   s.cfg.Realtime.MaxMessage,
	})
	client.Run()

	s.recordEvent(r, observability.Event{
		EventType: "session", EntityType: "connection", EntityID: connID,
		DocumentID: doc.ID, Action: "leave", Success: true,
	})
}
