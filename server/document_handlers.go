package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/adroste/nowte/auth"
	"github.com/adroste/nowte/observability"
	"github.com/adroste/nowte/store"
)

type createDocumentRequest struct {
	Title    string `json:"title"`
	FolderID string `json:"folderId"`
}

type updateDocumentRequest struct {
	Title    *string `json:"title"`
	FolderID *string `json:"folderId"`
}

// handleListDocuments lists the caller's documents under ?folder=
// (empty = root level).
// GET /api/documents
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	docs, err := s.store.ListDocuments(r.Context(), claims.UserID, r.URL.Query().Get("folder"))
	if err != nil {
		s.log.Error("list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if docs == nil {
		docs = []*store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleCreateDocument creates an empty document.
// POST /api/documents
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	var req createDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FolderID != "" && !s.ownsFolder(w, r, req.FolderID) {
		return
	}

	doc := &store.Document{
		ID:       s.newDocID(),
		OwnerID:  claims.UserID,
		FolderID: req.FolderID,
		Title:    strings.TrimSpace(req.Title),
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		s.log.Error("create document", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.recordEvent(r, observability.Event{
		EventType: "document", EntityType: "document", EntityID: doc.ID,
		DocumentID: doc.ID, Action: "create", Success: true,
	})
	writeJSON(w, http.StatusCreated, doc)
}

// handleGetDocument returns document metadata.
// GET /api/documents/{documentID}
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc := s.ownedDocument(w, r)
	if doc == nil {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleUpdateDocument renames and/or moves a document.
// PATCH /api/documents/{documentID}
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	doc := s.ownedDocument(w, r)
	if doc == nil {
		return
	}
	var req updateDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			writeError(w, http.StatusBadRequest, "title must not be empty")
			return
		}
		if err := s.store.RenameDocument(r.Context(), doc.ID, title); err != nil {
			s.log.Error("rename document", "document_id", doc.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	if req.FolderID != nil {
		if *req.FolderID != "" && !s.ownsFolder(w, r, *req.FolderID) {
			return
		}
		if err := s.store.MoveDocument(r.Context(), doc.ID, *req.FolderID); err != nil {
			s.log.Error("move document", "document_id", doc.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	updated, err := s.store.GetDocument(r.Context(), doc.ID)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteDocument removes a document and its persisted splines.
// DELETE /api/documents/{documentID}
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc := s.ownedDocument(w, r)
	if doc == nil {
		return
	}
	if err := s.store.DeleteDocument(r.Context(), doc.ID); err != nil {
		s.log.Error("delete document", "document_id", doc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.recordEvent(r, observability.Event{
		EventType: "document", EntityType: "document", EntityID: doc.ID,
		DocumentID: doc.ID, Action: "delete", Success: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ownedDocument loads the document from the URL and checks ownership,
// writing the error response itself. Foreign documents 404.
func (s *Server) ownedDocument(w http.ResponseWriter, r *http.Request) *store.Document {
	claims := auth.GetClaims(r.Context())
	documentID := chi.URLParam(r, "documentID")
	doc, err := s.store.GetDocument(r.Context(), documentID)
	if err != nil {
		s.log.Error("get document", "document_id", documentID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if doc == nil || doc.OwnerID != claims.UserID {
		writeError(w, http.StatusNotFound, "document not found")
		return nil
	}
	return doc
}
