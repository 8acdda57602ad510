package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/adroste/nowte/auth"
	"github.com/adroste/nowte/store"
)

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

type updateFolderRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentId"`
}

// handleListFolders lists the caller's folders under ?parent= (empty =
// root level).
// GET /api/folders
func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	folders, err := s.store.ListFolders(r.Context(), claims.UserID, r.URL.Query().Get("parent"))
	if err != nil {
		s.log.Error("list folders", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if folders == nil {
		folders = []*store.Folder{}
	}
	writeJSON(w, http.StatusOK, folders)
}

// handleCreateFolder creates a folder, optionally inside a parent the
// caller owns.
// POST /api/folders
func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	var req createFolderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}
	if req.ParentID != "" && !s.ownsFolder(w, r, req.ParentID) {
		return
	}

	folder := &store.Folder{
		ID:       s.newDirID(),
		OwnerID:  claims.UserID,
		ParentID: req.ParentID,
		Name:     req.Name,
	}
	if err := s.store.CreateFolder(r.Context(), folder); err != nil {
		s.log.Error("create folder", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// handleUpdateFolder renames and/or moves a folder.
// PATCH /api/folders/{folderID}
func (s *Server) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderID")
	if !s.ownsFolder(w, r, folderID) {
		return
	}
	var req updateFolderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		if err := s.store.RenameFolder(r.Context(), folderID, name); err != nil {
			s.log.Error("rename folder", "folder_id", folderID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	if req.ParentID != nil {
		if *req.ParentID != "" && !s.ownsFolder(w, r, *req.ParentID) {
			return
		}
		err := s.store.MoveFolder(r.Context(), folderID, *req.ParentID)
		if errors.Is(err, store.ErrFolderCycle) {
			writeError(w, http.StatusBadRequest, "move would create a cycle")
			return
		}
		if err != nil {
			s.log.Error("move folder", "folder_id", folderID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	folder, err := s.store.GetFolder(r.Context(), folderID)
	if err != nil || folder == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// handleDeleteFolder removes a folder and everything inside it.
// DELETE /api/folders/{folderID}
func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderID")
	if !s.ownsFolder(w, r, folderID) {
		return
	}
	if err := s.store.DeleteFolder(r.Context(), folderID); err != nil {
		s.log.Error("delete folder", "folder_id", folderID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ownsFolder loads the folder and checks ownership, writing the error
// response itself. Foreign folders 404 rather than 403 so IDs don't
// leak.
func (s *Server) ownsFolder(w http.ResponseWriter, r *http.Request, folderID string) bool {
	claims := auth.GetClaims(r.Context())
	folder, err := s.store.GetFolder(r.Context(), folderID)
	if err != nil {
		s.log.Error("get folder", "folder_id", folderID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if folder == nil || folder.OwnerID != claims.UserID {
		writeError(w, http.StatusNotFound, "folder not found")
		return false
	}
	return true
}
