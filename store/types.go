package store

import "github.com/adroste/nowte/board"

// User is a row in the users table.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"createdAt"`
}

// Folder is a row in the folders table. ParentID is empty for root-level
// folders.
type Folder struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	ParentID  string `json:"parentId,omitempty"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Document is a row in the documents table. FolderID is empty for
// root-level documents.
type Document struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	FolderID  string `json:"folderId,omitempty"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// PersistedSpline is a finalized spline bound to its document and brick.
type PersistedSpline struct {
	ID         string
	DocumentID string
	BrickID    board.BrickID
	Spline     board.Spline
	CreatedAt  int64
}
