package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateDocument inserts a new document row.
func (s *Store) CreateDocument(ctx context.Context, d *Document) error {
	now := time.Now().Unix()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.Title == "" {
		d.Title = "Untitled"
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO documents (document_id, owner_id, folder_id, title, created_at, updated_at)
		VALUES (?,?,?,?,?,?)`,
		d.ID, d.OwnerID, nullable(d.FolderID), d.Title, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetDocument returns the document with the given ID, or nil if absent.
func (s *Store) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT document_id, owner_id, COALESCE(folder_id, ''), title, created_at, updated_at
		FROM documents WHERE document_id = ?`, documentID)

	var d Document
	err := row.Scan(&d.ID, &d.OwnerID, &d.FolderID, &d.Title, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// ListDocuments returns the owner's documents in the given folder
// (empty folderID = root level), most recently updated first.
func (s *Store) ListDocuments(ctx context.Context, ownerID, folderID string) ([]*Document, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT document_id, owner_id, COALESCE(folder_id, ''), title, created_at, updated_at
		FROM documents
		WHERE owner_id = ? AND COALESCE(folder_id, '') = ?
		ORDER BY updated_at DESC`, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.FolderID, &d.Title, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// RenameDocument updates a document's title.
func (s *Store) RenameDocument(ctx context.Context, documentID, title string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE documents SET title = ?, updated_at = ? WHERE document_id = ?`,
		title, time.Now().Unix(), documentID)
	if err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	return nil
}

// MoveDocument moves a document into another folder (empty = root).
func (s *Store) MoveDocument(ctx context.Context, documentID, folderID string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE documents SET folder_id = ?, updated_at = ? WHERE document_id = ?`,
		nullable(folderID), time.Now().Unix(), documentID)
	if err != nil {
		return fmt.Errorf("move document: %w", err)
	}
	return nil
}

// TouchDocument bumps a document's updated_at, used when strokes land so
// listings sort by real activity.
func (s *Store) TouchDocument(ctx context.Context, documentID string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE documents SET updated_at = ? WHERE document_id = ?`,
		time.Now().Unix(), documentID)
	if err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and, via cascade, its splines.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
