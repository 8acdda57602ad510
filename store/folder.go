package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrFolderCycle is returned when a folder move would make a folder its
// own ancestor.
var ErrFolderCycle = errors.New("store: folder move would create a cycle")

// CreateFolder inserts a new folder. An empty ParentID creates a
// root-level folder.
func (s *Store) CreateFolder(ctx context.Context, f *Folder) error {
	now := time.Now().Unix()
	if f.CreatedAt == 0 {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO folders (folder_id, owner_id, parent_id, name, created_at, updated_at)
		VALUES (?,?,?,?,?,?)`,
		f.ID, f.OwnerID, nullable(f.ParentID), f.Name, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetFolder returns the folder with the given ID, or nil if absent.
func (s *Store) GetFolder(ctx context.Context, folderID string) (*Folder, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT folder_id, owner_id, COALESCE(parent_id, ''), name, created_at, updated_at
		FROM folders WHERE folder_id = ?`, folderID)

	var f Folder
	err := row.Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &f, nil
}

// ListFolders returns the owner's folders under the given parent
// (empty parentID = root level), ordered by name.
func (s *Store) ListFolders(ctx context.Context, ownerID, parentID string) ([]*Folder, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT folder_id, owner_id, COALESCE(parent_id, ''), name, created_at, updated_at
		FROM folders
		WHERE owner_id = ? AND COALESCE(parent_id, '') = ?
		ORDER BY name`, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var out []*Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// RenameFolder updates a folder's name.
func (s *Store) RenameFolder(ctx context.Context, folderID, name string) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE folders SET name = ?, updated_at = ? WHERE folder_id = ?`,
		name, time.Now().Unix(), folderID)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	return nil
}

// MoveFolder reparents a folder. Rejects moves that would make the
// folder its own ancestor.
func (s *Store) MoveFolder(ctx context.Context, folderID, newParentID string) error {
	// Walk up from the new parent; hitting folderID means a cycle.
	cur := newParentID
	for cur != "" {
		if cur == folderID {
			return ErrFolderCycle
		}
		parent, err := s.GetFolder(ctx, cur)
		if err != nil {
			return err
		}
		if parent == nil {
			break
		}
		cur = parent.ParentID
	}

	_, err := s.DB.ExecContext(ctx, `
		UPDATE folders SET parent_id = ?, updated_at = ? WHERE folder_id = ?`,
		nullable(newParentID), time.Now().Unix(), folderID)
	if err != nil {
		return fmt.Errorf("move folder: %w", err)
	}
	return nil
}

// DeleteFolder removes a folder. Child folders and contained documents
// cascade via foreign keys.
func (s *Store) DeleteFolder(ctx context.Context, folderID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM folders WHERE folder_id = ?`, folderID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

// nullable maps "" to NULL so empty parent/folder IDs don't break the
// foreign key constraints.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
