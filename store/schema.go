// CLAUDE:SUMMARY Applies the whiteboard service SQL schema: users, folders, documents, splines.
package store

import "database/sql"

// Schema is the complete service schema.
const Schema = `
-- Registered users
CREATE TABLE IF NOT EXISTS users (
    user_id        TEXT PRIMARY KEY,
    username       TEXT NOT NULL UNIQUE,
    email          TEXT NOT NULL DEFAULT '',
    password_hash  TEXT NOT NULL,
    created_at     INTEGER NOT NULL
);

-- Folder hierarchy (parent_id NULL = root-level folder)
CREATE TABLE IF NOT EXISTS folders (
    folder_id   TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    parent_id   TEXT REFERENCES folders(folder_id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_folders_owner ON folders(owner_id, parent_id);

-- Documents (folder_id NULL = root level)
CREATE TABLE IF NOT EXISTS documents (
    document_id TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    folder_id   TEXT REFERENCES folders(folder_id) ON DELETE CASCADE,
    title       TEXT NOT NULL DEFAULT 'Untitled',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id, folder_id);

-- Finalized splines, one row per shape. Insertion order (rowid) is the
-- stacking order inside a brick and must be preserved on load.
CREATE TABLE IF NOT EXISTS document_splines (
    spline_id   TEXT PRIMARY KEY,
    document_id TEXT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
    brick_id    TEXT NOT NULL,
    color       TEXT NOT NULL,
    thickness   REAL NOT NULL,
    points_json TEXT NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_splines_document ON document_splines(document_id, brick_id);
`

// ApplySchema creates all tables and indexes if they don't exist.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
