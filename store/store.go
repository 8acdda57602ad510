// Package store provides the data access layer for the whiteboard
// service: users, the folder hierarchy, document records, and the
// persisted splines a document's canvas is rebuilt from.
//
// The store receives an already-opened *sql.DB (see dbopen) and owns the
// schema. All methods take a context and wrap errors with their
// operation name.
package store

import "database/sql"

// Store wraps the service database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
