package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUsernameTaken is returned by CreateUser when the username exists.
var ErrUsernameTaken = errors.New("store: username already taken")

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (user_id, username, email, password_hash, created_at)
		VALUES (?,?,?,?,?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given ID, or nil if absent.
func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.scanUser(s.DB.QueryRowContext(ctx, `
		SELECT user_id, username, email, password_hash, created_at
		FROM users WHERE user_id = ?`, userID))
}

// GetUserByUsername returns the user with the given username, or nil if
// absent. Used by the login handler.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.DB.QueryRowContext(ctx, `
		SELECT user_id, username, email, password_hash, created_at
		FROM users WHERE username = ?`, username))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
