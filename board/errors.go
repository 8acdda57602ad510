package board

import "fmt"

// ErrNoActivePath is returned when an operation requires an active path
// for a user who has none. Receiving an append or end before a begin is
// a protocol violation by the caller, not an engine fault.
type ErrNoActivePath struct {
	UserID string
}

func (e *ErrNoActivePath) Error() string {
	return fmt.Sprintf("board: no active path for user %s", e.UserID)
}

// ErrConflictingPath is returned when BeginPath is called for a user who
// already has an active path. The caller must end or abort the existing
// stroke explicitly; the engine never discards it silently.
type ErrConflictingPath struct {
	UserID string
}

func (e *ErrConflictingPath) Error() string {
	return fmt.Sprintf("board: user %s already has an active path", e.UserID)
}

// ErrInvalidArgument is returned for malformed styles, points or
// coordinates. The failed operation leaves state unchanged.
type ErrInvalidArgument struct {
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("board: invalid argument: %s", e.Reason)
}
