// Package realtime carries drawing events between websocket clients and
// the in-memory canvas of an open document. Every client message is
// applied to the canvas first; only accepted changes are fanned out, so
// all connected clients converge on the same state.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adroste/nowte/board"
)

// Client-to-server message types.
const (
	TypePathBegin     = "path/begin"
	TypePathAddPoints = "path/addPoints"
	TypePathEnd       = "path/end"
	TypeCursorMove    = "cursor/move"
)

// Server-to-client message types.
const (
	TypeDocInit        = "doc/init"
	TypeUserJoin       = "user/join"
	TypeUserDisconnect = "user/disconnect"
	TypeError          = "error"
)

// Error codes carried in TypeError messages.
const (
	CodeNoActivePath    = "no_active_path"
	CodeConflictingPath = "conflicting_path"
	CodeInvalidArgument = "invalid_argument"
	CodeBadMessage      = "bad_message"
)

// Envelope is the outer shape of every wire message. Payload fields are
// flattened alongside Type; unused fields stay nil and are omitted.
type Envelope struct {
	Type string `json:"type"`

	// Set by the server on every relayed event.
	UserID   string        `json:"userId,omitempty"`
	Username string        `json:"username,omitempty"`
	BrickID  board.BrickID `json:"brickId,omitempty"`

	StrokeStyle *board.StrokeStyle `json:"strokeStyle,omitempty"`
	Position    *board.Point       `json:"position,omitempty"`
	Points      []board.Point      `json:"points,omitempty"`
	Spline      *board.Spline      `json:"spline,omitempty"`

	// Document snapshot, only on TypeDocInit.
	Bricks []board.BrickSnapshot `json:"bricks,omitempty"`

	// Only on TypeError.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// decodeEnvelope parses a client frame and checks that the payload
// carries what its type requires.
func decodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	switch env.Type {
	case TypePathBegin:
		if env.StrokeStyle == nil || env.Position == nil {
			return nil, fmt.Errorf("%s requires strokeStyle and position", env.Type)
		}
	case TypePathAddPoints:
		if len(env.Points) == 0 {
			return nil, fmt.Errorf("%s requires points", env.Type)
		}
	case TypePathEnd:
		if env.Spline == nil {
			return nil, fmt.Errorf("%s requires spline", env.Type)
		}
	case TypeCursorMove:
		if env.Position == nil {
			return nil, fmt.Errorf("%s requires position", env.Type)
		}
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
	return &env, nil
}

// errorEnvelope builds a TypeError frame for the sending client.
func errorEnvelope(code, message string) *Envelope {
	return &Envelope{Type: TypeError, Code: code, Message: message}
}

// errorCode maps canvas errors to wire error codes.
func errorCode(err error) string {
	var (
		noActive *board.ErrNoActivePath
		conflict *board.ErrConflictingPath
		invalid  *board.ErrInvalidArgument
	)
	switch {
	case errors.As(err, &noActive):
		return CodeNoActivePath
	case errors.As(err, &conflict):
		return CodeConflictingPath
	case errors.As(err, &invalid):
		return CodeInvalidArgument
	default:
		return CodeBadMessage
	}
}
