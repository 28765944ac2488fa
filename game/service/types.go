package service

import (
	"time"

	"github.com/wricardo/mcp-training/cookiegame/game/engine"
)

// Event names carried in BoardView.Event
const (
	EventBoard      = "board"
	EventPlaced     = "placed"
	EventRejected   = "rejected"
	EventRandomized = "randomized"
	EventReset      = "reset"
)

// BoardView is the result of every board operation. Version counts the
// mutations committed to the board; a view with a higher version is newer.
type BoardView struct {
	Rendered string          `json:"rendered"`
	State    engine.Snapshot `json:"state"`
	Event    string          `json:"event"`
	Version  uint64          `json:"version"`
}

// SessionInfo provides information about the board session
type SessionInfo struct {
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	Operations     uint64          `json:"operations"`
	State          engine.Snapshot `json:"state"`
}
