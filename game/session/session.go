package session

import (
	"sync"
	"time"

	"github.com/wricardo/mcp-training/cookiegame/game/engine"
)

// Session owns the process-wide board and serializes every access to it
type Session struct {
	board          *engine.Board
	createdAt      time.Time
	lastAccessedAt time.Time
	operations     uint64
	mu             sync.Mutex
}

// Info describes a session at a point in time
type Info struct {
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Operations     uint64    `json:"operations"`
}

// New creates a session holding a fresh board
func New() *Session {
	now := time.Now()
	return &Session{
		board:          engine.New(),
		createdAt:      now,
		lastAccessedAt: now,
	}
}

// Do runs fn with exclusive access to the board. fn must not retain the
// board after it returns.
func (s *Session) Do(fn func(b *engine.Board)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAccessedAt = time.Now()
	s.operations++
	fn(s.board)
}

// Info returns a copy of the session metadata
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Info{
		CreatedAt:      s.createdAt,
		LastAccessedAt: s.lastAccessedAt,
		Operations:     s.operations,
	}
}
