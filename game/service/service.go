package service

import (
	"context"

	"github.com/wricardo/mcp-training/cookiegame/game/engine"
	"github.com/wricardo/mcp-training/cookiegame/game/session"
)

// GameService defines all board operations exposed to transports
type GameService interface {
	// Reads
	Board(ctx context.Context) (*BoardView, error)
	Info(ctx context.Context) (*SessionInfo, error)

	// Mutations
	Place(ctx context.Context, piece engine.Piece, column int) (*BoardView, error)
	Randomize(ctx context.Context) (*BoardView, error)
	Reset(ctx context.Context) (*BoardView, error)
}

// BoardStore gives exclusive access to the single board. *session.Session
// satisfies it.
type BoardStore interface {
	Do(fn func(b *engine.Board))
	Info() session.Info
}
