package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/cookiegame/game/engine"
	"github.com/wricardo/mcp-training/cookiegame/internal/ctxlog"
)

var (
	ErrInvalidColumn = errors.New("invalid column")
	ErrInvalidPiece  = errors.New("invalid piece")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	store BoardStore

	// version is only touched inside store.Do
	version uint64
}

// NewGameService creates a new game service over store
func NewGameService(store BoardStore) GameService {
	return &gameServiceImpl{store: store}
}

// Board returns the current board
func (s *gameServiceImpl) Board(ctx context.Context) (*BoardView, error) {
	var view *BoardView
	s.store.Do(func(b *engine.Board) {
		view = s.viewOf(b, EventBoard)
	})
	return view, nil
}

// Place drops piece into the zero-based column. Rejected placements return
// the unchanged board together with the engine error.
func (s *gameServiceImpl) Place(ctx context.Context, piece engine.Piece, column int) (*BoardView, error) {
	logger := ctxlog.FromContext(ctx)

	if piece != engine.Cookie && piece != engine.Milk {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPiece, piece)
	}
	if column < 0 || column >= engine.Cols {
		return nil, fmt.Errorf("%w: %d not in 0..%d", ErrInvalidColumn, column, engine.Cols-1)
	}

	var (
		view    *BoardView
		outcome engine.Outcome
		err     error
	)
	s.store.Do(func(b *engine.Board) {
		outcome, err = b.Place(piece, column)
		if err != nil {
			view = s.viewOf(b, EventRejected)
			return
		}
		s.version++
		view = s.viewOf(b, EventPlaced)
	})

	if err != nil {
		logger.Info("placement rejected", "piece", piece, "column", column, "error", err)
		return view, fmt.Errorf("place %s in column %d: %w", piece, column, err)
	}

	logger.Info("piece placed", "piece", piece, "column", column, "outcome", outcome)
	return view, nil
}

// Randomize fills every cell from the board generator
func (s *gameServiceImpl) Randomize(ctx context.Context) (*BoardView, error) {
	var view *BoardView
	s.store.Do(func(b *engine.Board) {
		b.Randomize()
		s.version++
		view = s.viewOf(b, EventRandomized)
	})

	ctxlog.FromContext(ctx).Info("board randomized", "outcome", view.State.Outcome)
	return view, nil
}

// Reset restores the empty board and restarts the generator
func (s *gameServiceImpl) Reset(ctx context.Context) (*BoardView, error) {
	var view *BoardView
	s.store.Do(func(b *engine.Board) {
		b.Reset()
		s.version++
		view = s.viewOf(b, EventReset)
	})

	ctxlog.FromContext(ctx).Info("board reset")
	return view, nil
}

// Info returns session metadata with the current board state
func (s *gameServiceImpl) Info(ctx context.Context) (*SessionInfo, error) {
	var state engine.Snapshot
	s.store.Do(func(b *engine.Board) {
		state = b.Snapshot()
	})

	meta := s.store.Info()
	return &SessionInfo{
		CreatedAt:      meta.CreatedAt,
		LastAccessedAt: meta.LastAccessedAt,
		Operations:     meta.Operations,
		State:          state,
	}, nil
}

// viewOf must be called inside store.Do
func (s *gameServiceImpl) viewOf(b *engine.Board, event string) *BoardView {
	return &BoardView{
		Rendered: b.Render(),
		State:    b.Snapshot(),
		Event:    event,
		Version:  s.version,
	}
}
