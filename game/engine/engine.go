package engine

import (
	"errors"
	"math/rand"
)

var (
	ErrColumnFull = errors.New("column is full")
	ErrGameOver   = errors.New("game is over")
)

// Board is the 4x4 grid, its outcome, and the seeded generator used by
// Randomize. A Board is not safe for concurrent use; callers serialize
// access (see the session package).
type Board struct {
	grid    [Rows][Cols]Cell
	outcome Outcome
	rng     *rand.Rand
}

// New creates an empty running board with a generator seeded from Seed
func New() *Board {
	return &Board{
		outcome: RunningOutcome(),
		rng:     rand.New(rand.NewSource(Seed)),
	}
}

// Place drops p into column, landing in the lowest empty row. The column
// must already be validated to be in [0, Cols).
//
// Nothing changes when the game is over (ErrGameOver) or the column has no
// empty cell (ErrColumnFull).
func (b *Board) Place(p Piece, column int) (Outcome, error) {
	if b.outcome.IsTerminal() {
		return b.outcome, ErrGameOver
	}

	row := -1
	for r := Rows - 1; r >= 0; r-- {
		if b.grid[r][column] == Empty {
			row = r
			break
		}
	}
	if row < 0 {
		return b.outcome, ErrColumnFull
	}

	b.grid[row][column] = cellOf(p)
	b.outcome = b.evaluate()
	return b.outcome, nil
}

// Randomize fills every cell, row-major, with one generator draw per cell:
// true is Cookie, false is Milk. The outcome is left exactly as it was,
// including a terminal one.
func (b *Board) Randomize() Outcome {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if drawBool(b.rng) {
				b.grid[r][c] = cellOf(Cookie)
			} else {
				b.grid[r][c] = cellOf(Milk)
			}
		}
	}
	return b.outcome
}

// Reset replaces the board with a fresh one, restarting the generator
func (b *Board) Reset() {
	*b = *New()
}

// Outcome returns the current outcome
func (b *Board) Outcome() Outcome {
	return b.outcome
}

// Cell returns the cell at row, col
func (b *Board) Cell(row, col int) Cell {
	return b.grid[row][col]
}

// Assess evaluates the current grid without storing the result.
// Only Place updates the stored outcome.
func (b *Board) Assess() Outcome {
	return b.evaluate()
}

// Snapshot returns a JSON-friendly copy of the board
func (b *Board) Snapshot() Snapshot {
	var s Snapshot
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if p, ok := b.grid[r][c].Piece(); ok {
				s.Grid[r][c] = p.String()
			}
		}
	}
	s.Outcome = b.outcome.Kind.String()
	if b.outcome.Kind == Won {
		s.Winner = b.outcome.Winner.String()
	}
	return s
}

// drawBool takes the top bit of one 32-bit draw
func drawBool(rng *rand.Rand) bool {
	return rng.Uint32()>>31 == 1
}
