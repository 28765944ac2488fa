package engine

import (
	"golang.org/x/text/cases"
)

const (
	// Rows and Cols give the board dimensions. Row 0 is the top row.
	Rows = 4
	Cols = 4

	// Seed is the fixed generator seed. Every fresh or reset Board starts
	// the same boolean sequence.
	Seed int64 = 2024

	// Glyphs used by Render
	WallGlyph  = "⬜"
	EmptyGlyph = "⬛"
)

// Piece is one of the two kinds of game pieces
type Piece uint8

const (
	Cookie Piece = iota + 1
	Milk
)

// String returns the wire token for the piece
func (p Piece) String() string {
	switch p {
	case Cookie:
		return "cookie"
	case Milk:
		return "milk"
	default:
		return "unknown"
	}
}

// Glyph returns the character used to draw the piece on the board
func (p Piece) Glyph() string {
	switch p {
	case Cookie:
		return "🍪"
	case Milk:
		return "🥛"
	default:
		return "?"
	}
}

// ParsePiece maps a case-insensitive wire token to a Piece.
// The bool is false for unrecognized tokens.
func ParsePiece(token string) (Piece, bool) {
	// A Caser is stateful, so each call gets its own
	switch cases.Fold().String(token) {
	case "cookie":
		return Cookie, true
	case "milk":
		return Milk, true
	default:
		return 0, false
	}
}

// Cell holds at most one Piece. The zero value is Empty.
type Cell uint8

// Empty is an unoccupied cell
const Empty Cell = 0

func cellOf(p Piece) Cell {
	return Cell(p)
}

// Piece returns the piece in the cell and whether the cell is occupied
func (c Cell) Piece() (Piece, bool) {
	if c == Empty {
		return 0, false
	}
	return Piece(c), true
}

// Glyph returns the character used to draw the cell
func (c Cell) Glyph() string {
	if p, ok := c.Piece(); ok {
		return p.Glyph()
	}
	return EmptyGlyph
}

// OutcomeKind tags the variant held by an Outcome
type OutcomeKind uint8

const (
	Running OutcomeKind = iota
	Won
	Draw
)

func (k OutcomeKind) String() string {
	switch k {
	case Running:
		return "running"
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Outcome is the game result. Winner is only meaningful when Kind is Won.
type Outcome struct {
	Kind   OutcomeKind
	Winner Piece
}

// RunningOutcome is the outcome of a game still in progress
func RunningOutcome() Outcome {
	return Outcome{Kind: Running}
}

// WonBy is the outcome of a game won by p
func WonBy(p Piece) Outcome {
	return Outcome{Kind: Won, Winner: p}
}

// DrawOutcome is the outcome of a full board with no winning line
func DrawOutcome() Outcome {
	return Outcome{Kind: Draw}
}

// IsTerminal reports whether the game has ended
func (o Outcome) IsTerminal() bool {
	return o.Kind != Running
}

func (o Outcome) String() string {
	if o.Kind == Won {
		return o.Winner.String() + " wins"
	}
	return o.Kind.String()
}

// Snapshot is a JSON-friendly copy of the board state
type Snapshot struct {
	Grid    [Rows][Cols]string `json:"grid"` // "" for empty cells, otherwise the piece token
	Outcome string             `json:"outcome"`
	Winner  string             `json:"winner,omitempty"`
}
