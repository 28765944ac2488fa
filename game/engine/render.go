package engine

import "strings"

// Render draws the board as walled rows, a bottom wall, and a result line
// once the game has ended. The output is byte-stable for a given state.
func (b *Board) Render() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		sb.WriteString(WallGlyph)
		for c := 0; c < Cols; c++ {
			sb.WriteString(b.grid[r][c].Glyph())
		}
		sb.WriteString(WallGlyph)
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Repeat(WallGlyph, Cols+2))
	sb.WriteByte('\n')

	switch b.outcome.Kind {
	case Won:
		sb.WriteString(b.outcome.Winner.Glyph())
		sb.WriteString(" wins!\n")
	case Draw:
		sb.WriteString("No winner.\n")
	}
	return sb.String()
}

// String implements fmt.Stringer
func (b *Board) String() string {
	return b.Render()
}
