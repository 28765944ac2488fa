package engine

// position addresses one cell
type position struct {
	row, col int
}

// line is four cells that win when all hold the same piece
type line [4]position

// lines enumerates the 10 winning lines in evaluation order:
// rows 0..3, columns 0..3, main diagonal, anti-diagonal.
var lines = buildLines()

func buildLines() []line {
	out := make([]line, 0, Rows+Cols+2)
	for r := 0; r < Rows; r++ {
		var l line
		for c := 0; c < Cols; c++ {
			l[c] = position{r, c}
		}
		out = append(out, l)
	}
	for c := 0; c < Cols; c++ {
		var l line
		for r := 0; r < Rows; r++ {
			l[r] = position{r, c}
		}
		out = append(out, l)
	}
	var main, anti line
	for i := 0; i < Rows; i++ {
		main[i] = position{i, i}
		anti[i] = position{i, Cols - 1 - i}
	}
	return append(out, main, anti)
}

// owner returns the piece occupying every cell of l, if any
func (b *Board) owner(l line) (Piece, bool) {
	first, ok := b.grid[l[0].row][l[0].col].Piece()
	if !ok {
		return 0, false
	}
	for _, pos := range l[1:] {
		if b.grid[pos.row][pos.col] != cellOf(first) {
			return 0, false
		}
	}
	return first, true
}

func (b *Board) full() bool {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if b.grid[r][c] == Empty {
				return false
			}
		}
	}
	return true
}

// evaluate applies the win/draw rules to the current grid. The first
// winning line in enumeration order decides the winner.
func (b *Board) evaluate() Outcome {
	for _, l := range lines {
		if p, ok := b.owner(l); ok {
			return WonBy(p)
		}
	}
	if b.full() {
		return DrawOutcome()
	}
	return RunningOutcome()
}
