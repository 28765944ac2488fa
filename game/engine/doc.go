// Package engine provides the core game logic for the Cookie & Milk board.
//
// The engine package implements:
//   - A 4x4 grid where pieces drop to the lowest empty row of a column
//   - Win detection across 4 rows, 4 columns and both diagonals
//   - Draw detection on a full board with no winning line
//   - Deterministic board randomization from a fixed seed
//   - The plain text board rendering returned by the HTTP API
//
// Core Types:
//
// Board owns the grid, the current Outcome and the seeded generator.
// Piece is either Cookie or Milk. Outcome is a tagged value holding one of
// Running, Won (with the winning Piece) or Draw.
//
// Usage:
//
//	board := engine.New()
//
//	outcome, err := board.Place(engine.Cookie, 0)
//	if errors.Is(err, engine.ErrColumnFull) {
//		// column 0 already holds four pieces
//	}
//
//	fmt.Print(board.Render())
//
// Game Rules:
//
// Once a game is won or drawn the grid is frozen for Place until Reset.
// Randomize is always allowed: it overwrites all 16 cells but never
// re-evaluates the outcome, so a finished game keeps its result line.
//
// Generator:
//
// Randomize draws from math/rand seeded with Seed. Each cell consumes one
// Uint32 and uses its top bit. Output is reproducible across runs of this
// implementation; matching other implementations bit for bit requires the
// same generator algorithm.
//
// Concurrency:
//
// A Board is not safe for concurrent use. Wrap it in session.Session or
// otherwise serialize every call, including Render.
package engine
