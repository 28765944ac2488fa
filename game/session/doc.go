// Package session provides exclusive access to the single game board.
//
// The engine.Board is not safe for concurrent use and its generator must
// see calls in a well-defined order for Randomize to be reproducible.
// Session owns exactly one Board and runs every operation on it behind a
// mutex, so at most one of place, randomize, reset or render executes at a
// time.
//
// Usage:
//
//	sess := session.New()
//
//	var outcome engine.Outcome
//	var err error
//	sess.Do(func(b *engine.Board) {
//		outcome, err = b.Place(engine.Cookie, 0)
//		fmt.Print(b.Render())
//	})
//
// State lives only in memory. A restarted process starts from the same
// fixed-seed board that Reset produces.
package session
