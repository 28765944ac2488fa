// Package service provides the business logic layer for the board server.
//
// GameService sits between the transports (HTTP, WebSocket, MCP) and the
// engine. It validates caller input, runs each operation on the single
// board through a BoardStore, logs the result with the request logger and
// returns a BoardView holding the rendered text and a JSON-friendly
// snapshot.
//
// Columns are zero-based here; transports convert from their own
// numbering. A rejected placement (column full, game over) returns both
// the unchanged board and an error wrapping engine.ErrColumnFull or
// engine.ErrGameOver, so callers can show the board alongside the
// rejection.
//
// Usage:
//
//	svc := service.NewGameService(session.New())
//
//	view, err := svc.Place(ctx, engine.Cookie, 0)
//	switch {
//	case errors.Is(err, engine.ErrColumnFull), errors.Is(err, engine.ErrGameOver):
//		fmt.Print("rejected\n", view.Rendered)
//	case err != nil:
//		return err
//	default:
//		fmt.Print(view.Rendered)
//	}
package service
