// Package api provides the HTTP front end of the board server.
//
// Board routes answer with the rendered board as text/plain:
//
//	GET  /12/board                  current board
//	POST /12/place/{team}/{column}  drop a piece; team is cookie or milk,
//	                                column is 1 to 4
//	GET  /12/random-board           fill every cell from the seeded generator
//	POST /12/reset                  empty board, generator restarted
//
// A bad team or column answers 400 with no body. A placement rejected
// because the column is full or the game is over answers 503 with the
// unchanged board as body.
//
// JSON and push routes:
//
//	GET /api/board    {"rendered": "...", "state": {...}, "event": "board", "version": 0}
//	GET /api/session  session metadata and board state
//	GET /ws           websocket; first message is the current board,
//	                  then one message per mutation
//	GET /healthz      {"status": "healthy"}
//
// Every request gets an X-Request-Id (kept when the client sends one) and
// a request-scoped slog.Logger in its context, see internal/ctxlog.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(session.New())
//	srv := api.NewServer(svc, hub, logger)
//	http.ListenAndServe(":8080", srv)
package api
