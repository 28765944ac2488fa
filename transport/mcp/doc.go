// Package mcp exposes the board to Model Context Protocol clients.
//
// Client builds an mcp-go server whose tools proxy the HTTP API of a
// running board server, so agents and humans share one board:
//
//   - board: show the current board
//   - place: drop a cookie or milk piece into column 1 to 4
//   - random_board: fill every cell from the seeded generator
//   - reset_board: clear the board and restart the generator
//   - session_info: outcome, grid and session counters
//   - game_instructions: rules and legend
//
// A placement rejected by the server (column full or game over) is a
// normal tool result that explains the rejection and shows the board.
// Transport failures and bad arguments are tool errors.
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode, JSON-RPC over POST /mcp
//	client := mcp.NewClient("http://localhost:8080")
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
