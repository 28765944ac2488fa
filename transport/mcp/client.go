package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/cookiegame/game/engine"
	"github.com/wricardo/mcp-training/cookiegame/game/service"
)

const boardPrefix = "/12"

// Client is a thin MCP client that proxies to the HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// apiError is a response with a status of 400 or above
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	if msg := strings.TrimSpace(e.body); msg != "" && !strings.Contains(msg, "\n") {
		return fmt.Sprintf("API error %d: %s", e.status, msg)
	}
	return fmt.Sprintf("API error: %d", e.status)
}

// NewClient creates a new MCP client that calls the HTTP API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Cookie and Milk",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Cookie and Milk - MCP Interface

A 4x4 gravity board shared by everyone connected to the server. Pieces
dropped into a column fall to the lowest empty cell. Four of one piece in a
row, column or diagonal wins; a full board without a line is a draw.

AVAILABLE TOOLS:
- board: Show the current board
- place: Drop a cookie or milk piece into column 1-4
- random_board: Fill the board from the seeded generator
- reset_board: Clear the board and restart the generator
- session_info: Board state and session counters as JSON
- game_instructions: Full rules and board legend`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the current board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place",
		Description: "Drop a piece into a column. The piece falls to the lowest empty cell.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"piece": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"cookie", "milk"},
					"description": "Piece to drop",
				},
				"column": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"maximum":     engine.Cols,
					"description": "Column from 1 (left) to 4 (right)",
				},
			},
			Required: []string{"piece", "column"},
		},
	}, c.handlePlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "random_board",
		Description: "Fill every cell from the seeded generator. The game outcome is not recomputed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRandomBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_board",
		Description: "Clear the board and restart the generator",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_info",
		Description: "Board state and session counters",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSessionInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and the board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

// textCall performs a request against a plain-text route. The body is
// returned alongside an *apiError for error statuses.
func (c *Client) textCall(ctx context.Context, method, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return string(data), &apiError{status: resp.StatusCode, body: string(data)}
	}
	return string(data), nil
}

func (c *Client) apiCall(ctx context.Context, method, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Tool handlers

func (c *Client) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board, err := c.textCall(ctx, "GET", boardPrefix+"/board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBoard(board)), nil
}

func (c *Client) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	pieceArg, _ := args["piece"].(string)

	piece, ok := engine.ParsePiece(pieceArg)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("piece must be cookie or milk, got %q", pieceArg)), nil
	}
	column, ok := columnArg(args["column"])
	if !ok || column < 1 || column > engine.Cols {
		return mcp.NewToolResultError(fmt.Sprintf("column must be an integer from 1 to %d, got %v", engine.Cols, args["column"])), nil
	}

	board, err := c.textCall(ctx, "POST", fmt.Sprintf("%s/place/%s/%d", boardPrefix, piece, column))
	var apiErr *apiError
	switch {
	case err == nil:
		return mcp.NewToolResultText(fmt.Sprintf("✓ Placed %s %s in column %d\n\n%s", piece.Glyph(), piece, column, formatBoard(board))), nil
	case errors.As(err, &apiErr) && apiErr.status == http.StatusServiceUnavailable:
		return mcp.NewToolResultText(fmt.Sprintf("✗ Placement rejected: %s\n\n%s", rejectionReason(board, column), formatBoard(board))), nil
	default:
		return mcp.NewToolResultError(err.Error()), nil
	}
}

func (c *Client) handleRandomBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board, err := c.textCall(ctx, "GET", boardPrefix+"/random-board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("🎲 Board randomized\n\n" + formatBoard(board)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board, err := c.textCall(ctx, "POST", boardPrefix+"/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("🔄 Board reset\n\n" + formatBoard(board)), nil
}

func (c *Client) handleSessionInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/session", &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🍪 Cookie and Milk - Complete Instructions

GAME OBJECTIVE:
Line up four of your pieces before the other team does.

BOARD:
• 4 columns by 4 rows, framed by walls
• Pieces fall to the lowest empty cell of the chosen column
• Columns are numbered 1 (left) to 4 (right)

BOARD LEGEND:
• ⬜ - Wall (frame around the board)
• ⬛ - Empty cell
• 🍪 - Cookie
• 🥛 - Milk

WINNING LINES (checked in this order):
• The four rows, top to bottom
• The four columns, left to right
• The diagonal from top-left to bottom-right
• The diagonal from top-right to bottom-left
The first complete line decides the winner. A full board with no line is a draw.

GAME OVER:
• After a win or a draw every placement is rejected until the board is reset
• A full column rejects placements while the game is running

RANDOM BOARDS:
• random_board fills all 16 cells from a fixed-seed generator
• The outcome is NOT recomputed, so a random board stays "running" and
  every column is full until reset_board
• reset_board restarts the generator, so the sequence of random boards repeats

RESULT LINES:
• "🍪 wins!" or "🥛 wins!" under the board when a team has won
• "No winner." under the board on a draw

Enjoy your milk and cookies!`

	return mcp.NewToolResultText(instructions), nil
}

// columnArg accepts JSON numbers and numeric strings
func columnArg(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		var col int
		if _, err := fmt.Sscanf(n, "%d", &col); err != nil {
			return 0, false
		}
		return col, true
	default:
		return 0, false
	}
}

// rejectionReason guesses why a 503 was returned from the rendered board
func rejectionReason(board string, column int) string {
	if strings.Contains(board, "wins!") || strings.Contains(board, "No winner.") {
		return "the game is over, reset the board to play again"
	}
	return fmt.Sprintf("column %d is full", column)
}

func formatBoard(board string) string {
	board = strings.TrimRight(board, "\n")
	lines := strings.Split(board, "\n")

	var b strings.Builder
	b.WriteString(board)
	b.WriteString("\n")
	if len(lines) <= engine.Rows+1 {
		b.WriteString("Status: running\n")
	}
	return b.String()
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s", info.State.Outcome)
	if info.State.Winner != "" {
		fmt.Fprintf(&b, " (%s)", info.State.Winner)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Operations: %d\n", info.Operations)
	fmt.Fprintf(&b, "Created: %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Last access: %s\n", info.LastAccessedAt.Format(time.RFC3339))

	b.WriteString("Grid (top to bottom, columns 1-4):\n")
	for _, row := range info.State.Grid {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell == "" {
				cell = "."
			}
			cells[i] = cell
		}
		b.WriteString("  " + strings.Join(cells, " ") + "\n")
	}
	return b.String()
}
