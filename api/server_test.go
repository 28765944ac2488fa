package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/cookiegame/game/engine"
	"github.com/wricardo/mcp-training/cookiegame/game/service"
	"github.com/wricardo/mcp-training/cookiegame/game/session"
	"github.com/wricardo/mcp-training/cookiegame/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	BoardFunc     func(ctx context.Context) (*service.BoardView, error)
	InfoFunc      func(ctx context.Context) (*service.SessionInfo, error)
	PlaceFunc     func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error)
	RandomizeFunc func(ctx context.Context) (*service.BoardView, error)
	ResetFunc     func(ctx context.Context) (*service.BoardView, error)
}

func mockView(event string) *service.BoardView {
	b := engine.New()
	return &service.BoardView{Rendered: b.Render(), State: b.Snapshot(), Event: event}
}

func (m *MockGameService) Board(ctx context.Context) (*service.BoardView, error) {
	if m.BoardFunc != nil {
		return m.BoardFunc(ctx)
	}
	return mockView(service.EventBoard), nil
}

func (m *MockGameService) Info(ctx context.Context) (*service.SessionInfo, error) {
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	return &service.SessionInfo{CreatedAt: time.Now(), LastAccessedAt: time.Now()}, nil
}

func (m *MockGameService) Place(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
	if m.PlaceFunc != nil {
		return m.PlaceFunc(ctx, piece, column)
	}
	return mockView(service.EventPlaced), nil
}

func (m *MockGameService) Randomize(ctx context.Context) (*service.BoardView, error) {
	if m.RandomizeFunc != nil {
		return m.RandomizeFunc(ctx)
	}
	return mockView(service.EventRandomized), nil
}

func (m *MockGameService) Reset(ctx context.Context) (*service.BoardView, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx)
	}
	return mockView(service.EventReset), nil
}

// Test helpers
func setupTestServer(t *testing.T, gameService service.GameService) *Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	return NewServer(gameService, hub, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

const emptyBoard = "⬜⬛⬛⬛⬛⬜\n" +
	"⬜⬛⬛⬛⬛⬜\n" +
	"⬜⬛⬛⬛⬛⬜\n" +
	"⬜⬛⬛⬛⬛⬜\n" +
	"⬜⬜⬜⬜⬜⬜\n"

// Board Route Tests

func TestGetBoard(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()

	server.ServeHTTP(w, makeRequest("GET", "/12/board", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Expected text/plain, got %s", ct)
	}
	if w.Body.String() != emptyBoard {
		t.Errorf("Expected empty board, got:\n%s", w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockGameService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Place cookie in first column",
			path: "/12/place/cookie/1",
			setupMock: func(m *MockGameService) {
				m.PlaceFunc = func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
					if piece != engine.Cookie || column != 0 {
						t.Errorf("Expected cookie in column 0, got %v in %d", piece, column)
					}
					return &service.BoardView{Rendered: "placed\n"}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "placed\n",
		},
		{
			name: "Team token is case-insensitive",
			path: "/12/place/MILK/4",
			setupMock: func(m *MockGameService) {
				m.PlaceFunc = func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
					if piece != engine.Milk || column != 3 {
						t.Errorf("Expected milk in column 3, got %v in %d", piece, column)
					}
					return &service.BoardView{Rendered: "placed\n"}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "placed\n",
		},
		{
			name:           "Column zero",
			path:           "/12/place/cookie/0",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Column five",
			path:           "/12/place/milk/5",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Column not a number",
			path:           "/12/place/milk/two",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown team",
			path:           "/12/place/tea/2",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Column full",
			path: "/12/place/cookie/2",
			setupMock: func(m *MockGameService) {
				m.PlaceFunc = func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
					return &service.BoardView{Rendered: "unchanged\n"}, fmt.Errorf("place: %w", engine.ErrColumnFull)
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "unchanged\n",
		},
		{
			name: "Game over",
			path: "/12/place/milk/3",
			setupMock: func(m *MockGameService) {
				m.PlaceFunc = func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
					return &service.BoardView{Rendered: "finished\n"}, fmt.Errorf("place: %w", engine.ErrGameOver)
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "finished\n",
		},
		{
			name: "Service rejects column",
			path: "/12/place/milk/3",
			setupMock: func(m *MockGameService) {
				m.PlaceFunc = func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
					return nil, service.ErrInvalidColumn
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unexpected service error",
			path: "/12/place/milk/3",
			setupMock: func(m *MockGameService) {
				m.PlaceFunc = func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
					return nil, fmt.Errorf("boom")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", tt.path, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Body.String() != tt.expectedBody {
				t.Errorf("Expected body %q, got %q", tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestPlaceHandlerDirect(t *testing.T) {
	called := false
	server := setupTestServer(t, &MockGameService{
		PlaceFunc: func(ctx context.Context, piece engine.Piece, column int) (*service.BoardView, error) {
			called = true
			return mockView(service.EventPlaced), nil
		},
	})

	w := httptest.NewRecorder()
	req := makeRequest("POST", "/12/place/cookie/3", nil)
	req = mux.SetURLVars(req, map[string]string{"team": "cookie", "column": "3"})

	server.handlePlace(w, req)

	if !called {
		t.Error("Expected the service to be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRouteMethods(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/12/board"},
		{"GET", "/12/place/cookie/1"},
		{"POST", "/12/random-board"},
		{"GET", "/12/reset"},
		{"POST", "/api/board"},
		{"DELETE", "/api/session"},
		{"POST", "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected status 405, got %d", w.Code)
			}
		})
	}
}

func TestRandomBoardAndReset(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		event  string
	}{
		{"Random board", "GET", "/12/random-board", service.EventRandomized},
		{"Reset", "POST", "/12/reset", service.EventReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			mockService := &MockGameService{
				RandomizeFunc: func(ctx context.Context) (*service.BoardView, error) {
					calls = append(calls, service.EventRandomized)
					return &service.BoardView{Rendered: "random\n", Event: service.EventRandomized}, nil
				},
				ResetFunc: func(ctx context.Context) (*service.BoardView, error) {
					calls = append(calls, service.EventReset)
					return &service.BoardView{Rendered: "reset\n", Event: service.EventReset}, nil
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			if len(calls) != 1 || calls[0] != tt.event {
				t.Errorf("Expected one %s call, got %v", tt.event, calls)
			}
		})
	}
}

// JSON Route Tests

func TestBoardJSON(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()

	server.ServeHTTP(w, makeRequest("GET", "/api/board", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.BoardView
	parseResponse(t, w, &resp)
	if resp.Rendered != emptyBoard {
		t.Errorf("Expected empty board, got %q", resp.Rendered)
	}
	if resp.State.Outcome != "running" {
		t.Errorf("Expected running outcome, got %q", resp.State.Outcome)
	}
}

func TestSessionJSON(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "Session info",
			setupMock: func(m *MockGameService) {
				m.InfoFunc = func(ctx context.Context) (*service.SessionInfo, error) {
					return &service.SessionInfo{Operations: 7}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Service error",
			setupMock: func(m *MockGameService) {
				m.InfoFunc = func(ctx context.Context) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("unavailable")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			tt.setupMock(mockService)

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/session", nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusOK {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.Operations != 7 {
					t.Errorf("Expected 7 operations, got %d", resp.Operations)
				}
			} else {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "unavailable" {
					t.Errorf("Expected error 'unavailable', got %s", resp["error"])
				}
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()

	server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", resp)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	req := makeRequest("GET", "/12/board", nil)
	req.Header.Set(RequestIDHeader, "given-id")

	server.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "given-id" {
		t.Errorf("Expected given-id, got %s", got)
	}
}

// End-to-end against the real service

func TestGameFlow(t *testing.T) {
	server := setupTestServer(t, service.NewGameService(session.New()))

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest(method, path, nil))
		return w
	}

	// Milk fills column 2 from the bottom and wins vertically
	for i := 0; i < engine.Rows-1; i++ {
		if w := do("POST", "/12/place/milk/2"); w.Code != http.StatusOK {
			t.Fatalf("Place %d: expected 200, got %d", i, w.Code)
		}
	}
	w := do("POST", "/12/place/milk/2")
	if w.Code != http.StatusOK {
		t.Fatalf("Winning place: expected 200, got %d", w.Code)
	}
	winning := w.Body.String()
	if !strings.HasSuffix(winning, "🥛 wins!\n") {
		t.Errorf("Expected milk to win, got:\n%s", winning)
	}

	// Board is locked
	w = do("POST", "/12/place/cookie/1")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 after game over, got %d", w.Code)
	}
	if w.Body.String() != winning {
		t.Errorf("Expected unchanged board in 503 body, got:\n%s", w.Body.String())
	}

	// Reset unlocks and clears
	if w = do("POST", "/12/reset"); w.Body.String() != emptyBoard {
		t.Errorf("Expected empty board after reset, got:\n%s", w.Body.String())
	}

	// Fill column 4 then overflow it
	for _, team := range []string{"cookie", "milk", "cookie", "milk"} {
		do("POST", "/12/place/"+team+"/4")
	}
	w = do("POST", "/12/place/cookie/4")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 on full column, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "wins!") || strings.Contains(w.Body.String(), "No winner.") {
		t.Errorf("Expected a running board, got:\n%s", w.Body.String())
	}

	// Randomize keeps the running outcome and renders every cell occupied
	w = do("GET", "/12/random-board")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from random-board, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, engine.EmptyGlyph) {
		t.Errorf("Expected a full board, got:\n%s", body)
	}
	if strings.Count(body, "\n") != engine.Rows+1 {
		t.Errorf("Randomize must not add a result line, got:\n%s", body)
	}

	if w = do("GET", "/12/board"); w.Body.String() != body {
		t.Error("Board route should return the randomized board")
	}
}
