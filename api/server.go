package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/cookiegame/game/engine"
	"github.com/wricardo/mcp-training/cookiegame/game/service"
	"github.com/wricardo/mcp-training/cookiegame/internal/ctxlog"
	"github.com/wricardo/mcp-training/cookiegame/transport/websocket"
)

// BoardPrefix is the path prefix of the plain-text board routes
const BoardPrefix = "/12"

// RequestIDHeader carries the request id on every response
const RequestIDHeader = "X-Request-Id"

// Server represents the HTTP API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *slog.Logger
}

// NewServer creates a new API server. A nil logger uses slog.Default().
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestLogger)

	// Routes are registered flat: a method mismatch inside a subrouter
	// answers 404 instead of 405.
	s.router.HandleFunc(BoardPrefix+"/board", s.handleBoard).Methods("GET")
	s.router.HandleFunc(BoardPrefix+"/place/{team}/{column}", s.handlePlace).Methods("POST")
	s.router.HandleFunc(BoardPrefix+"/random-board", s.handleRandomBoard).Methods("GET")
	s.router.HandleFunc(BoardPrefix+"/reset", s.handleReset).Methods("POST")

	// JSON views
	s.router.HandleFunc("/api/board", s.handleBoardJSON).Methods("GET")
	s.router.HandleFunc("/api/session", s.handleSession).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger tags each request with an id and a request-scoped logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With("request_id", id, "method", r.Method, "path", r.URL.Path)
		ctx := ctxlog.WithLogger(r.Context(), logger)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug("request served", "duration", time.Since(start))
	})
}

// Response helpers
func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Board Handlers

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Board(r.Context())
	if err != nil {
		respondText(w, http.StatusInternalServerError, err.Error()+"\n")
		return
	}
	respondText(w, http.StatusOK, view.Rendered)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	piece, ok := engine.ParsePiece(vars["team"])
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	column, err := strconv.Atoi(vars["column"])
	if err != nil || column < 1 || column > engine.Cols {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	view, err := s.service.Place(r.Context(), piece, column-1)
	switch {
	case err == nil:
		s.broadcast(view)
		respondText(w, http.StatusOK, view.Rendered)
	case errors.Is(err, engine.ErrColumnFull), errors.Is(err, engine.ErrGameOver):
		var body string
		if view != nil {
			body = view.Rendered
		}
		respondText(w, http.StatusServiceUnavailable, body)
	case errors.Is(err, service.ErrInvalidColumn), errors.Is(err, service.ErrInvalidPiece):
		w.WriteHeader(http.StatusBadRequest)
	default:
		respondText(w, http.StatusInternalServerError, err.Error()+"\n")
	}
}

func (s *Server) handleRandomBoard(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Randomize(r.Context())
	if err != nil {
		respondText(w, http.StatusInternalServerError, err.Error()+"\n")
		return
	}
	s.broadcast(view)
	respondText(w, http.StatusOK, view.Rendered)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Reset(r.Context())
	if err != nil {
		respondText(w, http.StatusInternalServerError, err.Error()+"\n")
		return
	}
	s.broadcast(view)
	respondText(w, http.StatusOK, view.Rendered)
}

// JSON Handlers

func (s *Server) handleBoardJSON(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Board(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.Info(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// WebSocket handler
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusNotFound)
		return
	}

	view, err := s.service.Board(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	initial, err := websocket.EncodeBoard(view)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.hub.ServeWS(w, r, initial)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) broadcast(view *service.BoardView) {
	if s.hub != nil {
		s.hub.BroadcastBoard(view)
	}
}
