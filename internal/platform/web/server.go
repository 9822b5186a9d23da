package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/vovakirdan/merge-arcade/internal/games/t2048"
)

// Server is the HTTP API over a session Manager.
type Server struct {
	sessions *Manager
	hub      *Hub
	router   *mux.Router
	logger   *log.Logger
}

// NewServer creates an API server. hub may be nil to disable live updates.
func NewServer(sessions *Manager, hub *Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		sessions: sessions,
		hub:      hub,
		router:   mux.NewRouter(),
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/scores/{game}", s.handleScores).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/ws/{id}", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("could not encode response", "status", status, "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondSessionError maps manager errors to status codes.
func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, t2048.ErrInvalidDirection):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	state := s.sessions.Create()
	s.respondJSON(w, http.StatusCreated, state)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.List()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"sessions": ids,
		"count":    len(ids),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		s.respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := s.sessions.Move(sessionID, req.Direction)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastState(sessionID, outcome.State)
		if outcome.LevelUp > 0 {
			data := map[string]any{"level": outcome.LevelUp}
			if m := t2048.MilestoneFor(outcome.LevelUp); m != nil {
				data["name"] = m.Name
				data["tile"] = m.Tile
			}
			s.hub.BroadcastEvent(sessionID, EventLevelUp, data)
		}
		if outcome.State.GameOver && outcome.Moved {
			s.hub.BroadcastEvent(sessionID, EventGameOver, map[string]int{"score": outcome.State.Score})
		}
	}

	s.logger.Debug("move",
		"session", sessionID,
		"direction", req.Direction,
		"moved", outcome.Moved,
		"gained", outcome.Gained,
		"score", outcome.State.Score,
	)

	s.respondJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.sessions.Restart(sessionID)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastState(sessionID, state)
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	scores, err := s.sessions.TopScores(mux.Vars(r)["game"], limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type row struct {
		Rank      int       `json:"rank"`
		Score     int       `json:"score"`
		CreatedAt time.Time `json:"created_at"`
	}
	rows := make([]row, len(scores))
	for i, e := range scores {
		rows[i] = row{Rank: i + 1, Score: e.Score, CreatedAt: e.CreatedAt}
	}
	s.respondJSON(w, http.StatusOK, rows)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if s.hub == nil {
		s.respondError(w, http.StatusServiceUnavailable, "live updates disabled")
		return
	}

	state, err := s.sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
	s.hub.BroadcastState(sessionID, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
