package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"sleepygame/internal/engine"
	"sleepygame/internal/game"
	"sleepygame/internal/session"
)

// Server is the HTTP server.
type Server struct {
	mux      *http.ServeMux
	registry *game.Registry
	manager  *session.Manager
	webFS    fs.FS
	logger   *zap.Logger
}

// New creates a server with all routes and subscribes it to the manager's
// state changes. A nil webFS disables static file serving.
func New(registry *game.Registry, manager *session.Manager, webFS fs.FS, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mux:      http.NewServeMux(),
		registry: registry,
		manager:  manager,
		webFS:    webFS,
		logger:   logger,
	}
	manager.SetNotifier(s.broadcastState)
	s.routes()
	return s
}

func (s *Server) routes() {
	// API routes
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/history", s.handleListHistory)
	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{code}", s.handleGetSession)
	s.mux.HandleFunc("GET /api/sessions/{code}/ws", s.handleWebSocket)
	s.mux.HandleFunc("POST /api/sessions/{code}/bots", s.handleAddBot)
	s.mux.HandleFunc("POST /api/sessions/{code}/start", s.handleStartSession)
	s.mux.HandleFunc("GET /api/sessions/{code}/state/{playerId}", s.handleGetState)
	s.mux.HandleFunc("GET /api/sessions/{code}/history", s.handleGetHistory)

	// Static files
	if s.webFS != nil {
		s.mux.Handle("/", http.FileServer(http.FS(s.webFS)))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

type createSessionRequest struct {
	GameType string `json:"gameType"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type createSessionResponse struct {
	Code string `json:"code"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	req.GameType = strings.TrimSpace(req.GameType)
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.GameType == "" || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, errors.New("gameType and playerId required"))
		return
	}

	sess, err := s.manager.Create(req.GameType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sess.AddPlayer(req.PlayerID, strings.TrimSpace(req.Name)); err != nil {
		s.manager.Remove(sess.Code)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{Code: sess.Code})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.manager.Get(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, session.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

type addBotResponse struct {
	PlayerID string `json:"playerId"`
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.manager.Get(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, session.ErrNotFound)
		return
	}
	id, err := sess.AddBot()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	s.broadcastState(sess)
	writeJSON(w, http.StatusCreated, addBotResponse{PlayerID: id})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.manager.Get(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, session.ErrNotFound)
		return
	}
	if err := s.manager.Start(sess); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, match, err := s.manager.Lookup(r.PathValue("code"))
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, session.ErrNoActiveGame):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	playerID := r.PathValue("playerId")
	if sess.GetPlayer(playerID) == nil {
		writeError(w, http.StatusNotFound, errors.New("player not in session"))
		return
	}
	sess.RLock()
	sp := statePayload{
		SessionInfo:  sess.InfoLocked(),
		State:        match.State(playerID),
		ValidActions: match.ValidActions(playerID),
	}
	if match.IsOver() {
		sp.Results = match.Results()
	}
	sess.RUnlock()
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.manager.History(r.PathValue("code"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.logger.Error("load history", zap.String("room", r.PathValue("code")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.manager.Finished()
	if err != nil {
		s.logger.Error("list finished sessions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// errorPayload is the error body shared by REST responses and websocket
// error messages. Code is set for engine rule violations.
type errorPayload struct {
	Message string      `json:"message"`
	Code    engine.Code `json:"code,omitempty"`
}

func newErrorPayload(err error) errorPayload {
	ep := errorPayload{Message: err.Error()}
	if code := engine.CodeOf(err); code != engine.CodeUnknown {
		ep.Code = code
	}
	return ep
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, newErrorPayload(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
