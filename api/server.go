package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/maze-lab/game/codec"
	"github.com/wricardo/maze-lab/game/config"
	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/pathfinder"
	"github.com/wricardo/maze-lab/game/service"
	"github.com/wricardo/maze-lab/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.MazeService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(mazeService service.MazeService, hub *websocket.Hub) *Server {
	s := &Server{
		service: mazeService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Runs
	api.HandleFunc("/sessions/{id}/generate", s.handleGenerate).Methods("POST")
	api.HandleFunc("/sessions/{id}/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/sessions/{id}/pause", s.handleControl(s.service.Pause)).Methods("POST")
	api.HandleFunc("/sessions/{id}/resume", s.handleControl(s.service.Resume)).Methods("POST")
	api.HandleFunc("/sessions/{id}/step", s.handleControl(s.service.Step)).Methods("POST")
	api.HandleFunc("/sessions/{id}/cancel", s.handleControl(s.service.Cancel)).Methods("POST")
	api.HandleFunc("/sessions/{id}/speed", s.handleSpeed).Methods("POST")

	// Editing
	api.HandleFunc("/sessions/{id}/start", s.handlePosition(s.service.SetStart)).Methods("POST")
	api.HandleFunc("/sessions/{id}/end", s.handlePosition(s.service.SetEnd)).Methods("POST")
	api.HandleFunc("/sessions/{id}/cell", s.handlePosition(s.service.ToggleCell)).Methods("POST")
	api.HandleFunc("/sessions/{id}/encode", s.handleEncode).Methods("GET")
	api.HandleFunc("/sessions/{id}/decode", s.handleDecode).Methods("POST")
	api.HandleFunc("/sessions/{id}/state", s.handleGetState).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	api.HandleFunc("/algorithms", s.handleAlgorithms).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static renderer
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrRunInProgress),
		errors.Is(err, engine.ErrNoActiveRun):
		return http.StatusConflict
	case errors.Is(err, grid.ErrInvalidDimensions),
		errors.Is(err, codec.ErrMalformedEncoding),
		errors.Is(err, generator.ErrUnknownAlgorithm),
		errors.Is(err, pathfinder.ErrUnknownAlgorithm),
		errors.Is(err, engine.ErrInvalidEndpoint),
		errors.Is(err, engine.ErrProtectedCell),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes an optional JSON body; an empty body leaves v unchanged
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

// broadcastState pushes the current maze to WebSocket clients after an edit
func (s *Server) broadcastState(sessionID string, state *service.MazeState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastState(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Run Handlers

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.service.Generate(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.respondRun(w, run)
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.SolveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.service.Solve(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.respondRun(w, run)
}

// respondRun answers 202 for a run still in flight and 200 for a finished one
func (s *Server) respondRun(w http.ResponseWriter, run *service.RunInfo) {
	if run.Running {
		respondJSON(w, http.StatusAccepted, run)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

type controlFunc func(ctx context.Context, sessionID string) (*service.MazeState, error)

func (s *Server) handleControl(op controlFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]

		state, err := op(r.Context(), sessionID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		s.broadcastState(sessionID, state)
		respondJSON(w, http.StatusOK, state)
	}
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		DelayMS *int `json:"delay_ms"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DelayMS == nil {
		respondError(w, http.StatusBadRequest, "delay_ms is required")
		return
	}

	state, err := s.service.SetSpeed(r.Context(), sessionID, *req.DelayMS)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

// Editing Handlers

type positionFunc func(ctx context.Context, sessionID string, x, y int) (*service.MazeState, error)

func (s *Server) handlePosition(op positionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]

		var req struct {
			X *int `json:"x"`
			Y *int `json:"y"`
		}
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.X == nil || req.Y == nil {
			respondError(w, http.StatusBadRequest, "x and y are required")
			return
		}

		state, err := op(r.Context(), sessionID, *req.X, *req.Y)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		s.broadcastState(sessionID, state)
		respondJSON(w, http.StatusOK, state)
	}
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	encoded, err := s.service.Encode(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"encoded":    encoded,
	})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Encoded string `json:"encoded"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Encoded) == "" {
		respondError(w, http.StatusBadRequest, "encoded is required")
		return
	}

	state, err := s.service.Decode(r.Context(), sessionID, strings.TrimSpace(req.Encoded))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// ?format=text returns the ASCII view only
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, state.View())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	preset, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, preset)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var mazeConfig engine.MazeConfig

	if err := json.NewDecoder(r.Body).Decode(&mazeConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if mazeConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), mazeConfig.Name, &mazeConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": mazeConfig.Name,
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Algorithms(r.Context()))
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "WebSocket streaming disabled", http.StatusServiceUnavailable)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
