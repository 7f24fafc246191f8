// Package http exposes session management and message dispatch over a JSON
// HTTP API, including an SSE stream of tree diffs per session.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server serves the session API on top of a session manager and a component
// registry. Every engine it creates shares the same registry.
type Server struct {
	sessions *session.Manager
	registry *registry.Registry
	streams  *StreamManager
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHooks installs lifecycle hooks on every engine the server creates,
// e.g. for metrics.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// NewHandler creates a new HTTP handler for the session API.
func NewHandler(sessions *session.Manager, reg *registry.Registry, opts ...Option) http.Handler {
	server := &Server{
		sessions: sessions,
		registry: reg,
		streams:  NewStreamManager(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/components", server.ListComponents)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", server.ListSessions)
		r.Post("/", server.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Delete("/", server.DeleteSession)
			r.Get("/tree", server.GetTree)
			r.Get("/events", server.SubscribeEvents)
			r.Post("/nodes/{nodeID}/message", server.SendMessage)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSessionRequest mounts a registered component as a fresh session root.
type CreateSessionRequest struct {
	SessionID string `json:"session_id"`
	Component string `json:"component"`
	AppState  any    `json:"app_state,omitempty"`
	Args      []any  `json:"args,omitempty"`
}

// CreateSessionResponse reports the created session and its root node.
type CreateSessionResponse struct {
	SessionID string        `json:"session_id"`
	Root      domain.NodeID `json:"root"`
}

// MessageRequest addresses a node with a registered message type.
type MessageRequest struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// MessageResponse summarizes the dispatch effect and the resulting diff.
type MessageResponse struct {
	AppStateChanged   bool             `json:"app_state_changed"`
	LocalStateChanged bool             `json:"local_state_changed"`
	Actions           int              `json:"actions"`
	Diff              *domain.TreeDiff `json:"diff,omitempty"`
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "espalier-http",
		"version": strings.TrimSpace(espalier.Version),
	})
}

// ListComponents handles the GET /components request.
func (s *Server) ListComponents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"components": s.registry.Components()})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.sessions.List()})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateSession: invalid request body", "err", err)
		return
	}
	if body.SessionID == "" || body.Component == "" {
		http.Error(w, "session_id and component are required", http.StatusBadRequest)
		return
	}

	eng := espalier.New(
		espalier.WithRegistry(s.registry),
		espalier.WithLogger(s.logger),
		espalier.WithLifecycleHooks(s.hooks),
	)
	root, err := eng.MountNamed(body.Component, ports.MountConfig{
		AppState: body.AppState,
		Args:     body.Args,
	})
	if err != nil {
		if errors.Is(err, domain.ErrComponentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Mount error: %v", err), http.StatusInternalServerError)
		s.logger.Error("CreateSession: mount failed", "component", body.Component, "err", err)
		return
	}

	if err := s.sessions.Create(r.Context(), body.SessionID, eng); err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, fmt.Sprintf("Create error: %v", err), http.StatusInternalServerError)
		s.logger.Error("CreateSession failed", "session_id", body.SessionID, "err", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: body.SessionID,
		Root:      root,
	})
}

// DeleteSession handles the DELETE /sessions/{sessionID} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("DeleteSession failed", "session_id", sessionID, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTree handles the GET /sessions/{sessionID}/tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	snap, err := s.sessions.Snapshot(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Snapshot error: %v", err), http.StatusInternalServerError)
		s.logger.Error("GetTree failed", "session_id", sessionID, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SendMessage handles the POST /sessions/{sessionID}/nodes/{nodeID}/message
// request. The message type must be registered for the node's component.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	nodeID := domain.NodeID(chi.URLParam(r, "nodeID"))

	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SendMessage: invalid request body", "err", err)
		return
	}
	if body.Type == "" {
		http.Error(w, "type is required", http.StatusBadRequest)
		return
	}

	var resp MessageResponse
	err := s.sessions.With(r.Context(), sessionID, func(eng *espalier.Engine) error {
		component, err := eng.ComponentOf(nodeID)
		if err != nil {
			return err
		}
		msg, err := s.registry.DecodeMessage(component, body.Type, body.Payload)
		if err != nil {
			return err
		}

		before := eng.Snapshot(sessionID)
		effect, err := eng.Send(nodeID, msg)
		if err != nil {
			return err
		}
		after := eng.Snapshot(sessionID)

		resp = MessageResponse{
			AppStateChanged:   !effect.KeepsAppState(),
			LocalStateChanged: !effect.KeepsLocalState(),
			Actions:           len(effect.Actions),
			Diff:              domain.Diff(before, after),
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNodeNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrComponentNotFound), errors.Is(err, domain.ErrMessageNotRegistered):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, fmt.Sprintf("Dispatch error: %v", err), http.StatusInternalServerError)
			s.logger.Error("SendMessage failed", "session_id", sessionID, "node", nodeID, "err", err)
		}
		return
	}

	if resp.Diff != nil {
		if bytes, err := json.Marshal(resp.Diff); err == nil {
			s.streams.Broadcast(sessionID, string(bytes))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles the GET /sessions/{sessionID}/events request (SSE).
// Each event carries a JSON-encoded tree diff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	s.logger.Info("SSE: subscribing to session updates", "session_id", sessionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[sessionID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Slow client, drop rather than block dispatch.
				slog.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
			}
		}
	}
}
