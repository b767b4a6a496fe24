package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Machine defines the control surface of a running plan.
// *cadence.Machine implements it.
type Machine interface {
	Snapshot() domain.Snapshot
	Skip(name string) error
	Freeze(name string, frozen bool) error
	EndState(name string) error
	Restart() error
}

// Server exposes a Machine over HTTP.
type Server struct {
	Machine Machine
	Streams *StreamManager
	Logger  *slog.Logger

	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts a Prometheus /metrics endpoint serving gatherer.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithStreams shares a StreamManager, so a runner can broadcast diffs to SSE clients.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the machine.
func NewHandler(machine Machine, opts ...Option) http.Handler {
	server := &Server{
		Machine: machine,
		Streams: NewStreamManager(),
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/snapshot", server.GetSnapshot)
	r.Get("/snapshot/{name}", server.GetSnapshot)
	r.Get("/events", server.SubscribeEvents)
	r.Post("/skip", server.Skip)
	r.Post("/freeze", server.Freeze)
	r.Post("/end", server.End)
	r.Post("/restart", server.Restart)
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ControlRequest is the body of the control endpoints.
// An empty Name targets the root of the plan. Unknown fields are rejected.
type ControlRequest struct {
	Name   string `json:"name"`
	Frozen *bool  `json:"frozen,omitempty"`
}

// GetSnapshot handles GET /snapshot and GET /snapshot/{name}.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.Machine.Snapshot()
	if name := chi.URLParam(r, "name"); name != "" {
		node, ok := snap.Find(name)
		if !ok {
			s.fail(w, fmt.Errorf("%w: %s", domain.ErrStateNotFound, name))
			return
		}
		snap = node
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// Skip handles POST /skip.
func (s *Server) Skip(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.respond(w, s.Machine.Skip(req.Name))
}

// Freeze handles POST /freeze. Frozen defaults to true.
func (s *Server) Freeze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	frozen := true
	if req.Frozen != nil {
		frozen = *req.Frozen
	}
	s.respond(w, s.Machine.Freeze(req.Name, frozen))
}

// End handles POST /end.
func (s *Server) End(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.respond(w, s.Machine.EndState(req.Name))
}

// Restart handles POST /restart.
func (s *Server) Restart(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.Machine.Restart())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cadence-http",
		"version": strings.TrimSpace(cadence.Version),
		"plan":    s.Machine.Snapshot().Name,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (ControlRequest, bool) {
	var req ControlRequest
	if r.ContentLength == 0 {
		return req, true
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return req, false
	}
	return req, true
}

// respond writes the fresh snapshot on success.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Machine.Snapshot())
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrStateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotSkippable):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidPlan), errors.Is(err, domain.ErrUnknownKind):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
	}
}

// Subscribe registers a new client. The returned function unsubscribes it.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends msg to every subscriber, dropping it for clients that are too slow.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// BroadcastDiff serializes diff and broadcasts it. It matches the runner's OnChange hook.
func (sm *StreamManager) BroadcastDiff(_ domain.Snapshot, diff *domain.SnapshotDiff) {
	data, err := json.Marshal(diff)
	if err != nil {
		slog.Error("SSE: failed to encode diff", "err", err)
		return
	}
	sm.Broadcast(string(data))
}

// SubscribeEvents handles the GET /events request (SSE).
// Each event carries a domain.SnapshotDiff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
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
