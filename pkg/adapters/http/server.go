package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/workpad"
	"github.com/aretw0/workpad/internal/logging"
	"github.com/aretw0/workpad/pkg/codec"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Sessions is the workpad access the server needs (implemented by session.Manager).
type Sessions interface {
	Create(ctx context.Context, wp *domain.Workpad) error
	Load(ctx context.Context, id string) (*domain.Workpad, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Apply(ctx context.Context, id string, cmds ...domain.Command) (*domain.Workpad, *domain.WorkpadDiff, error)
}

// Server serves the workpad HTTP API.
type Server struct {
	Sessions Sessions
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler over sessions.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/workpads", func(r chi.Router) {
		r.Get("/", s.ListWorkpads)
		r.Post("/", s.CreateWorkpad)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetWorkpad)
			r.Delete("/", s.DeleteWorkpad)
			r.Post("/commands", s.ApplyCommands)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/pages/{pageId}/elements/{elementId}", s.GetElement)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "workpad-http",
		"version":     strings.TrimSpace(workpad.Version),
		"api_version": apiVersion,
	})
}

// ListWorkpads handles GET /workpads.
func (s *Server) ListWorkpads(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "List", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateWorkpad handles POST /workpads. A missing ID is generated.
func (s *Server) CreateWorkpad(w http.ResponseWriter, r *http.Request) {
	var wp domain.Workpad
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&wp); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid workpad body: %w", err))
		return
	}
	if wp.ID == "" {
		wp.ID = "workpad-" + uuid.NewString()
	}
	if wp.Pages == nil {
		wp.Pages = []domain.Page{}
	}

	if err := s.Sessions.Create(r.Context(), &wp); err != nil {
		s.fail(w, "Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, &wp)
}

// GetWorkpad handles GET /workpads/{id}.
func (s *Server) GetWorkpad(w http.ResponseWriter, r *http.Request) {
	wp, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Load", err)
		return
	}
	writeJSON(w, http.StatusOK, wp)
}

// DeleteWorkpad handles DELETE /workpads/{id}.
func (s *Server) DeleteWorkpad(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyCommands handles POST /workpads/{id}/commands.
func (s *Server) ApplyCommands(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}
	cmds, err := codec.DecodeScriptCommands(data, codec.FormatJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		s.logger.Warn("ApplyCommands: Invalid commands", "workpad_id", id, "err", err)
		return
	}
	for i, cmd := range cmds {
		cmds[i] = withElementID(cmd)
	}

	wp, diff, err := s.Sessions.Apply(r.Context(), id, cmds...)
	if err != nil {
		s.fail(w, "Apply", err)
		return
	}

	if diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(payload))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workpad": wp,
		"diff":    diff,
	})
}

// GetElement handles GET /workpads/{id}/pages/{pageId}/elements/{elementId}.
func (s *Server) GetElement(w http.ResponseWriter, r *http.Request) {
	wp, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Load", err)
		return
	}

	el, _, ok := wp.FindNode(chi.URLParam(r, "pageId"), chi.URLParam(r, "elementId"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("element not found"))
		return
	}
	writeJSON(w, http.StatusOK, el)
}

// SubscribeEvents handles GET /workpads/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Subscribed to workpad updates", "workpad_id", id)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrWorkpadNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrWorkpadExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidMovement), errors.Is(err, domain.ErrUnknownCommand):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	}
	writeError(w, status, err)
}

// withElementID fills in a fresh ID for add/duplicate payloads that omit one.
func withElementID(cmd domain.Command) domain.Command {
	switch c := cmd.(type) {
	case domain.AddElement:
		c.Element = ensureID(c.Element)
		return c
	case domain.DuplicateElement:
		c.Element = ensureID(c.Element)
		return c
	}
	return cmd
}

func ensureID(el domain.Element) domain.Element {
	if el.ID != "" {
		return el
	}
	if el.IsGroup() {
		el.ID = domain.NewGroupID()
	} else {
		el.ID = domain.NewElementID()
	}
	return el
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
