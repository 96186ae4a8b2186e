// Package http exposes stored documents over a JSON/HTML API built on chi.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server holds the handler dependencies.
type Server struct {
	Sessions  *session.Manager
	Streams   *StreamManager
	Publisher ports.Publisher
	Metrics   http.Handler
	Logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams sets the SSE broadcaster. Wire the same manager into the session
// manager with session.WithCommitHook(streams.Publish) so edits reach clients.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// WithPublisher enables publishing exports to object storage.
func WithPublisher(p ports.Publisher) Option {
	return func(s *Server) {
		s.Publisher = p
	}
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for the documents held by sessions.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{Sessions: sessions}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}
	return s.Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Route("/{doc}", func(r chi.Router) {
			r.Get("/", s.GetDocument)
			r.Put("/", s.PutDocument)
			r.Delete("/", s.DeleteDocument)

			r.Get("/nodes", s.ListNodes)
			r.Post("/nodes", s.AddNode)
			r.Patch("/nodes/{node}", s.UpdateNode)
			r.Delete("/nodes/{node}", s.DeleteNode)
			r.Post("/nodes/{node}/move", s.MoveNode)
			r.Post("/pages/{page}/roots/{node}", s.AssignPage)

			r.Post("/import", s.Import)
			r.Get("/html", s.GetHTML)
			r.Post("/export", s.Export)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
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
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": pagecraft.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
