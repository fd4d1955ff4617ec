// Package server exposes the document router over HTTP: uploads, status
// queries, a WebSocket status channel and questions about processed
// documents.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/status"
)

// Processor runs an uploaded document through the pipeline.
type Processor interface {
	Process(ctx context.Context, logCtx *slog.Logger, id string, r io.Reader) (models.Outcome, error)
}

// Asker answers questions about processed documents.
type Asker interface {
	Ask(ctx context.Context, req models.AskRequest) (models.AskResponse, error)
}

// Options tunes a Server. Zero values select the defaults.
type Options struct {
	// PollInterval is how often a status channel re-reads the store when its
	// observer has been replaced. Defaults to 100ms.
	PollInterval time.Duration
	// MaxUploadBytes caps multipart uploads. Defaults to 64 MiB.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server serves the HTTP and WebSocket surface over a status store.
type Server struct {
	store     *status.Store
	processor Processor
	asker     Asker

	pollInterval   time.Duration
	maxUploadBytes int64
	logger         *slog.Logger
	upgrader       websocket.Upgrader
}

// New returns a Server; call Routes for its handler.
func New(store *status.Store, processor Processor, asker Asker, opts Options) *Server {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 64 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		store:          store,
		processor:      processor,
		asker:          asker,
		pollInterval:   opts.PollInterval,
		maxUploadBytes: opts.MaxUploadBytes,
		logger:         opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/upload/", s.handleUpload)
		r.Post("/ask", s.handleAsk)
		r.Get("/status/{id}", s.handleGetStatus)
		r.Post("/status/{id}", s.handleSetStatus)
	})
	r.Route("/test", func(r chi.Router) {
		r.Get("/status/{id}", s.handleGetStatus)
		r.Post("/status/{id}", s.handleSetStatus)
	})
	r.Get("/ws/status/{id}", s.handleStatusSocket)

	return r
}

type loggerKey struct{}

// requestLogger attaches a request-scoped logger carrying a request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		logCtx := s.logger.With("requestId", requestID, "method", r.Method, "path", r.URL.Path)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerKey{}, logCtx)))
		logCtx.Debug("Request served.", "duration", time.Since(start))
	})
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
