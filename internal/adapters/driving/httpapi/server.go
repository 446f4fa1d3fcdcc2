// Package httpapi exposes the evaluation pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/evaluate          JSON {"text": ...} or multipart "file"
//	POST /v1/classify          same input as /v1/evaluate
//	GET  /v1/checklists
//	GET  /v1/checklists/{type}
//
// POST /v1/evaluate?annotate=true with a DOCX upload returns the annotated
// document instead of the JSON report.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// DefaultMaxUploadBytes bounds request bodies.
const DefaultMaxUploadBytes = 20 << 20

// ErrMissingEvaluationService is returned when the evaluation service is not provided.
var ErrMissingEvaluationService = errors.New("httpapi: evaluation service is required")

// Ports aggregates the driving ports the API serves.
type Ports struct {
	// Evaluation is required.
	Evaluation driving.EvaluationService

	// Reports renders JSON reports and annotated documents.
	Reports driving.ReportService

	// Documents reads uploaded files.
	Documents driving.DocumentService
}

// Config holds API settings.
type Config struct {
	// AllowedOrigins lists CORS origins (default: any).
	AllowedOrigins []string

	// MaxUploadBytes bounds request bodies (default: 20 MiB).
	MaxUploadBytes int64
}

// Server serves the HTTP API.
type Server struct {
	ports   *Ports
	cfg     Config
	handler http.Handler
}

// NewServer creates the API server and its router.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil || ports.Evaluation == nil {
		return nil, ErrMissingEvaluationService
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{ports: ports, cfg: cfg}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/classify", s.handleClassify)
		r.Get("/checklists", s.handleChecklists)
		r.Get("/checklists/{type}", s.handleChecklist)
	})
	return r
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
