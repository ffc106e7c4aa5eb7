// Package api provides the HTTP REST API server for indexadvisor.
//
// It exposes index evaluation, comparison, the recommendation log and
// store statistics as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/indexadvisor/internal/advisor"
	"github.com/seenimoa/indexadvisor/internal/config"
	"github.com/seenimoa/indexadvisor/internal/store"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// Version is reported by the health endpoint. It is set by the CLI.
var Version = "dev"

// Advisor is the evaluation surface the server needs.
type Advisor interface {
	Evaluate(ctx context.Context, id string, risk models.RiskTolerance) (models.Recommendation, error)
	EvaluateAll(ctx context.Context, ids []string, risk models.RiskTolerance) (*advisor.Batch, error)
	Compare(recs map[string]models.Recommendation) (models.ComparisonResult, error)
	IndexIDs() []string
}

// History reads the recommendation log and store statistics.
type History interface {
	Recommendations(ctx context.Context, f store.RecommendationFilter) ([]models.Recommendation, error)
	Stats(ctx context.Context) ([]store.TableStats, error)
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	adv     Advisor
	history History
	log     zerolog.Logger
	timeout time.Duration
}

// Option customizes a Server.
type Option func(*Server)

// WithHistory enables the /recommendations and /stats endpoints.
func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// WithTimeout bounds every evaluation request. The default is two minutes.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, adv Advisor, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		adv:     adv,
		log:     log.With().Str("component", "api").Logger(),
		timeout: 2 * time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/indices", s.handleIndices)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.timeout))
			r.Get("/evaluate", s.handleEvaluateAll)
			r.Get("/evaluate/{index}", s.handleEvaluate)
			r.Get("/compare", s.handleCompare)
		})

		r.Get("/recommendations", s.handleRecommendations)
		r.Get("/stats", s.handleStats)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// requestLogger logs one line per request through zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// ════════════════════════════════════════════════════════════════════
// Request / Response types
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchResponse is the body of GET /api/v1/evaluate.
type BatchResponse struct {
	RunID           string                           `json:"run_id"`
	AsOf            time.Time                        `json:"as_of"`
	Recommendations map[string]models.Recommendation `json:"recommendations"`
	Failures        map[string]string                `json:"failures,omitempty"`
}

// CompareResponse is the body of GET /api/v1/compare.
type CompareResponse struct {
	BatchResponse
	Comparison models.ComparisonResult `json:"comparison"`
}

func newBatchResponse(b *advisor.Batch) BatchResponse {
	resp := BatchResponse{RunID: b.RunID, AsOf: b.AsOf, Recommendations: b.Recommendations}
	if len(b.Failures) > 0 {
		resp.Failures = make(map[string]string, len(b.Failures))
		for id, err := range b.Failures {
			resp.Failures[id] = err.Error()
		}
	}
	return resp
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
