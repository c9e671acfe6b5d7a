package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/metrics"
)

// PaymentRuleRunner fires every due payment rule
type PaymentRuleRunner interface {
	ExecuteDueRules(ctx context.Context) (*domain.BatchResult, error)
}

// PriceRefresher re-values every quoted asset
type PriceRefresher interface {
	RefreshAll(ctx context.Context) (*domain.BatchResult, error)
}

// Config holds server configuration
type Config struct {
	Addr       string
	CronSecret string
	Rules      PaymentRuleRunner
	Prices     PriceRefresher
	Log        zerolog.Logger
}

// Server serves health, metrics and the cron trigger endpoints
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	cronSecret string
	rules      PaymentRuleRunner
	prices     PriceRefresher
	now        func() time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "http").Logger(),
		cronSecret: cfg.CronSecret,
		rules:      cfg.Rules,
		prices:     cfg.Prices,
		now:        time.Now,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a full price refresh is throttled
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.Middleware)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api/cron", func(r chi.Router) {
		r.Use(s.cronAuth)
		r.Get("/execute-payment-rules", s.handleExecutePaymentRules)
		r.Get("/refresh-prices", s.handleRefreshPrices)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
