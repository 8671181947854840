// Package api exposes the dashboard HTTP API plus the health, readiness, and
// metrics endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/service"
)

// WeatherService is the service surface the handlers dispatch to.
type WeatherService interface {
	Alerts(ctx context.Context, state string) (service.AlertsResult, bool, error)
	Forecast(ctx context.Context, coords domain.Coordinates) (service.ForecastResult, bool, error)
	CityForecast(ctx context.Context, city string) (service.ForecastResult, bool, error)
	ClearCache()
	CheckReadiness(ctx context.Context) error
}

// Server wires the chi router to the weather service.
type Server struct {
	httpServer     *http.Server
	weather        WeatherService
	validate       *validator.Validate
	logger         *slog.Logger
	geocodeEnabled bool
}

// NewServer creates the HTTP server with the dashboard and ops routes mounted.
func NewServer(cfg *config.Config, weather WeatherService, logger *slog.Logger) *Server {
	s := &Server{
		weather:        weather,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		logger:         logger,
		geocodeEnabled: cfg.GeocodeEnabled(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/alerts", s.handleAlerts)
		r.Post("/forecast", s.handleForecast)
		r.Post("/forecast/city", s.handleCityForecast)
		r.Get("/health", s.handleHealth)
		r.Post("/cache/clear", s.handleCacheClear)
	})

	r.Get("/healthz", s.handleLiveness)
	r.Get("/readyz", s.handleReadiness)
	r.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// Forecast requests make two sequential upstream calls, each with its
		// own fixed timeout, so the write deadline must cover both.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.weather.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestLogger records one debug line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
