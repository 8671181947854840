package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/api"
	kafkaadapter "github.com/couchcryptid/weather-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/nws"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/openrouter"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
	"github.com/couchcryptid/weather-dashboard-service/internal/service"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	provider := nws.NewClient(cfg, metrics, logger)

	// Geocoding is feature-flagged via OPENROUTER_API_KEY.
	var geocoder domain.Geocoder
	if cfg.GeocodeEnabled() {
		client := openrouter.NewClient(cfg, metrics, logger)
		geocoder = openrouter.NewCachedGeocoder(client, cfg.GeocodeCacheSize)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("openrouter geocoding enabled", "model", cfg.OpenRouterModel, "cache_size", cfg.GeocodeCacheSize)
	} else {
		logger.Info("openrouter geocoding disabled")
	}

	// Alert publishing is feature-flagged via KAFKA_BROKERS.
	var publisher service.AlertPublisher
	var publisherCloser *kafkaadapter.Publisher
	if cfg.PublishEnabled() {
		publisherCloser = kafkaadapter.NewPublisher(cfg, logger)
		publisher = publisherCloser
		logger.Info("kafka alert publishing enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("kafka alert publishing disabled")
	}

	svc := service.New(provider, geocoder, publisher, cfg, clockwork.NewRealClock(), metrics, logger)
	srv := api.NewServer(cfg, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherCloser != nil {
		if err := publisherCloser.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
