// Package service is the request dispatch core: it resolves a location to
// weather data through the upstream adapters, renders results through the text
// interchange format, and fronts everything with the TTL cache.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-dashboard-service/internal/cache"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// WeatherProvider fetches alert and forecast data for a location.
type WeatherProvider interface {
	ActiveAlerts(ctx context.Context, state string) ([]domain.Alert, error)
	Forecast(ctx context.Context, coords domain.Coordinates) ([]domain.ForecastPeriod, error)
	Healthy() error
}

// AlertPublisher fans fresh alert batches out to downstream consumers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, state string, alerts []domain.Alert) error
}

// AlertsResult is the structured payload for a state alert lookup.
type AlertsResult struct {
	State  string          `json:"state"`
	Alerts []domain.Fields `json:"alerts"`
	Count  int             `json:"count"`
}

// ForecastResult is the structured payload for a coordinate or city forecast.
type ForecastResult struct {
	City        string          `json:"city,omitempty"`
	Coordinates [2]float64      `json:"coordinates"`
	Forecast    []domain.Fields `json:"forecast"`
	Location    string          `json:"location"`
}

// Service orchestrates lookups. Pass a nil geocoder to disable city
// resolution and a nil publisher to disable alert fan-out.
type Service struct {
	provider  WeatherProvider
	geocoder  domain.Geocoder
	publisher AlertPublisher

	alertsCache   *cache.Cache[AlertsResult]
	forecastCache *cache.Cache[ForecastResult]

	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Service with caches sized from config.
func New(
	provider WeatherProvider,
	geocoder domain.Geocoder,
	publisher AlertPublisher,
	cfg *config.Config,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		provider:      provider,
		geocoder:      geocoder,
		publisher:     publisher,
		alertsCache:   cache.New[AlertsResult](cfg.CacheTTL, cfg.CacheMaxEntries, clock),
		forecastCache: cache.New[ForecastResult](cfg.CacheTTL, cfg.CacheMaxEntries, clock),
		metrics:       metrics,
		logger:        logger,
	}
}

// Alerts returns the active alerts for a two-letter state code. The cached
// flag reports whether the result was served from the TTL cache.
func (s *Service) Alerts(ctx context.Context, state string) (AlertsResult, bool, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	key := "alerts:" + state

	result, cached, err := s.alertsCache.Do(ctx, key, func(ctx context.Context) (AlertsResult, error) {
		alerts, err := s.provider.ActiveAlerts(ctx, state)
		if err != nil {
			return AlertsResult{}, err
		}

		// Text is the canonical interchange form: render, then parse back
		// into the record shape the dashboards consume.
		records := domain.ParseAlerts(domain.AlertsText(alerts, nil))
		s.publish(ctx, state, alerts)

		return AlertsResult{State: state, Alerts: records, Count: len(records)}, nil
	})

	s.observe("alerts", key, cached, err)
	return result, cached, err
}

// Forecast returns the forecast for a coordinate pair.
func (s *Service) Forecast(ctx context.Context, coords domain.Coordinates) (ForecastResult, bool, error) {
	if err := coords.Validate(); err != nil {
		s.metrics.RequestsTotal.WithLabelValues("forecast", "error").Inc()
		return ForecastResult{}, false, err
	}
	key := "forecast:" + coords.String()

	result, cached, err := s.forecastCache.Do(ctx, key, func(ctx context.Context) (ForecastResult, error) {
		records, err := s.fetchForecast(ctx, coords)
		if err != nil {
			return ForecastResult{}, err
		}
		return ForecastResult{
			Coordinates: [2]float64{coords.Lat, coords.Lon},
			Forecast:    records,
			Location:    fmt.Sprintf("Lat: %.4f, Lon: %.4f", coords.Lat, coords.Lon),
		}, nil
	})

	s.observe("forecast", key, cached, err)
	return result, cached, err
}

// CityForecast resolves a city name through the geocoder and returns its
// forecast. Returns domain.ErrGeocodeDisabled when no geocoder is configured.
func (s *Service) CityForecast(ctx context.Context, city string) (ForecastResult, bool, error) {
	city = strings.TrimSpace(city)
	if s.geocoder == nil {
		s.metrics.RequestsTotal.WithLabelValues("city_forecast", "error").Inc()
		return ForecastResult{}, false, domain.ErrGeocodeDisabled
	}
	key := "city_forecast:" + strings.ToLower(city)

	result, cached, err := s.forecastCache.Do(ctx, key, func(ctx context.Context) (ForecastResult, error) {
		coords, err := s.geocoder.Resolve(ctx, city)
		if err != nil {
			return ForecastResult{}, err
		}
		records, err := s.fetchForecast(ctx, coords)
		if err != nil {
			return ForecastResult{}, err
		}
		return ForecastResult{
			City:        city,
			Coordinates: [2]float64{coords.Lat, coords.Lon},
			Forecast:    records,
			Location:    fmt.Sprintf("%s (%.4f, %.4f)", city, coords.Lat, coords.Lon),
		}, nil
	})

	s.observe("city_forecast", key, cached, err)
	return result, cached, err
}

// ClearCache drops every cached result.
func (s *Service) ClearCache() {
	s.alertsCache.Clear()
	s.forecastCache.Clear()
	s.logger.Info("result cache cleared")
}

// CheckReadiness reports whether the upstream provider is usable.
func (s *Service) CheckReadiness(_ context.Context) error {
	return s.provider.Healthy()
}

// fetchForecast runs the provider lookup and the format/parse round trip,
// attaching the display emoji to each record.
func (s *Service) fetchForecast(ctx context.Context, coords domain.Coordinates) ([]domain.Fields, error) {
	periods, err := s.provider.Forecast(ctx, coords)
	if err != nil {
		return nil, err
	}
	records := domain.ParseForecast(domain.ForecastText(periods, nil))
	for _, rec := range records {
		rec["emoji"] = domain.WeatherEmoji(rec["name"], rec["Forecast"])
	}
	return records, nil
}

// publish hands a fresh non-empty alert batch to the publisher. Failures are
// logged and counted, never surfaced to the caller.
func (s *Service) publish(ctx context.Context, state string, alerts []domain.Alert) {
	if s.publisher == nil || len(alerts) == 0 {
		return
	}
	if err := s.publisher.PublishAlerts(ctx, state, alerts); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("alert publish failed", "state", state, "count", len(alerts), "error", err)
		return
	}
	s.metrics.AlertsPublished.Inc()
}

func (s *Service) observe(kind, key string, cached bool, err error) {
	if err != nil {
		s.metrics.RequestsTotal.WithLabelValues(kind, "error").Inc()
		return
	}
	s.metrics.RequestsTotal.WithLabelValues(kind, "success").Inc()
	if cached {
		s.metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	} else {
		s.metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
	}
	s.logger.Debug("request served", "kind", kind, "key", key, "cached", cached)
}
