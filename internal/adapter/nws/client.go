// Package nws is the adapter for the National Weather Service REST API.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// maxForecastPeriods caps how many forecast periods are retained.
const maxForecastPeriods = 5

// Client talks to the NWS API. All requests flow through a shared circuit
// breaker so a flapping upstream trips fast instead of tying up handlers.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NWS API client from config.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "nws",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:   cfg.NWSBaseURL,
		userAgent: cfg.NWSUserAgent,
		httpClient: &http.Client{
			Timeout: cfg.NWSTimeout,
		},
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

// ActiveAlerts fetches the active alerts for a two-letter state code. An empty
// slice with a nil error means the state has no active alerts; failures wrap
// domain.ErrUpstream.
func (c *Client) ActiveAlerts(ctx context.Context, state string) ([]domain.Alert, error) {
	u := fmt.Sprintf("%s/alerts/active/area/%s", c.baseURL, url.PathEscape(strings.ToUpper(state)))

	var resp alertsResponse
	if err := c.getJSON(ctx, u, "alerts", &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	if resp.Features == nil {
		return nil, fmt.Errorf("%w: response missing features", domain.ErrUpstream)
	}

	alerts := make([]domain.Alert, 0, len(*resp.Features))
	for _, f := range *resp.Features {
		alerts = append(alerts, domain.Alert{
			Event:        orDefault(f.Properties.Event, domain.UnknownField),
			Area:         orDefault(f.Properties.AreaDesc, domain.UnknownField),
			Severity:     orDefault(f.Properties.Severity, domain.UnknownField),
			Description:  orDefault(f.Properties.Description, domain.NoDescription),
			Instructions: orDefault(f.Properties.Instruction, domain.NoSpecificInstructions),
		})
	}
	return alerts, nil
}

// Forecast fetches the forecast for a coordinate pair: first the point
// metadata to learn the forecast document URL, then the document itself. At
// most maxForecastPeriods periods are returned, in upstream order. First-hop
// failures wrap domain.ErrPointLookup, second-hop domain.ErrForecastLookup.
func (c *Client) Forecast(ctx context.Context, coords domain.Coordinates) ([]domain.ForecastPeriod, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	pointsURL := fmt.Sprintf("%s/points/%s", c.baseURL, coords)
	var point pointResponse
	if err := c.getJSON(ctx, pointsURL, "points", &point); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPointLookup, err)
	}
	if point.Properties.Forecast == "" {
		return nil, fmt.Errorf("%w: point metadata has no forecast URL", domain.ErrPointLookup)
	}

	var forecast forecastResponse
	if err := c.getJSON(ctx, point.Properties.Forecast, "forecast", &forecast); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrForecastLookup, err)
	}

	raw := forecast.Properties.Periods
	if len(raw) > maxForecastPeriods {
		raw = raw[:maxForecastPeriods]
	}
	periods := make([]domain.ForecastPeriod, len(raw))
	for i, p := range raw {
		periods[i] = domain.ForecastPeriod{
			Name:             p.Name,
			Temperature:      p.Temperature,
			TemperatureUnit:  p.TemperatureUnit,
			WindSpeed:        p.WindSpeed,
			WindDirection:    p.WindDirection,
			DetailedForecast: p.DetailedForecast,
		}
	}
	return periods, nil
}

// Healthy reports an error while the circuit breaker is open.
func (c *Client) Healthy() error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("nws circuit breaker open")
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", endpoint, err)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, fmt.Errorf("nws API error: status %d: %s", resp.StatusCode, body)
		}
		return resp, nil
	})
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamErrors.WithLabelValues(endpoint).Inc()
		c.logger.Warn("nws request failed", "endpoint", endpoint, "url", fullURL, "error", err)
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.UpstreamErrors.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// NWS API response types.

type alertsResponse struct {
	// Pointer distinguishes a missing features field (malformed response)
	// from an empty feature list (no active alerts).
	Features *[]alertFeature `json:"features"`
}

type alertFeature struct {
	Properties struct {
		Event       string `json:"event"`
		AreaDesc    string `json:"areaDesc"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
		Instruction string `json:"instruction"`
	} `json:"properties"`
}

type pointResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []struct {
			Name             string `json:"name"`
			Temperature      int    `json:"temperature"`
			TemperatureUnit  string `json:"temperatureUnit"`
			WindSpeed        string `json:"windSpeed"`
			WindDirection    string `json:"windDirection"`
			DetailedForecast string `json:"detailedForecast"`
		} `json:"periods"`
	} `json:"properties"`
}
