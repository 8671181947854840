package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/service"
)

type stubWeather struct {
	alertsResult   service.AlertsResult
	alertsCached   bool
	alertsErr      error
	forecastResult service.ForecastResult
	forecastCached bool
	forecastErr    error
	cityErr        error
	readinessErr   error
	cacheCleared   bool

	lastState  string
	lastCoords domain.Coordinates
	lastCity   string
}

func (s *stubWeather) Alerts(_ context.Context, state string) (service.AlertsResult, bool, error) {
	s.lastState = state
	return s.alertsResult, s.alertsCached, s.alertsErr
}

func (s *stubWeather) Forecast(_ context.Context, coords domain.Coordinates) (service.ForecastResult, bool, error) {
	s.lastCoords = coords
	return s.forecastResult, s.forecastCached, s.forecastErr
}

func (s *stubWeather) CityForecast(_ context.Context, city string) (service.ForecastResult, bool, error) {
	s.lastCity = city
	return s.forecastResult, s.forecastCached, s.cityErr
}

func (s *stubWeather) ClearCache() { s.cacheCleared = true }

func (s *stubWeather) CheckReadiness(_ context.Context) error { return s.readinessErr }

func testServer(t *testing.T, weather WeatherService, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{
			HTTPAddr:           ":0",
			CORSAllowedOrigins: []string{"*"},
		}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, weather, logger)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, weatherResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var resp weatherResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHandleAlerts_Success(t *testing.T) {
	weather := &stubWeather{
		alertsResult: service.AlertsResult{
			State:  "TX",
			Alerts: []domain.Fields{{"Event": "Flood Warning"}},
			Count:  1,
		},
	}
	srv := testServer(t, weather, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/alerts", `{"state":"TX"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.False(t, resp.Cached)
	assert.Empty(t, resp.Error)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, "TX", weather.lastState)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "TX", data["state"])
	assert.Equal(t, float64(1), data["count"])
}

func TestHandleAlerts_CachedFlag(t *testing.T) {
	weather := &stubWeather{alertsResult: service.AlertsResult{State: "TX"}, alertsCached: true}
	srv := testServer(t, weather, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/alerts", `{"state":"TX"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Cached)
}

func TestHandleAlerts_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing state", `{}`},
		{"too long", `{"state":"Texas"}`},
		{"non-alpha", `{"state":"T1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, &stubWeather{}, nil)
			rec, resp := doJSON(t, srv, http.MethodPost, "/api/alerts", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleAlerts_BadJSON(t *testing.T) {
	srv := testServer(t, &stubWeather{}, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/alerts", `{"state":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", resp.Error)
}

func TestHandleAlerts_UpstreamFailure(t *testing.T) {
	weather := &stubWeather{alertsErr: domain.ErrUpstream}
	srv := testServer(t, weather, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/alerts", `{"state":"TX"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, resp.Success)
}

func TestHandleForecast_Success(t *testing.T) {
	weather := &stubWeather{
		forecastResult: service.ForecastResult{
			Coordinates: [2]float64{30.2672, -97.7431},
			Forecast:    []domain.Fields{{"name": "Tonight"}},
			Location:    "Lat: 30.2672, Lon: -97.7431",
		},
	}
	srv := testServer(t, weather, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/forecast", `{"latitude":30.2672,"longitude":-97.7431}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.Coordinates{Lat: 30.2672, Lon: -97.7431}, weather.lastCoords)
}

func TestHandleForecast_ZeroCoordinatesAccepted(t *testing.T) {
	weather := &stubWeather{}
	srv := testServer(t, weather, nil)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/forecast", `{"latitude":0,"longitude":0}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Coordinates{Lat: 0, Lon: 0}, weather.lastCoords)
}

func TestHandleForecast_MissingLongitude(t *testing.T) {
	srv := testServer(t, &stubWeather{}, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/forecast", `{"latitude":30.2672}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, resp.Error, "Longitude")
}

func TestHandleForecast_OutOfRange(t *testing.T) {
	srv := testServer(t, &stubWeather{}, nil)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/forecast", `{"latitude":95,"longitude":0}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCityForecast_Success(t *testing.T) {
	weather := &stubWeather{
		forecastResult: service.ForecastResult{
			City:        "Austin",
			Coordinates: [2]float64{30.2672, -97.7431},
			Location:    "Austin (30.2672, -97.7431)",
		},
	}
	srv := testServer(t, weather, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/forecast/city", `{"city":"  Austin  "}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Austin", weather.lastCity, "city is trimmed before dispatch")
}

func TestHandleCityForecast_Unresolvable(t *testing.T) {
	weather := &stubWeather{cityErr: domain.ErrUnresolvable}
	srv := testServer(t, weather, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/forecast/city", `{"city":"Atlantis"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Could not find coordinates for 'Atlantis'. Please try a different city name or use coordinates directly.", resp.Error)
}

func TestHandleCityForecast_GeocodingDisabled(t *testing.T) {
	weather := &stubWeather{cityErr: domain.ErrGeocodeDisabled}
	srv := testServer(t, weather, nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/forecast/city", `{"city":"Austin"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "OpenRouter API key not configured. Please add OPENROUTER_API_KEY to your environment variables.", resp.Error)
}

func TestHandleCityForecast_BlankCity(t *testing.T) {
	srv := testServer(t, &stubWeather{}, nil)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/forecast/city", `{"city":"   "}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	cfg := &config.Config{
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		OpenRouterAPIKey:   "sk-or-test",
	}
	srv := testServer(t, &stubWeather{}, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["openrouter_configured"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestHandleCacheClear(t *testing.T) {
	weather := &stubWeather{}
	srv := testServer(t, weather, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, weather.cacheCleared)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cache cleared", body["status"])
}

func TestLivenessAndReadiness(t *testing.T) {
	srv := testServer(t, &stubWeather{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_UpstreamDown(t *testing.T) {
	weather := &stubWeather{readinessErr: errors.New("circuit open")}
	srv := testServer(t, weather, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Contains(t, body["error"], "circuit open")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t, &stubWeather{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
