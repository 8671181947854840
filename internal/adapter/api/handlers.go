package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

// weatherResponse is the envelope every dashboard endpoint returns.
type weatherResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
	Cached    bool   `json:"cached"`
}

type alertsRequest struct {
	State string `json:"state" validate:"required,len=2,alpha"`
}

type forecastRequest struct {
	// Pointers so that zero (the equator / prime meridian) is distinguishable
	// from an absent field.
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type cityForecastRequest struct {
	City string `json:"city" validate:"required,min=1"`
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	var req alertsRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, cached, err := s.weather.Alerts(r.Context(), req.State)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, result, cached)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	coords := domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude}
	result, cached, err := s.weather.Forecast(r.Context(), coords)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSuccess(w, result, cached)
}

func (s *Server) handleCityForecast(w http.ResponseWriter, r *http.Request) {
	var req cityForecastRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		writeFailure(w, http.StatusUnprocessableEntity, "city must not be blank")
		return
	}

	result, cached, err := s.weather.CityForecast(r.Context(), city)
	if err != nil {
		if errors.Is(err, domain.ErrUnresolvable) {
			writeFailure(w, http.StatusNotFound,
				fmt.Sprintf("Could not find coordinates for '%s'. Please try a different city name or use coordinates directly.", city))
			return
		}
		s.writeError(w, err)
		return
	}
	writeSuccess(w, result, cached)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "healthy",
		"timestamp":             time.Now().Format(time.RFC3339),
		"openrouter_configured": s.geocodeEnabled,
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	s.weather.ClearCache()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "cache cleared",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// decodeAndValidate decodes the JSON body into req and runs struct validation,
// writing the failure envelope itself. Returns false when the request is bad.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, validationMessage(err))
		return false
	}
	return true
}

// writeError maps a typed service error onto a status code and failure envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinates):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGeocodeDisabled):
		status = http.StatusServiceUnavailable
		err = errors.New("OpenRouter API key not configured. Please add OPENROUTER_API_KEY to your environment variables.")
	case errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrPointLookup),
		errors.Is(err, domain.ErrForecastLookup):
		status = http.StatusBadGateway
	}
	s.logger.Warn("request failed", "status", status, "error", err)
	writeFailure(w, status, err.Error())
}

func writeSuccess(w http.ResponseWriter, data any, cached bool) {
	writeJSON(w, http.StatusOK, weatherResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
		Cached:    cached,
	})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, weatherResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

// validationMessage flattens the first field error into a readable message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("field %s failed validation on %s", fe.Field(), fe.Tag())
	}
	return "invalid request"
}
