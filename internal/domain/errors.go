package domain

import "errors"

// Sentinel errors for the differentiated failure kinds. Adapters wrap these
// with fmt.Errorf("...: %w", ...) so callers can classify via errors.Is while
// logs keep the underlying cause.
var (
	// ErrUpstream covers transport, HTTP, and decode failures talking to the
	// NWS alerts endpoint.
	ErrUpstream = errors.New("weather service unavailable")

	// ErrPointLookup is a failure on the first forecast hop (coordinate to
	// forecast-zone metadata).
	ErrPointLookup = errors.New("point lookup failed")

	// ErrForecastLookup is a failure on the second forecast hop (fetching the
	// forecast document named by the point metadata).
	ErrForecastLookup = errors.New("forecast lookup failed")

	// ErrInvalidCoordinates marks a latitude/longitude pair outside
	// [-90,90]/[-180,180].
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	// ErrGeocodeDisabled is returned for city lookups when no geocoding
	// provider is configured.
	ErrGeocodeDisabled = errors.New("geocoding not configured")

	// ErrUnresolvable means the geocoding provider could not produce valid
	// coordinates for a city name, for any reason.
	ErrUnresolvable = errors.New("could not resolve location")
)
