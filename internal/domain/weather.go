package domain

import "fmt"

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the pair falls within geographic bounds.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: %.4f,%.4f", ErrInvalidCoordinates, c.Lat, c.Lon)
	}
	return nil
}

// String renders the pair in the 4-decimal form used for NWS point lookups
// and cache fingerprints.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Alert is one active weather alert. All fields are free text; missing
// upstream values carry the placeholder defaults applied by the NWS adapter.
type Alert struct {
	Event        string `json:"event"`
	Area         string `json:"area"`
	Severity     string `json:"severity"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
}

// ForecastPeriod is one entry of an NWS forecast document, e.g. "Tonight".
type ForecastPeriod struct {
	Name             string `json:"name"`
	Temperature      int    `json:"temperature"`
	TemperatureUnit  string `json:"temperature_unit"`
	WindSpeed        string `json:"wind_speed"`
	WindDirection    string `json:"wind_direction"`
	DetailedForecast string `json:"detailed_forecast"`
}

// Fields is a parsed text record: one block of the interchange format reduced
// to its colon-delimited fields. This is the shape the dashboard payloads use.
type Fields map[string]string
