package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel strings of the text interchange format. These are part of the wire
// contract consumed by the dashboard frontends and recognized by the parsers.
const (
	NoActiveAlerts              = "No active alerts for this state."
	AlertsUnavailable           = "Unable to fetch alerts or no alerts found."
	ForecastUnavailable         = "Unable to fetch forecast data for this location."
	DetailedForecastUnavailable = "Unable to fetch detailed forecast."
)

// blockSeparator joins formatted alert and forecast blocks.
const blockSeparator = "\n---\n"

// Placeholder values applied when upstream alert fields are absent.
const (
	UnknownField           = "Unknown"
	NoDescription          = "No description available"
	NoSpecificInstructions = "No specific instructions provided"
)

// FormatAlerts renders alerts into separator-joined text blocks. An empty
// slice yields the NoActiveAlerts sentinel.
func FormatAlerts(alerts []Alert) string {
	if len(alerts) == 0 {
		return NoActiveAlerts
	}
	blocks := make([]string, len(alerts))
	for i, a := range alerts {
		blocks[i] = fmt.Sprintf("\nEvent: %s\nArea: %s\nSeverity: %s\nDescription: %s\nInstructions: %s\n",
			a.Event, a.Area, a.Severity, a.Description, a.Instructions)
	}
	return strings.Join(blocks, blockSeparator)
}

// FormatForecast renders forecast periods into separator-joined text blocks.
// The caller is expected to have truncated to the retained period count.
func FormatForecast(periods []ForecastPeriod) string {
	blocks := make([]string, len(periods))
	for i, p := range periods {
		blocks[i] = fmt.Sprintf("\n%s:\nTemperature: %d°%s\nWind: %s %s\nForecast: %s\n",
			p.Name, p.Temperature, p.TemperatureUnit, p.WindSpeed, p.WindDirection, p.DetailedForecast)
	}
	return strings.Join(blocks, blockSeparator)
}

// AlertsText is the complete fetcher-output contract for alerts: failures
// collapse to the AlertsUnavailable sentinel, success renders via FormatAlerts.
func AlertsText(alerts []Alert, err error) string {
	if err != nil {
		return AlertsUnavailable
	}
	return FormatAlerts(alerts)
}

// ForecastText is the fetcher-output contract for forecasts. The two lookup
// hops fail with distinct sentinels: a point-metadata failure yields
// ForecastUnavailable, a forecast-document failure yields
// DetailedForecastUnavailable.
func ForecastText(periods []ForecastPeriod, err error) string {
	switch {
	case errors.Is(err, ErrForecastLookup):
		return DetailedForecastUnavailable
	case err != nil:
		return ForecastUnavailable
	}
	return FormatForecast(periods)
}
