package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlerts_Sentinels(t *testing.T) {
	assert.Empty(t, ParseAlerts(NoActiveAlerts))
	assert.Empty(t, ParseAlerts(AlertsUnavailable))
}

func TestParseAlerts_RecoversRecordCount(t *testing.T) {
	alerts := make([]Alert, 3)
	for i := range alerts {
		alerts[i] = Alert{
			Event:        fmt.Sprintf("Event %d", i),
			Area:         "Somewhere",
			Severity:     "Moderate",
			Description:  "Something is happening.",
			Instructions: "Stay inside.",
		}
	}

	records := ParseAlerts(FormatAlerts(alerts))
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("Event %d", i), rec["Event"])
		assert.Len(t, rec, 5)
	}
}

func TestParseAlerts_RoundTrip(t *testing.T) {
	alert := Alert{
		Event:        "Severe Thunderstorm Warning",
		Area:         "Bexar County, TX",
		Severity:     "Severe",
		Description:  "Quarter size hail and 60 mph wind gusts.",
		Instructions: "Seek shelter in a sturdy building.",
	}

	records := ParseAlerts(FormatAlerts([]Alert{alert}))
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, alert.Event, rec["Event"])
	assert.Equal(t, alert.Area, rec["Area"])
	assert.Equal(t, alert.Severity, rec["Severity"])
	assert.Equal(t, alert.Description, rec["Description"])
	assert.Equal(t, alert.Instructions, rec["Instructions"])
}

func TestParseAlerts_ValueWithColonSurvives(t *testing.T) {
	alert := sampleAlert()
	alert.Description = "Warning: water levels above 12 ft"

	records := ParseAlerts(FormatAlerts([]Alert{alert}))
	require.Len(t, records, 1)
	assert.Equal(t, "Warning: water levels above 12 ft", records[0]["Description"])
}

func TestParseForecast_Sentinels(t *testing.T) {
	assert.Empty(t, ParseForecast(ForecastUnavailable))
	assert.Empty(t, ParseForecast(DetailedForecastUnavailable))
}

func TestParseForecast_RoundTripPreservesOrder(t *testing.T) {
	periods := []ForecastPeriod{
		{Name: "Tonight", Temperature: 61, TemperatureUnit: "F", WindSpeed: "5 mph", WindDirection: "SE", DetailedForecast: "Clear skies."},
		{Name: "Tuesday", Temperature: 84, TemperatureUnit: "F", WindSpeed: "10 to 15 mph", WindDirection: "S", DetailedForecast: "Sunny and hot."},
		{Name: "Tuesday Night", Temperature: 66, TemperatureUnit: "F", WindSpeed: "5 mph", WindDirection: "SSE", DetailedForecast: "Mostly cloudy."},
	}

	records := ParseForecast(FormatForecast(periods))
	require.Len(t, records, len(periods))

	for i, p := range periods {
		rec := records[i]
		assert.Equal(t, p.Name, rec["name"])
		assert.Equal(t, fmt.Sprintf("%d°%s", p.Temperature, p.TemperatureUnit), rec["Temperature"])
		assert.Equal(t, fmt.Sprintf("%s %s", p.WindSpeed, p.WindDirection), rec["Wind"])
		assert.Equal(t, p.DetailedForecast, rec["Forecast"])
	}
}

func TestParseForecast_DropsNameOnlyBlocks(t *testing.T) {
	records := ParseForecast("\nTonight:\n\n---\n\nTuesday:\nTemperature: 84°F\n")
	require.Len(t, records, 1)
	assert.Equal(t, "Tuesday", records[0]["name"])
}
