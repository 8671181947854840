package domain

import "strings"

// WeatherEmoji picks a display emoji from the period name and forecast text.
// Night periods get the night set; keyword checks run in priority order, so
// precipitation beats cloud cover.
func WeatherEmoji(periodName, forecast string) string {
	name := strings.ToLower(periodName)
	fc := strings.ToLower(forecast)

	if strings.Contains(name, "night") || strings.Contains(name, "tonight") {
		switch {
		case containsAny(fc, "rain", "shower", "storm"):
			return "🌧️"
		case containsAny(fc, "snow", "blizzard"):
			return "❄️"
		case strings.Contains(fc, "cloud"):
			return "☁️"
		default:
			return "🌙"
		}
	}

	switch {
	case containsAny(fc, "rain", "shower", "storm", "thunderstorm"):
		if strings.Contains(fc, "thunder") || strings.Contains(fc, "storm") {
			return "⛈️"
		}
		return "🌧️"
	case containsAny(fc, "snow", "blizzard"):
		return "🌨️"
	case containsAny(fc, "cloud", "overcast"):
		return "☁️"
	case containsAny(fc, "partly", "scattered"):
		return "⛅"
	case containsAny(fc, "clear", "sunny"):
		return "☀️"
	default:
		return "🌤️"
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
