package domain

import "strings"

// Sentinel substrings the parsers detect before attempting to split. Kept as
// prefix fragments so that all "Unable to fetch ..." variants match.
const (
	noAlertsMarker    = "No active alerts"
	alertsFailMarker  = "Unable to fetch alerts"
	fetchFailedMarker = "Unable to fetch"
)

// ParseAlerts reverses FormatAlerts: sentinel text yields an empty list,
// otherwise each block becomes a field map keyed by the text before the first
// colon of each line. Blank segments are skipped.
func ParseAlerts(text string) []Fields {
	if strings.Contains(text, noAlertsMarker) || strings.Contains(text, alertsFailMarker) {
		return []Fields{}
	}

	var records []Fields
	for _, block := range strings.Split(strings.TrimSpace(text), "---") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		fields := Fields{}
		for _, line := range strings.Split(block, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
		if len(fields) > 0 {
			records = append(records, fields)
		}
	}
	return records
}

// ParseForecast reverses FormatForecast. The first line of each block is the
// period name (colons stripped), stored under "name"; remaining lines become
// fields as in ParseAlerts. Blocks that carry only a name are dropped.
func ParseForecast(text string) []Fields {
	if strings.Contains(text, fetchFailedMarker) {
		return []Fields{}
	}

	var records []Fields
	for _, block := range strings.Split(strings.TrimSpace(text), "---") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		fields := Fields{"name": strings.ReplaceAll(lines[0], ":", "")}
		for _, line := range lines[1:] {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
		if len(fields) > 1 {
			records = append(records, fields)
		}
	}
	return records
}
