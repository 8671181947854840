// Package domain models National Weather Service (NWS) alert and forecast data
// and the dashboard's text interchange format.
//
// # Data Source
//
// Alerts come from the NWS active-alerts endpoint
// (https://api.weather.gov/alerts/active/area/{STATE}) keyed by two-letter US
// state code. Forecasts require two dependent lookups: the point metadata
// document (/points/{lat},{lon}) resolves a coordinate to a forecast-zone
// record whose "forecast" property is the URL of the actual forecast document.
// Only the first five forecast periods are retained.
//
// # Text Interchange Format
//
// Fetch results are rendered as fixed-field text blocks joined by a literal
// "\n---\n" separator:
//
//	Event: Flood Warning
//	Area: Travis County, TX
//	Severity: Severe
//	Description: ...
//	Instructions: ...
//
// Forecast blocks open with the period name as a headline line ("Tonight:")
// followed by Temperature/Wind/Forecast fields. Upstream fields missing from an
// alert default to placeholder strings ("Unknown", "No description available",
// "No specific instructions provided").
//
// The parsers in this package reverse the formatters: blocks are split on the
// separator and each line on its first colon, producing flat field maps. Three
// sentinel strings ("No active alerts for this state." and the two
// "Unable to fetch" variants) are the format's vocabulary for empty and failed
// fetches; the parsers recognize them and yield an empty record list.
//
// Failure kinds are carried as typed sentinel errors (see errors.go) so callers
// classify with errors.Is instead of matching sentinel substrings.
package domain
