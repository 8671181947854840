package domain

import "context"

// Geocoder resolves a free-text city name to coordinates.
type Geocoder interface {
	// Resolve returns the coordinates for a city, or an error wrapping
	// ErrUnresolvable when the provider cannot produce a valid pair.
	Resolve(ctx context.Context, city string) (Coordinates, error)
}
