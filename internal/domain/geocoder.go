package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat        float64
	Lng        float64
	PlaceName  string
	Confidence float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves a beach name to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a beach name and city to coordinates.
	ForwardGeocode(ctx context.Context, beach, city string) (GeocodingResult, error)
}
