package domain

import (
	"context"
	"log/slog"
)

// FillMissingCoordinates forward-geocodes stations that still lack
// coordinates after the geocode-table merge. The curated table remains
// authoritative: stations it already positioned are never touched. If
// geocoder is nil or a lookup fails, the station is left as-is (graceful
// degradation).
func FillMissingCoordinates(ctx context.Context, stations map[string]*Station, geocoder Geocoder, logger *slog.Logger) {
	if geocoder == nil {
		return
	}
	for _, st := range stations {
		if st.Lat != nil && st.Lng != nil {
			continue
		}
		if st.Beach == "" {
			continue
		}
		result, err := geocoder.ForwardGeocode(ctx, st.Beach, st.City)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"code", st.Code,
				"beach", st.Beach,
				"city", st.City,
				"error", err,
			)
			continue
		}
		if result.Lat == 0 && result.Lng == 0 {
			continue
		}
		lat, lng := result.Lat, result.Lng
		st.Lat = &lat
		st.Lng = &lng
	}
}
