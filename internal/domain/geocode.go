package domain

import (
	"strconv"
	"strings"
)

// GeocodeEntry is one row of the curated geocode table. Coordinates stay as
// raw strings until the merge so a malformed value can be skipped without
// losing the rest of the row.
type GeocodeEntry struct {
	Beach     string
	Reference string
	City      string
	Lat       string
	Lng       string
}

// MergeGeocodes joins stations with the curated geocode table. The table is
// the authoritative source for canonical names, so non-empty fields overwrite
// whatever aggregation extracted, the inverse of the aggregator's first-wins
// policy. Coordinates are parsed per field; on parse
// failure the station's prior value is kept. Stations absent from the table
// are left untouched.
func MergeGeocodes(stations map[string]*Station, table map[string]GeocodeEntry) {
	for code, st := range stations {
		g, ok := table[code]
		if !ok {
			continue
		}
		if g.Beach != "" {
			st.Beach = g.Beach
		}
		if g.Reference != "" {
			st.Reference = g.Reference
		}
		if g.City != "" {
			st.City = g.City
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(g.Lat), 64); err == nil {
			st.Lat = &v
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(g.Lng), 64); err == nil {
			st.Lng = &v
		}
	}
}
