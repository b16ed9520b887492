package domain

import "sort"

// ProjectedStation is the externally consumed output shape, serialized as one
// element of the points JSON array.
type ProjectedStation struct {
	Code        string   `json:"code"`
	Beach       string   `json:"beach"`
	Reference   string   `json:"reference"`
	City        string   `json:"city"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Latest      *Sample  `json:"latest"`
	History     []Sample `json:"history"`
	SourceLaudo string   `json:"source_laudo"`
}

// IndexRow is the flat secondary projection handed to operators for filling
// in missing coordinates. It mirrors the geocode-table input format so it can
// round-trip back through the geocode merger.
type IndexRow struct {
	Code      string
	Beach     string
	Reference string
	City      string
	Lat       *float64
	Lng       *float64
}

// Project turns the aggregate into the output sequence: history sorted
// ascending by ISO date, latest as its last element, records sorted by code
// (lexicographic) for output stability.
func Project(stations map[string]*Station) []ProjectedStation {
	out := make([]ProjectedStation, 0, len(stations))
	for _, st := range stations {
		p := ProjectedStation{
			Code:        st.Code,
			Beach:       st.Beach,
			Reference:   st.Reference,
			City:        st.City,
			Lat:         st.Lat,
			Lng:         st.Lng,
			History:     st.History(),
			SourceLaudo: st.SourceLaudo,
		}
		if len(p.History) > 0 {
			latest := p.History[len(p.History)-1]
			p.Latest = &latest
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ProjectIndex produces the code-sorted stations index rows.
func ProjectIndex(stations map[string]*Station) []IndexRow {
	out := make([]IndexRow, 0, len(stations))
	for _, st := range stations {
		out = append(out, IndexRow{
			Code:      st.Code,
			Beach:     st.Beach,
			Reference: st.Reference,
			City:      st.City,
			Lat:       st.Lat,
			Lng:       st.Lng,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
