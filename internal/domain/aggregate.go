package domain

import "strings"

// Aggregate folds candidate records into one Station per code. Candidates
// must be fed in heuristic execution order (block split, linear block, loose
// row, history mining): history contents are order-independent thanks to set
// semantics, but the first-wins descriptive fields are not.
//
// sourceURL is the document-level provenance fallback for candidates that do
// not carry their own.
func Aggregate(candidates []CandidateRecord, sourceURL string) map[string]*Station {
	agg := make(map[string]*Station)
	AggregateInto(agg, candidates, sourceURL)
	return agg
}

// AggregateInto applies the aggregation policy on top of an existing
// aggregate, so multiple documents (or a previous run's seed) accumulate into
// the same map.
//
// Per candidate: reject empty codes; fetch or create the station; set beach
// and reference first-non-empty-wins; re-canonicalize status and date
// (idempotent); insert a history sample only when the canonical date is
// ISO-shaped (an unparseable date passes through but contributes no sample);
// set source_laudo first-wins at the station level.
func AggregateInto(agg map[string]*Station, candidates []CandidateRecord, sourceURL string) {
	for _, c := range candidates {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" {
			continue
		}
		st := agg[code]
		if st == nil {
			st = NewStation(code)
			agg[code] = st
		}
		if st.Beach == "" {
			st.Beach = c.Beach
		}
		if st.Reference == "" {
			st.Reference = c.Reference
		}

		status := CanonicalizeStatus(c.Status)
		date := CanonicalizeDateBR(c.Date)
		if IsISODate(date) && status != "" {
			st.AddSample(Sample{Date: date, Status: status})
		}

		if st.SourceLaudo == "" {
			if c.SourceURL != "" {
				st.SourceLaudo = c.SourceURL
			} else {
				st.SourceLaudo = sourceURL
			}
		}
	}
}

// SeedStations recreates stations from a previous run's projection so history
// accumulates across runs; the engine itself holds no state between
// invocations. Seeded fields follow the same first-wins policy as
// aggregation, and only ISO-shaped dates are readmitted.
func SeedStations(agg map[string]*Station, points []ProjectedStation) {
	for _, p := range points {
		code := strings.ToUpper(strings.TrimSpace(p.Code))
		if code == "" {
			continue
		}
		st := agg[code]
		if st == nil {
			st = NewStation(code)
			agg[code] = st
		}
		if st.Beach == "" {
			st.Beach = p.Beach
		}
		if st.Reference == "" {
			st.Reference = p.Reference
		}
		if st.City == "" {
			st.City = p.City
		}
		for _, s := range p.History {
			if IsISODate(s.Date) && s.Status != "" {
				st.AddSample(s)
			}
		}
		if st.SourceLaudo == "" {
			st.SourceLaudo = p.SourceLaudo
		}
		if st.Lat == nil {
			st.Lat = p.Lat
		}
		if st.Lng == nil {
			st.Lng = p.Lng
		}
	}
}
