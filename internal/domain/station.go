package domain

import (
	"sort"
	"strings"
)

// Bulletin is one item from the laudo index page.
type Bulletin struct {
	Title string
	URL   string
}

// Document is one bulletin's text in the two views the heuristics need:
// line-oriented (block heuristics need line boundaries) and flattened
// (cross-line patterns need the breaks collapsed away).
type Document struct {
	LineText  string
	FlatText  string
	SourceURL string
}

// NewDocument joins per-page text into a Document. Pages come from the
// upstream extract-pages capability, one string per page.
func NewDocument(pages []string, sourceURL string) Document {
	line := strings.Join(pages, "\n")
	return Document{
		LineText:  line,
		FlatText:  CollapseWhitespace(line),
		SourceURL: sourceURL,
	}
}

// CandidateRecord is one unvalidated, possibly incomplete station observation
// produced by a heuristic pass. Status and date are raw pre-canonicalization
// text.
type CandidateRecord struct {
	Code      string
	Beach     string
	Reference string
	Status    string
	Date      string
	SourceURL string
}

// Sample is one dated status observation. Immutable once created; Date is an
// ISO 8601 calendar date string.
type Sample struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// Station is the durable per-code aggregate. Descriptive fields follow
// first-non-empty-wins during aggregation but are overridable by the curated
// geocode table; history grows monotonically with set semantics.
type Station struct {
	Code        string
	Beach       string
	Reference   string
	City        string
	SourceLaudo string
	Lat         *float64
	Lng         *float64

	history map[Sample]struct{}
}

// NewStation creates an empty Station for a code.
func NewStation(code string) *Station {
	return &Station{
		Code:    code,
		history: make(map[Sample]struct{}),
	}
}

// AddSample inserts a (date, status) pair. Duplicate inserts are no-ops.
func (s *Station) AddSample(sample Sample) {
	if s.history == nil {
		s.history = make(map[Sample]struct{})
	}
	s.history[sample] = struct{}{}
}

// HistorySize returns the number of unique samples.
func (s *Station) HistorySize() int {
	return len(s.history)
}

// History materializes the sample set in ascending date order. ISO dates are
// zero-padded, so lexicographic comparison is chronological; ties break on
// status for determinism.
func (s *Station) History() []Sample {
	out := make([]Sample, 0, len(s.history))
	for sample := range s.history {
		out = append(out, sample)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// Latest returns the most recent sample by date, or false when the history is
// empty.
func (s *Station) Latest() (Sample, bool) {
	h := s.History()
	if len(h) == 0 {
		return Sample{}, false
	}
	return h[len(h)-1], true
}
