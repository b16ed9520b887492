package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeGeocodes_OverwriteWins(t *testing.T) {
	stations := map[string]*Station{
		"P01": {Code: "P01", Beach: "sao marcos raspado", Reference: "banca"},
	}
	table := map[string]GeocodeEntry{
		"P01": {Beach: "São Marcos", Reference: "Banca de jornal", City: "São Luís", Lat: "-2.488", Lng: "-44.268"},
	}

	MergeGeocodes(stations, table)

	st := stations["P01"]
	assert.Equal(t, "São Marcos", st.Beach, "curated names replace extracted ones")
	assert.Equal(t, "Banca de jornal", st.Reference)
	assert.Equal(t, "São Luís", st.City)
	require.NotNil(t, st.Lat)
	require.NotNil(t, st.Lng)
	assert.InDelta(t, -2.488, *st.Lat, 1e-9)
	assert.InDelta(t, -44.268, *st.Lng, 1e-9)
}

func TestMergeGeocodes_EmptyFieldKeepsPriorValue(t *testing.T) {
	stations := map[string]*Station{
		"P02": {Code: "P02", Beach: "Calhau", Reference: "Quiosque"},
	}
	table := map[string]GeocodeEntry{
		"P02": {Beach: "", Reference: "Quiosque central", City: "São Luís"},
	}

	MergeGeocodes(stations, table)

	st := stations["P02"]
	assert.Equal(t, "Calhau", st.Beach, "empty table field does not erase the extracted value")
	assert.Equal(t, "Quiosque central", st.Reference)
}

func TestMergeGeocodes_CoordinateParseFailureKeepsPrior(t *testing.T) {
	lat := -2.5
	stations := map[string]*Station{
		"P03": {Code: "P03", Lat: &lat},
	}
	table := map[string]GeocodeEntry{
		"P03": {Lat: "not-a-number", Lng: "-44.30"},
	}

	MergeGeocodes(stations, table)

	st := stations["P03"]
	require.NotNil(t, st.Lat)
	assert.InDelta(t, -2.5, *st.Lat, 1e-9, "bad latitude leaves the prior value")
	require.NotNil(t, st.Lng)
	assert.InDelta(t, -44.30, *st.Lng, 1e-9, "longitude still parses independently")
}

func TestMergeGeocodes_AbsentStationUntouched(t *testing.T) {
	stations := map[string]*Station{
		"P04": {Code: "P04", Beach: "Araçagi"},
	}

	MergeGeocodes(stations, map[string]GeocodeEntry{
		"P99": {Beach: "Outra"},
	})

	st := stations["P04"]
	assert.Equal(t, "Araçagi", st.Beach)
	assert.Nil(t, st.Lat)
	assert.Nil(t, st.Lng)
}

type mockGeocoder struct {
	results map[string]GeocodingResult
	err     error
	calls   []string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, beach, city string) (GeocodingResult, error) {
	m.calls = append(m.calls, beach+"|"+city)
	if m.err != nil {
		return GeocodingResult{}, m.err
	}
	return m.results[beach], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFillMissingCoordinates(t *testing.T) {
	lat, lng := -2.48, -44.25
	stations := map[string]*Station{
		"P01": {Code: "P01", Beach: "São Marcos", City: "São Luís", Lat: &lat, Lng: &lng},
		"P02": {Code: "P02", Beach: "Calhau", City: "São Luís"},
		"P03": {Code: "P03"},
	}
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"Calhau": {Lat: -2.471, Lng: -44.237, PlaceName: "Calhau, São Luís", Confidence: 0.9},
	}}

	FillMissingCoordinates(context.Background(), stations, geo, discardLogger())

	assert.Equal(t, []string{"Calhau|São Luís"}, geo.calls, "only the coordinate-less named station is looked up")

	st := stations["P02"]
	require.NotNil(t, st.Lat)
	require.NotNil(t, st.Lng)
	assert.InDelta(t, -2.471, *st.Lat, 1e-9)
	assert.InDelta(t, -44.237, *st.Lng, 1e-9)

	assert.Nil(t, stations["P03"].Lat, "no beach name, nothing to query")
}

func TestFillMissingCoordinates_LookupErrorLeavesStation(t *testing.T) {
	stations := map[string]*Station{
		"P05": {Code: "P05", Beach: "Olho d'Água"},
	}
	geo := &mockGeocoder{err: errors.New("rate limited")}

	FillMissingCoordinates(context.Background(), stations, geo, discardLogger())

	assert.Nil(t, stations["P05"].Lat)
	assert.Nil(t, stations["P05"].Lng)
}

func TestFillMissingCoordinates_ZeroResultSkipped(t *testing.T) {
	stations := map[string]*Station{
		"P06": {Code: "P06", Beach: "Meio"},
	}
	geo := &mockGeocoder{results: map[string]GeocodingResult{}}

	FillMissingCoordinates(context.Background(), stations, geo, discardLogger())

	assert.Nil(t, stations["P06"].Lat, "a zero-zero response is treated as no match")
}

func TestFillMissingCoordinates_NilGeocoder(t *testing.T) {
	stations := map[string]*Station{
		"P07": {Code: "P07", Beach: "Calhau"},
	}

	FillMissingCoordinates(context.Background(), stations, nil, discardLogger())

	assert.Nil(t, stations["P07"].Lat)
}
