package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balneabilidade/internal/domain"
)

func TestPointsFile_RoundTrip(t *testing.T) {
	lat, lng := -2.471, -44.237
	latest := domain.Sample{Date: "2025-08-18", Status: domain.StatusUnfit}
	points := []domain.ProjectedStation{
		{
			Code:      "P01",
			Beach:     "Calhau",
			Reference: "Quiosque",
			City:      "São Luís",
			Lat:       &lat,
			Lng:       &lng,
			Latest:    &latest,
			History: []domain.Sample{
				{Date: "2025-07-21", Status: domain.StatusFit},
				latest,
			},
			SourceLaudo: "https://sema.example/laudo.pdf",
		},
	}

	file := PointsFile{Path: filepath.Join(t.TempDir(), "out", "points.json")}
	require.NoError(t, file.Write(points))

	got, err := file.Read()
	require.NoError(t, err)
	assert.Equal(t, points, got)
}

func TestPointsFile_MissingFile(t *testing.T) {
	got, err := PointsFile{Path: filepath.Join(t.TempDir(), "nope.json")}.Read()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPointsFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := PointsFile{Path: path}.Read()
	require.Error(t, err)
}
