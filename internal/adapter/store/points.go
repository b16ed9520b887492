// Package store persists the projected points JSON between runs.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"balneabilidade/internal/domain"
)

// PointsFile reads and writes the points JSON array at a fixed path. The file
// doubles as the engine's only cross-run state: a run seeds its aggregate from
// the previous output so station history accumulates.
type PointsFile struct {
	Path string
}

// Read loads the previous run's points. A missing file means a first run and
// returns nil without error.
func (p PointsFile) Read() ([]domain.ProjectedStation, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read points file: %w", err)
	}
	var points []domain.ProjectedStation
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("parse points file: %w", err)
	}
	return points, nil
}

// Write replaces the points file with the given projection.
func (p PointsFile) Write(points []domain.ProjectedStation) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create points dir: %w", err)
	}
	data, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}
	if err := os.WriteFile(p.Path, data, 0o644); err != nil {
		return fmt.Errorf("write points file: %w", err)
	}
	return nil
}
