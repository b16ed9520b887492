// Package geocsv reads the curated geocode table and writes the stations
// index, both as CSV with columns code,beach,reference,city,lat,lng.
package geocsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"balneabilidade/internal/domain"
)

var header = []string{"code", "beach", "reference", "city", "lat", "lng"}

// LoadTable reads the geocode table keyed by upper-cased station code. A
// missing file is an empty table, not an error: the table is hand-curated and
// grows over time. Short or malformed rows are skipped so one bad line does
// not discard the rest.
func LoadTable(path string) (map[string]domain.GeocodeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]domain.GeocodeEntry{}, nil
		}
		return nil, fmt.Errorf("open geocode table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	table := make(map[string]domain.GeocodeEntry)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read geocode table: %w", err)
		}
		if len(row) < len(header) {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(row[0]))
		if code == "" || strings.EqualFold(code, "code") {
			continue
		}
		table[code] = domain.GeocodeEntry{
			Beach:     strings.TrimSpace(row[1]),
			Reference: strings.TrimSpace(row[2]),
			City:      strings.TrimSpace(row[3]),
			Lat:       strings.TrimSpace(row[4]),
			Lng:       strings.TrimSpace(row[5]),
		}
	}
	return table, nil
}

// WriteIndex writes the stations index rows, the operator-facing worksheet
// for filling in coordinates. The format matches LoadTable so an edited index
// feeds straight back in as the geocode table.
func WriteIndex(path string, rows []domain.IndexRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create stations index: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Code,
			row.Beach,
			row.Reference,
			row.City,
			formatCoord(row.Lat),
			formatCoord(row.Lng),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write index row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush stations index: %w", err)
	}
	return nil
}

// WriteTable writes a geocode table in code order, same format as LoadTable
// reads.
func WriteTable(path string, table map[string]domain.GeocodeEntry) error {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create table dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create geocode table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for _, code := range codes {
		e := table[code]
		if err := w.Write([]string{code, e.Beach, e.Reference, e.City, e.Lat, e.Lng}); err != nil {
			return fmt.Errorf("write table row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush geocode table: %w", err)
	}
	return nil
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// TableSource loads the geocode table from a fixed path.
type TableSource struct {
	Path string
}

func (s TableSource) Load() (map[string]domain.GeocodeEntry, error) {
	return LoadTable(s.Path)
}

// IndexFile writes the stations index to a fixed path.
type IndexFile struct {
	Path string
}

func (s IndexFile) WriteIndex(rows []domain.IndexRow) error {
	return WriteIndex(s.Path, rows)
}
