// Command importcoords merges an official coordinates CSV (for example one
// published by the environment agency) into the curated geocode table.
// Incoming non-empty fields win over existing ones; stations only present in
// the existing table are kept.
//
// The source file is either the full six-column format
// (code,beach,reference,city,lat,lng) or a minimal code,lat,lng one.
//
// Usage:
//
//	go run ./cmd/importcoords -src official_coords.csv -geocodes data/stations_geocoded.csv
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"balneabilidade/internal/adapter/geocsv"
	"balneabilidade/internal/domain"
)

func main() {
	src := flag.String("src", "", "official coordinates CSV to import (required)")
	geocodesPath := flag.String("geocodes", "data/stations_geocoded.csv", "curated geocode table to update")
	flag.Parse()

	if *src == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*src, *geocodesPath))
}

func run(srcPath, geocodesPath string) int {
	incoming, err := readSource(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read source: %v\n", err)
		return 1
	}
	if len(incoming) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no usable rows in %s\n", srcPath)
		return 1
	}

	table, err := geocsv.LoadTable(geocodesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load geocode table: %v\n", err)
		return 1
	}

	added, updated := merge(table, incoming)

	if err := geocsv.WriteTable(geocodesPath, table); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: write geocode table: %v\n", err)
		return 1
	}

	fmt.Printf("Imported %d row(s): %d added, %d updated. Table now has %d station(s).\n",
		len(incoming), added, updated, len(table))
	return 0
}

// readSource parses the official CSV, accepting both the six-column table
// format and a minimal code,lat,lng one.
func readSource(path string) (map[string]domain.GeocodeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	out := make(map[string]domain.GeocodeEntry)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 3 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(row[0]))
		if code == "" || strings.EqualFold(code, "code") {
			continue
		}
		if len(row) >= 6 {
			out[code] = domain.GeocodeEntry{
				Beach:     strings.TrimSpace(row[1]),
				Reference: strings.TrimSpace(row[2]),
				City:      strings.TrimSpace(row[3]),
				Lat:       strings.TrimSpace(row[4]),
				Lng:       strings.TrimSpace(row[5]),
			}
			continue
		}
		out[code] = domain.GeocodeEntry{
			Lat: strings.TrimSpace(row[1]),
			Lng: strings.TrimSpace(row[2]),
		}
	}
	return out, nil
}

// merge applies incoming rows over the existing table, non-empty fields
// winning. Returns how many codes were added and how many changed.
func merge(table, incoming map[string]domain.GeocodeEntry) (added, updated int) {
	for code, in := range incoming {
		existing, ok := table[code]
		if !ok {
			table[code] = in
			added++
			continue
		}
		merged := existing
		apply(&merged.Beach, in.Beach)
		apply(&merged.Reference, in.Reference)
		apply(&merged.City, in.City)
		apply(&merged.Lat, in.Lat)
		apply(&merged.Lng, in.Lng)
		if merged != existing {
			table[code] = merged
			updated++
		}
	}
	return added, updated
}

func apply(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
