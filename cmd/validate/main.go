// Command validate checks geocode coverage: every station in the extracted
// index should have coordinates, either from the curated geocode table or
// carried in the index itself.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -index data/stations_index.csv \
//	  -geocodes data/stations_geocoded.csv
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"balneabilidade/internal/adapter/geocsv"
	"balneabilidade/internal/domain"
)

const maxExamples = 10

func main() {
	indexPath := flag.String("index", "data/stations_index.csv", "path to the extracted stations index CSV")
	geocodesPath := flag.String("geocodes", "data/stations_geocoded.csv", "path to the curated geocode table CSV")
	flag.Parse()

	os.Exit(run(*indexPath, *geocodesPath))
}

func run(indexPath, geocodesPath string) int {
	index, err := geocsv.LoadTable(indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load stations index: %v\n", err)
		return 1
	}
	if len(index) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no stations in %s (run the etl first)\n", indexPath)
		return 1
	}

	geocodes, err := geocsv.LoadTable(geocodesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load geocode table: %v\n", err)
		return 1
	}

	fmt.Println("=== Geocode Coverage Validation ===")
	fmt.Println()

	var covered, missing []string
	for code, row := range index {
		if hasCoords(row) || hasCoords(geocodes[code]) {
			covered = append(covered, code)
		} else {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)

	fmt.Printf("Stations: %d indexed, %d in geocode table\n", len(index), len(geocodes))
	fmt.Printf("Coverage: %d/%d with coordinates\n", len(covered), len(index))

	// Stale geocode rows are harmless but worth surfacing.
	var orphans []string
	for code := range geocodes {
		if _, ok := index[code]; !ok {
			orphans = append(orphans, code)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		fmt.Printf("Note: %d geocode row(s) not present in the index: %v\n", len(orphans), trim(orphans))
	}

	if len(missing) == 0 {
		fmt.Println("\nAll stations have coordinates.")
		return 0
	}

	fmt.Printf("\n%d station(s) missing coordinates:\n", len(missing))
	for _, code := range trim(missing) {
		row := index[code]
		fmt.Printf("  %-6s %s (%s)\n", code, row.Beach, row.Reference)
	}
	if len(missing) > maxExamples {
		fmt.Printf("  ... and %d more\n", len(missing)-maxExamples)
	}
	fmt.Printf("\nAdd the missing rows to %s and re-run the etl.\n", geocodesPath)
	return 1
}

func hasCoords(e domain.GeocodeEntry) bool {
	return parses(e.Lat) && parses(e.Lng)
}

func parses(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func trim(codes []string) []string {
	if len(codes) > maxExamples {
		return codes[:maxExamples]
	}
	return codes
}
