package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultIndexURL is the SEMA/MA page listing the balneability bulletins.
const DefaultIndexURL = "https://www.sema.ma.gov.br/laudos-de-balneabilidade"

// Config holds all service settings, populated from environment variables.
type Config struct {
	IndexURL     string
	DataDir      string
	GeocodesCSV  string
	PointsJSON   string
	IndexCSV     string
	FetchLimit   int
	FetchTimeout time.Duration
	UserAgent    string

	// SeedFromPrevious reloads the previous points output before a refresh so
	// history accumulates across runs.
	SeedFromPrevious bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration

	// Kafka publishing configuration.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	fetchLimit, err := parsePositiveInt("FETCH_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	mapboxCacheSize, err := parsePositiveInt("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	dataDir := envOrDefault("DATA_DIR", "data")

	cfg := &Config{
		IndexURL:     envOrDefault("LAUDOS_URL", DefaultIndexURL),
		DataDir:      dataDir,
		GeocodesCSV:  envOrDefault("GEOCODES_CSV", filepath.Join(dataDir, "stations_geocoded.csv")),
		PointsJSON:   envOrDefault("POINTS_JSON", filepath.Join(dataDir, "points.json")),
		IndexCSV:     envOrDefault("INDEX_CSV", filepath.Join(dataDir, "stations_index.csv")),
		FetchLimit:   fetchLimit,
		FetchTimeout: fetchTimeout,
		UserAgent:    envOrDefault("USER_AGENT", "Mozilla/5.0 (compatible; BalneabilidadeBot/0.1)"),

		SeedFromPrevious: envOrDefault("SEED_FROM_PREVIOUS", "true") == "true",

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		RefreshInterval: refreshInterval,
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "balneabilidade-stations"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if cfg.IndexURL == "" {
		return nil, errors.New("LAUDOS_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
