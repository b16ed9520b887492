// Command etl refreshes the balneability dataset: it scrapes the SEMA laudo
// index, downloads the bulletin PDFs, extracts station records, and writes
// the points JSON and stations index CSV.
//
// By default it runs one refresh and exits. With -serve it keeps refreshing
// on an interval and exposes /healthz, /readyz, /metrics, and /points.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"balneabilidade/internal/adapter/geocsv"
	httpadapter "balneabilidade/internal/adapter/http"
	kafkaadapter "balneabilidade/internal/adapter/kafka"
	"balneabilidade/internal/adapter/mapbox"
	"balneabilidade/internal/adapter/pdftext"
	"balneabilidade/internal/adapter/sema"
	"balneabilidade/internal/adapter/store"
	"balneabilidade/internal/config"
	"balneabilidade/internal/domain"
	"balneabilidade/internal/observability"
	"balneabilidade/internal/pipeline"
)

func main() {
	serve := flag.Bool("serve", false, "run as a service: refresh periodically and expose HTTP endpoints")
	limit := flag.Int("limit", 0, "override FETCH_LIMIT: how many bulletins to process")
	fromFile := flag.String("from-file", "", "process a single local PDF instead of scraping the index")
	sourceURL := flag.String("source-url", "", "provenance URL recorded for -from-file input")
	flag.Parse()

	// Optional; local development convenience.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *limit > 0 {
		cfg.FetchLimit = *limit
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Geocoder is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN; the
	// curated geocode table works without it.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	semaClient := sema.NewClient(&http.Client{Timeout: cfg.FetchTimeout}, cfg.IndexURL, cfg.UserAgent, logger)

	deps := pipeline.Deps{
		Fetcher:    semaClient,
		Downloader: semaClient,
		Extractor:  pdftext.NewExtractor(logger),
		Geocodes:   geocsv.TableSource{Path: cfg.GeocodesCSV},
		Points:     store.PointsFile{Path: cfg.PointsJSON},
		Index:      geocsv.IndexFile{Path: cfg.IndexCSV},
		Geocoder:   geocoder,
		Logger:     logger,
		Metrics:    metrics,
	}

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		deps.Publisher = publisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(deps, pipeline.Options{
		DataDir:          cfg.DataDir,
		FetchLimit:       cfg.FetchLimit,
		SeedFromPrevious: cfg.SeedFromPrevious,
		RefreshInterval:  cfg.RefreshInterval,
		LocalFile:        *fromFile,
		SourceURL:        *sourceURL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*serve {
		code := runOnce(ctx, p, logger)
		closePublisher(publisher, logger)
		os.Exit(code)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closePublisher(publisher, logger)

	logger.Info("shutdown complete")
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, logger *slog.Logger) int {
	result, err := p.Refresh(ctx)
	if err != nil {
		logger.Error("refresh failed", "error", err)
		return 1
	}
	logger.Info("refresh completed",
		"documents", result.Documents,
		"empty_documents", result.EmptyDocuments,
		"stations", result.Stations,
		"history_samples", result.HistorySamples,
	)
	return 0
}

func closePublisher(publisher *kafkaadapter.Publisher, logger *slog.Logger) {
	if publisher == nil {
		return
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka publisher close error", "error", err)
	}
}
