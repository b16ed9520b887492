package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"balneabilidade/internal/domain"
	"balneabilidade/internal/observability"
)

// IndexFetcher lists bulletins from the publication index, most recent first.
type IndexFetcher interface {
	FetchIndex(ctx context.Context, limit int) ([]domain.Bulletin, error)
}

// Downloader fetches one bulletin into dir and returns the local path.
type Downloader interface {
	Download(ctx context.Context, bulletinURL, dir string) (string, error)
}

// PageExtractor returns a bulletin file's text, one string per page.
type PageExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// GeocodeSource loads the curated geocode table.
type GeocodeSource interface {
	Load() (map[string]domain.GeocodeEntry, error)
}

// PointsStore persists the projected points between runs.
type PointsStore interface {
	Read() ([]domain.ProjectedStation, error)
	Write(points []domain.ProjectedStation) error
}

// IndexWriter writes the operator-facing stations index.
type IndexWriter interface {
	WriteIndex(rows []domain.IndexRow) error
}

// Publisher pushes refreshed stations to downstream consumers.
type Publisher interface {
	PublishStations(ctx context.Context, points []domain.ProjectedStation, refreshedAt time.Time) error
}

// Deps are the pipeline's collaborators. Publisher and Geocoder are optional;
// a nil Clock means the real one.
type Deps struct {
	Fetcher    IndexFetcher
	Downloader Downloader
	Extractor  PageExtractor
	Geocodes   GeocodeSource
	Points     PointsStore
	Index      IndexWriter
	Publisher  Publisher
	Geocoder   domain.Geocoder
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Clock      clockwork.Clock
}

// Options tune one pipeline instance.
type Options struct {
	DataDir    string
	FetchLimit int

	// SeedFromPrevious reloads the previous points output before refreshing so
	// history accumulates across runs.
	SeedFromPrevious bool

	RefreshInterval time.Duration

	// LocalFile, when set, processes a single already-downloaded bulletin
	// instead of scraping the index. SourceURL is its provenance URL.
	LocalFile string
	SourceURL string
}

// RunResult summarizes one refresh cycle.
type RunResult struct {
	Documents      int
	EmptyDocuments int
	Stations       int
	HistorySamples int
	CompletedAt    time.Time
}

// Pipeline orchestrates fetch, extract, aggregate, geocode, and project.
type Pipeline struct {
	deps  Deps
	opts  Options
	clock clockwork.Clock

	ready atomic.Bool

	mu       sync.RWMutex
	snapshot []domain.ProjectedStation
}

// New creates a Pipeline with the given collaborators.
func New(deps Deps, opts Options) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{deps: deps, opts: opts, clock: clock}
}

// CheckReadiness returns nil once at least one refresh has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no refresh completed yet")
	}
	return nil
}

// Snapshot returns the stations from the latest completed refresh.
func (p *Pipeline) Snapshot() []domain.ProjectedStation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Run refreshes immediately, then on every RefreshInterval tick until the
// context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.deps.Metrics.PipelineRunning.Set(1)
	defer p.deps.Metrics.PipelineRunning.Set(0)

	p.deps.Logger.Info("pipeline started", "refresh_interval", p.opts.RefreshInterval)

	p.refreshAndReport(ctx)

	ticker := p.clock.NewTicker(p.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.deps.Logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.refreshAndReport(ctx)
		}
	}
}

func (p *Pipeline) refreshAndReport(ctx context.Context) {
	result, err := p.Refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.deps.Logger.Error("refresh failed", "error", err)
		p.deps.Metrics.RefreshErrors.Inc()
		return
	}
	p.deps.Logger.Info("refresh completed",
		"documents", result.Documents,
		"empty_documents", result.EmptyDocuments,
		"stations", result.Stations,
		"history_samples", result.HistorySamples,
	)
}

// Refresh runs one full fetch-extract-aggregate-project cycle. A document
// that fails to download or parse is skipped, not fatal; the cycle fails only
// when the bulletin index itself is unreachable or the output cannot be
// written.
func (p *Pipeline) Refresh(ctx context.Context) (RunResult, error) {
	start := p.clock.Now()

	bulletins, err := p.listBulletins(ctx)
	if err != nil {
		return RunResult{}, err
	}

	agg := make(map[string]*domain.Station)
	if p.opts.SeedFromPrevious {
		previous, err := p.deps.Points.Read()
		if err != nil {
			p.deps.Logger.Warn("failed to read previous points, starting fresh", "error", err)
		} else {
			domain.SeedStations(agg, previous)
		}
	}

	var result RunResult
	for _, b := range bulletins {
		if !p.processBulletin(ctx, b, agg, &result) && ctx.Err() != nil {
			return RunResult{}, ctx.Err()
		}
	}

	table, err := p.deps.Geocodes.Load()
	if err != nil {
		p.deps.Logger.Warn("failed to load geocode table", "error", err)
	} else {
		domain.MergeGeocodes(agg, table)
	}

	domain.FillMissingCoordinates(ctx, agg, p.deps.Geocoder, p.deps.Logger)

	points := domain.Project(agg)
	rows := domain.ProjectIndex(agg)

	if len(points) > 0 {
		if err := p.deps.Points.Write(points); err != nil {
			return RunResult{}, fmt.Errorf("write points: %w", err)
		}
		if err := p.deps.Index.WriteIndex(rows); err != nil {
			return RunResult{}, fmt.Errorf("write stations index: %w", err)
		}
	} else {
		p.deps.Logger.Warn("no stations extracted, keeping previous output")
	}

	p.publish(ctx, points, start)

	result.Stations = len(points)
	for _, st := range agg {
		result.HistorySamples += st.HistorySize()
	}
	result.CompletedAt = p.clock.Now()

	p.observe(agg, result, start)

	p.mu.Lock()
	p.snapshot = points
	p.mu.Unlock()
	p.ready.Store(true)

	return result, nil
}

// listBulletins returns the work list: the single local file in local mode,
// otherwise the scraped index capped at FetchLimit.
func (p *Pipeline) listBulletins(ctx context.Context) ([]domain.Bulletin, error) {
	if p.opts.LocalFile != "" {
		source := p.opts.SourceURL
		if source == "" {
			source = "file://" + p.opts.LocalFile
		}
		return []domain.Bulletin{{Title: p.opts.LocalFile, URL: source}}, nil
	}
	bulletins, err := p.deps.Fetcher.FetchIndex(ctx, p.opts.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch bulletin index: %w", err)
	}
	return bulletins, nil
}

// processBulletin downloads, extracts, and aggregates one bulletin. Returns
// false when the bulletin was skipped or failed.
func (p *Pipeline) processBulletin(ctx context.Context, b domain.Bulletin, agg map[string]*domain.Station, result *RunResult) bool {
	path := p.opts.LocalFile
	if path == "" {
		if !strings.HasSuffix(strings.ToLower(b.URL), ".pdf") {
			p.deps.Logger.Debug("skipping non-pdf bulletin link", "url", b.URL, "title", b.Title)
			return false
		}
		var err error
		path, err = p.deps.Downloader.Download(ctx, b.URL, p.opts.DataDir)
		if err != nil {
			p.deps.Logger.Warn("failed to download bulletin", "url", b.URL, "error", err)
			return false
		}
	}

	pages, err := p.deps.Extractor.ExtractPages(path)
	if err != nil {
		p.deps.Logger.Warn("failed to extract bulletin text", "path", path, "error", err)
		return false
	}

	doc := domain.NewDocument(pages, b.URL)
	extracted := domain.ExtractCandidates(doc)

	result.Documents++
	p.deps.Metrics.DocumentsProcessed.Inc()
	for heuristic, n := range extracted.Counts {
		p.deps.Metrics.CandidatesExtracted.WithLabelValues(heuristic).Add(float64(n))
	}
	if len(extracted.Candidates) == 0 {
		result.EmptyDocuments++
		p.deps.Metrics.DocumentsEmpty.Inc()
		p.deps.Logger.Warn("no candidates extracted from bulletin", "url", b.URL, "title", b.Title)
		return true
	}

	p.deps.Logger.Info("extracted bulletin",
		"url", b.URL,
		"candidates", len(extracted.Candidates),
		"heuristics", extracted.Counts,
	)
	domain.AggregateInto(agg, extracted.Candidates, b.URL)
	return true
}

func (p *Pipeline) publish(ctx context.Context, points []domain.ProjectedStation, refreshedAt time.Time) {
	if p.deps.Publisher == nil || len(points) == 0 {
		return
	}
	if err := p.deps.Publisher.PublishStations(ctx, points, refreshedAt); err != nil {
		p.deps.Logger.Warn("failed to publish stations", "error", err)
		return
	}
	p.deps.Metrics.StationsPublished.Add(float64(len(points)))
}

func (p *Pipeline) observe(agg map[string]*domain.Station, result RunResult, start time.Time) {
	geocoded := 0
	for _, st := range agg {
		if st.Lat != nil && st.Lng != nil {
			geocoded++
		}
	}
	p.deps.Metrics.StationsAggregated.Set(float64(result.Stations))
	p.deps.Metrics.HistorySamples.Set(float64(result.HistorySamples))
	p.deps.Metrics.GeocodeMatched.Set(float64(geocoded))
	p.deps.Metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())
}
