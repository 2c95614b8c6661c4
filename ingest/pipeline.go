package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/adoptmatch/ai"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/dedupe"
	"github.com/poiesic/adoptmatch/reembed"
	"github.com/poiesic/adoptmatch/storage"
	"github.com/poiesic/adoptmatch/vocab"
	"golang.org/x/time/rate"
)

// DefaultFetchTimeout bounds one source's Fetch call.
const DefaultFetchTimeout = 15 * time.Second

// Report summarizes one ingestion run. The caller derives the live listing
// count as Fetched - Malformed - DuplicatesRemoved.
type Report struct {
	Fetched           int
	Malformed         int
	DuplicatesRemoved int
	SourcesQueried    []string
	SourcesFailed     []string
}

// Pipeline orchestrates fetch, normalization, deduplication and persistence
// of adoption listings. Sources are fetched concurrently; dedupe and store
// writes run on a single writer so duplicate decisions see a consistent
// snapshot.
type Pipeline struct {
	listingRepo  storage.ListingRepository
	provider     ai.AIProvider
	dedupeEngine *dedupe.Engine
	vocabIndex   *vocab.Index
	sources      []Source
	fetchPool    *ants.Pool
	breakers     map[string]*sourceBreaker
	limiter      *rate.Limiter
	fetchTimeout time.Duration
	writeMu      sync.Mutex
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent source fetches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.fetchPool != nil {
			p.fetchPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.fetchPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithFetchTimeout bounds each source's Fetch call.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout > 0 {
			p.fetchTimeout = timeout
		}
		return nil
	}
}

// WithRateLimit throttles outgoing fetches across all sources.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(p *Pipeline) error {
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithBreakerConfig replaces the per-source circuit breaker settings.
func WithBreakerConfig(config BreakerConfig) Option {
	return func(p *Pipeline) error {
		for name := range p.breakers {
			p.breakers[name] = newSourceBreaker(name, config)
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline over the given sources.
func NewPipeline(
	listingRepo storage.ListingRepository,
	provider ai.AIProvider,
	dedupeEngine *dedupe.Engine,
	vocabIndex *vocab.Index,
	sources []Source,
	opts ...Option,
) (*Pipeline, error) {
	if listingRepo == nil {
		return nil, ErrListingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if dedupeEngine == nil {
		return nil, ErrDedupeEngineRequired
	}
	if vocabIndex == nil {
		return nil, ErrVocabularyIndexRequired
	}
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	breakers := make(map[string]*sourceBreaker, len(sources))
	for _, source := range sources {
		breakers[source.Name()] = newSourceBreaker(source.Name(), DefaultBreakerConfig())
	}

	p := &Pipeline{
		listingRepo:  listingRepo,
		provider:     provider,
		dedupeEngine: dedupeEngine,
		vocabIndex:   vocabIndex,
		sources:      sources,
		fetchPool:    pool,
		breakers:     breakers,
		fetchTimeout: DefaultFetchTimeout,
		logger:       slog.Default().With("component", "ingest-pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IndexVocabularies builds the vocabulary index for every source and
// category. A source whose enumeration fails is logged and skipped: its
// listings still ingest, and term normalization for it degrades to the
// dictionary and substring tiers.
func (p *Pipeline) IndexVocabularies(ctx context.Context) error {
	for _, source := range p.sources {
		for _, category := range core.Categories {
			values, err := source.ValidValues(ctx, category)
			if err != nil {
				p.logger.Warn("vocabulary enumeration failed, source degrades to non-vector tiers",
					"source", source.Name(), "category", category, "err", err)
				continue
			}
			if err := p.vocabIndex.Build(ctx, source.Name(), category, values); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run fetches from every source, deduplicates and persists the results.
// When useCache is true the fetch is skipped entirely and the caller ranks
// against the existing store snapshot.
//
// A failing source never fails the run; it is reported in SourcesFailed.
func (p *Pipeline) Run(ctx context.Context, query Query, useCache bool) (*Report, error) {
	report := &Report{}

	if useCache {
		p.logger.Debug("serving from cache, skipping source fetches")
		return report, nil
	}

	type fetchResult struct {
		records []RawRecord
		err     error
	}
	results := make([]fetchResult, len(p.sources))

	var wg sync.WaitGroup
	for i, source := range p.sources {
		wg.Add(1)
		i, source := i, source
		err := p.fetchPool.Submit(func() {
			defer wg.Done()
			results[i].records, results[i].err = p.fetchSource(ctx, source, query)
		})
		if err != nil {
			results[i].err = err
			wg.Done()
		}
	}
	wg.Wait()

	fetchedAt := time.Now().UTC()

	// Sources are processed in configuration order by a single writer, so
	// duplicate linkage is deterministic for a given fetch outcome.
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	for i, source := range p.sources {
		if results[i].err != nil {
			p.logger.Warn("source fetch failed", "source", source.Name(),
				"state", p.breakers[source.Name()].state(), "err", results[i].err)
			report.SourcesFailed = append(report.SourcesFailed, source.Name())
			continue
		}

		report.SourcesQueried = append(report.SourcesQueried, source.Name())
		report.Fetched += len(results[i].records)

		for _, rec := range results[i].records {
			if err := p.ingestRecord(ctx, source.Name(), rec, fetchedAt, report); err != nil {
				return nil, err
			}
		}
	}

	p.logger.Info("ingestion run complete",
		"fetched", report.Fetched, "malformed", report.Malformed,
		"duplicates", report.DuplicatesRemoved,
		"queried", len(report.SourcesQueried), "failed", len(report.SourcesFailed))

	return report, nil
}

// fetchSource runs one source fetch through its rate limiter, circuit
// breaker and timeout.
func (p *Pipeline) fetchSource(ctx context.Context, source Source, query Query) ([]RawRecord, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	return p.breakers[source.Name()].fetch(fetchCtx, func() ([]RawRecord, error) {
		return source.Fetch(fetchCtx, query)
	})
}

// ingestRecord converts, embeds, dedupes and persists one raw record.
// Malformed records are counted and skipped. Embedding failures degrade to
// a record without vectors, never a failed run.
func (p *Pipeline) ingestRecord(ctx context.Context, sourceName string, rec RawRecord, fetchedAt time.Time, report *Report) error {
	listing, err := toListing(sourceName, rec, fetchedAt)
	if err != nil {
		p.logger.Warn("skipping malformed record", "source", sourceName, "err", err)
		report.Malformed++
		return nil
	}

	p.embed(ctx, listing)

	decision, err := p.dedupeEngine.Check(ctx, listing)
	if err != nil {
		return err
	}
	if decision.Status == dedupe.StatusDuplicate {
		listing.IsDuplicate = true
		listing.DuplicateOf = decision.DuplicateOf
		report.DuplicatesRemoved++
	}

	_, err = p.listingRepo.AddListings(ctx, listing)
	return err
}

// embed populates the listing's description and image vectors.
func (p *Pipeline) embed(ctx context.Context, listing *core.Listing) {
	document := core.BuildListingDocument(listing)
	vector, err := p.provider.Embedder().EmbedText(ctx, document)
	if err != nil {
		p.logger.Warn("description embedding failed, listing stored without vector",
			"source", listing.Source, "sourceId", listing.SourceId, "err", err)
	} else {
		listing.DescriptionVector = reembed.NormalizeVector(vector)
	}

	if len(listing.Photos) == 0 {
		return
	}
	imageVector, err := p.provider.ImageEmbedder().EmbedImage(ctx, listing.Photos[0])
	if err != nil {
		p.logger.Warn("image embedding failed, listing stored without image vector",
			"source", listing.Source, "sourceId", listing.SourceId, "err", err)
		return
	}
	listing.ImageVector = reembed.NormalizeVector(imageVector)
}

// Release releases resources including the fetch worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.fetchPool != nil {
		p.fetchPool.Release()
	}
}
