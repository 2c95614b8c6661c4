// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package adoptmatch

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/adoptmatch/ai"
	"github.com/poiesic/adoptmatch/ai/openai"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/dedupe"
	"github.com/poiesic/adoptmatch/ingest"
	"github.com/poiesic/adoptmatch/reembed"
	"github.com/poiesic/adoptmatch/search"
	"github.com/poiesic/adoptmatch/storage"
	"github.com/poiesic/adoptmatch/storage/badger"
	"github.com/poiesic/adoptmatch/vocab"
)

// DefaultMatchCount is the number of matches a search returns.
const DefaultMatchCount = 10

// Engine owns the full matching stack: the badger-backed listing cache and
// vocabulary store, the AI provider, the ingestion pipeline, and the ranker.
// All state is held here and injected downward; there are no package-level
// singletons.
type Engine struct {
	backend      *badger.Backend
	listingRepo  storage.ListingRepository
	vocabRepo    storage.VocabularyRepository
	provider     ai.AIProvider
	vocabIndex   *vocab.Index
	normalizer   *vocab.Normalizer
	dedupeEngine *dedupe.Engine
	pipeline     *ingest.Pipeline
	ranker       *search.Ranker
	query        ingest.Query
	matchCount   int
	logger       *slog.Logger
}

// Stats summarizes the cache for callers.
type Stats struct {
	// CacheRecordCount is the total number of cached listings, duplicates
	// included.
	CacheRecordCount int

	// VectorIndexDocumentCount is the number of live listings carrying a
	// description embedding.
	VectorIndexDocumentCount int
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	inMemory     bool
	query        ingest.Query
	matchCount   int
	dictionary   vocab.Dictionary
	logger       *slog.Logger
	pipelineOpts []ingest.Option
	rankerOpts   []search.Option
	dedupeOpts   []dedupe.Option
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider, bypassing the default
// OpenAI-compatible one. The engine takes ownership and closes it.
func WithAIProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend without a disk footprint.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithQuery sets the location query sent to every source on fetch.
func WithQuery(query ingest.Query) EngineOption {
	return func(o *engineOptions) {
		o.query = query
	}
}

// WithMatchCount sets how many matches a search returns.
// Default is DefaultMatchCount.
func WithMatchCount(k int) EngineOption {
	return func(o *engineOptions) {
		o.matchCount = k
	}
}

// WithDictionary replaces the built-in synonym dictionary, e.g. one merged
// from a YAML overrides file.
func WithDictionary(dict vocab.Dictionary) EngineOption {
	return func(o *engineOptions) {
		o.dictionary = dict
	}
}

// WithEngineLogger sets a custom logger for the engine and its components.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithPipelineOptions forwards options to the ingestion pipeline.
func WithPipelineOptions(opts ...ingest.Option) EngineOption {
	return func(o *engineOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithRankerOptions forwards options to the ranker.
func WithRankerOptions(opts ...search.Option) EngineOption {
	return func(o *engineOptions) {
		o.rankerOpts = append(o.rankerOpts, opts...)
	}
}

// WithDedupeOptions forwards options to the deduplication engine.
func WithDedupeOptions(opts ...dedupe.Option) EngineOption {
	return func(o *engineOptions) {
		o.dedupeOpts = append(o.dedupeOpts, opts...)
	}
}

// NewEngine opens the cache at filePath and wires the matching stack over
// the given sources.
func NewEngine(filePath string, sources []ingest.Source, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:   ai.DefaultConfig(),
		matchCount: DefaultMatchCount,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	listingRepo, err := badger.NewListingRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	vocabRepo, err := badger.NewVocabularyRepository(backend)
	if err != nil {
		listingRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			vocabRepo.Close()
			listingRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	closeAll := func() {
		provider.Close()
		vocabRepo.Close()
		listingRepo.Close()
		backend.Close()
	}

	vocabIndex, err := vocab.NewIndex(vocabRepo, provider.Embedder())
	if err != nil {
		closeAll()
		return nil, err
	}

	normalizerOpts := []vocab.NormalizerOption{}
	if options.dictionary != nil {
		normalizerOpts = append(normalizerOpts, vocab.WithDictionary(options.dictionary))
	}
	normalizer, err := vocab.NewNormalizer(vocabIndex, normalizerOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	dedupeEngine, err := dedupe.NewEngine(listingRepo, options.dedupeOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	pipeline, err := ingest.NewPipeline(listingRepo, provider, dedupeEngine, vocabIndex, sources, options.pipelineOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	ranker, err := search.NewRanker(listingRepo, provider, normalizer, vocabIndex, options.rankerOpts...)
	if err != nil {
		pipeline.Release()
		closeAll()
		return nil, err
	}

	return &Engine{
		backend:      backend,
		listingRepo:  listingRepo,
		vocabRepo:    vocabRepo,
		provider:     provider,
		vocabIndex:   vocabIndex,
		normalizer:   normalizer,
		dedupeEngine: dedupeEngine,
		pipeline:     pipeline,
		ranker:       ranker,
		query:        options.query,
		matchCount:   options.matchCount,
		logger:       options.logger,
	}, nil
}

// Search refreshes the cache from the configured sources (unless useCache is
// set) and ranks the cache against the profile. Partial source failures
// degrade the result, they never fail it; only a malformed profile returns
// an error.
func (e *Engine) Search(ctx context.Context, profile *core.Profile, useCache bool) (*core.SearchResult, error) {
	if err := core.ValidateProfile(profile); err != nil {
		return nil, err
	}

	report, err := e.pipeline.Run(ctx, e.query, useCache)
	if err != nil {
		return nil, err
	}

	matches, err := e.ranker.Rank(ctx, profile, e.matchCount)
	if err != nil {
		return nil, err
	}

	return &core.SearchResult{
		Matches:           matches,
		TotalFound:        report.Fetched - report.Malformed - report.DuplicatesRemoved,
		DuplicatesRemoved: report.DuplicatesRemoved,
		SourcesQueried:    report.SourcesQueried,
	}, nil
}

// Stats reports cache and semantic index sizes.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	records, err := e.listingRepo.CountListings(ctx)
	if err != nil {
		return nil, err
	}
	embedded, err := e.listingRepo.CountEmbedded(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		CacheRecordCount:         records,
		VectorIndexDocumentCount: embedded,
	}, nil
}

// IndexVocabularies builds the per-source vocabulary indexes. Idempotent;
// call once at startup. Sources whose enumeration fails degrade to the
// non-vector normalization tiers.
func (e *Engine) IndexVocabularies(ctx context.Context) error {
	return e.pipeline.IndexVocabularies(ctx)
}

// Purge removes listings fetched more than olderThan ago and returns the
// number removed.
func (e *Engine) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	return e.listingRepo.PurgeOlderThan(ctx, cutoff)
}

// Reembed regenerates embeddings for every cached listing, e.g. after an
// embedding model change. Progress lines are written to progress.
func (e *Engine) Reembed(ctx context.Context, config *reembed.Config, progress io.Writer) error {
	reembedder := reembed.NewReembedder(e.listingRepo, e.provider.Embedder(), e.provider.ImageEmbedder(), config, progress)
	return reembedder.Run(ctx)
}

// ListingRepository exposes the listing cache.
func (e *Engine) ListingRepository() storage.ListingRepository {
	return e.listingRepo
}

// VocabularyRepository exposes the vocabulary store.
func (e *Engine) VocabularyRepository() storage.VocabularyRepository {
	return e.vocabRepo
}

// Close releases the pipeline workers, the AI provider, and the storage
// backend.
func (e *Engine) Close() error {
	e.pipeline.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.vocabRepo.Close(); err != nil {
		e.logger.Error("error closing vocabulary repository", "err", err)
		return err
	}
	if err := e.listingRepo.Close(); err != nil {
		e.logger.Error("error closing listing repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
