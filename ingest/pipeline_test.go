package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/adoptmatch/ai/mock"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/dedupe"
	"github.com/poiesic/adoptmatch/storage"
	"github.com/poiesic/adoptmatch/storage/badger"
	"github.com/poiesic/adoptmatch/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a controllable Source for pipeline tests.
type fakeSource struct {
	name        string
	records     []RawRecord
	fetchErr    error
	fetchDelay  time.Duration
	validValues map[core.VocabularyCategory][]string
	valuesErr   error
	fetchCalls  int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context, query Query) ([]RawRecord, error) {
	s.fetchCalls++
	if s.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.fetchDelay):
		}
	}
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.records, nil
}

func (s *fakeSource) ValidValues(ctx context.Context, category core.VocabularyCategory) ([]string, error) {
	if s.valuesErr != nil {
		return nil, s.valuesErr
	}
	return s.validValues[category], nil
}

func persianRecord(sourceId, name string) RawRecord {
	return RawRecord{
		SourceId:     sourceId,
		Name:         name,
		Description:  "sweet lap cat who loves sunbeams",
		Organization: "Happy Paws Rescue",
		Breed:        "Persian",
		Age:          "adult",
		Gender:       "female",
		Size:         "medium",
	}
}

func newTestPipeline(t *testing.T, sources []Source, opts ...Option) (*Pipeline, storage.ListingRepository) {
	t.Helper()
	listingRepo, vocabRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vocabRepo.Close()
		listingRepo.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider()
	engine, err := dedupe.NewEngine(listingRepo)
	require.NoError(t, err)
	index, err := vocab.NewIndex(vocabRepo, provider.Embedder())
	require.NoError(t, err)

	pipeline, err := NewPipeline(listingRepo, provider, engine, index, sources, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, listingRepo
}

func TestRun_PersistsListings(t *testing.T) {
	source := &fakeSource{
		name:    "petfinder",
		records: []RawRecord{persianRecord("1", "Fluffy"), persianRecord("2", "Max")},
	}
	source.records[1].Breed = "Siamese"

	pipeline, repo := newTestPipeline(t, []Source{source})

	report, err := pipeline.Run(context.Background(), Query{City: "Portland", State: "OR"}, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	assert.Zero(t, report.Malformed)
	assert.Zero(t, report.DuplicatesRemoved)
	assert.Equal(t, []string{"petfinder"}, report.SourcesQueried)
	assert.Empty(t, report.SourcesFailed)

	count, err := repo.CountListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Listings land embedded and fingerprinted.
	listing, err := repo.GetListing(context.Background(), core.IDFromContent(core.ListingKey("petfinder", "1")))
	require.NoError(t, err)
	assert.NotEmpty(t, listing.DescriptionVector)
	assert.NotEmpty(t, listing.Fingerprint)
}

func TestRun_CrossSourceDuplicate(t *testing.T) {
	a := &fakeSource{name: "petfinder", records: []RawRecord{persianRecord("1", "Fluffy")}}
	b := &fakeSource{name: "rescuegroups", records: []RawRecord{persianRecord("A9", "Fluffy")}}

	pipeline, repo := newTestPipeline(t, []Source{a, b})

	report, err := pipeline.Run(context.Background(), Query{}, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 1, report.DuplicatesRemoved)

	// The duplicate record is retained for provenance, linked to the original.
	dup, err := repo.GetListing(context.Background(), core.IDFromContent(core.ListingKey("rescuegroups", "A9")))
	require.NoError(t, err)
	assert.True(t, dup.IsDuplicate)
	assert.Equal(t, core.IDFromContent(core.ListingKey("petfinder", "1")), dup.DuplicateOf)
}

func TestRun_MalformedRecordsSkipped(t *testing.T) {
	source := &fakeSource{
		name:    "petfinder",
		records: []RawRecord{persianRecord("", "NoId"), persianRecord("1", "Fluffy")},
	}

	pipeline, repo := newTestPipeline(t, []Source{source})

	report, err := pipeline.Run(context.Background(), Query{}, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 1, report.Malformed)

	count, err := repo.CountListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_FailingSourceDoesNotFailRun(t *testing.T) {
	good := &fakeSource{name: "petfinder", records: []RawRecord{persianRecord("1", "Fluffy")}}
	bad := &fakeSource{name: "rescuegroups", fetchErr: errors.New("503 service unavailable")}

	pipeline, repo := newTestPipeline(t, []Source{good, bad})

	report, err := pipeline.Run(context.Background(), Query{}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"petfinder"}, report.SourcesQueried)
	assert.Equal(t, []string{"rescuegroups"}, report.SourcesFailed)
	assert.Equal(t, 1, report.Fetched)

	count, err := repo.CountListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_TimedOutSourceReportedFailed(t *testing.T) {
	fast := &fakeSource{name: "petfinder", records: []RawRecord{persianRecord("1", "Fluffy")}}
	slow := &fakeSource{name: "adoptapet", fetchDelay: 200 * time.Millisecond}

	pipeline, _ := newTestPipeline(t, []Source{fast, slow}, WithFetchTimeout(20*time.Millisecond))

	report, err := pipeline.Run(context.Background(), Query{}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"petfinder"}, report.SourcesQueried)
	assert.Equal(t, []string{"adoptapet"}, report.SourcesFailed)
}

func TestRun_UseCacheSkipsFetch(t *testing.T) {
	source := &fakeSource{name: "petfinder", records: []RawRecord{persianRecord("1", "Fluffy")}}
	pipeline, _ := newTestPipeline(t, []Source{source})

	report, err := pipeline.Run(context.Background(), Query{}, true)
	require.NoError(t, err)

	assert.Zero(t, report.Fetched)
	assert.Empty(t, report.SourcesQueried)
	assert.Zero(t, source.fetchCalls)
}

func TestRun_ReAddSameListingIsNotADuplicate(t *testing.T) {
	source := &fakeSource{name: "petfinder", records: []RawRecord{persianRecord("1", "Fluffy")}}
	pipeline, repo := newTestPipeline(t, []Source{source})
	ctx := context.Background()

	_, err := pipeline.Run(ctx, Query{}, false)
	require.NoError(t, err)

	// Same source reporting the same animal again overwrites in place; it
	// must not be flagged as a duplicate of itself even though it collides
	// with its own cached fingerprint.
	report, err := pipeline.Run(ctx, Query{}, false)
	require.NoError(t, err)
	assert.Zero(t, report.DuplicatesRemoved)

	count, err := repo.CountListings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexVocabularies(t *testing.T) {
	good := &fakeSource{
		name: "petfinder",
		validValues: map[core.VocabularyCategory][]string{
			core.CategoryColor: {"Black", "White"},
			core.CategoryBreed: {"Persian"},
		},
	}
	degraded := &fakeSource{name: "rescuegroups", valuesErr: errors.New("enumeration endpoint down")}

	listingRepo, vocabRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vocabRepo.Close()
		listingRepo.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider()
	engine, err := dedupe.NewEngine(listingRepo)
	require.NoError(t, err)
	index, err := vocab.NewIndex(vocabRepo, provider.Embedder())
	require.NoError(t, err)

	pipeline, err := NewPipeline(listingRepo, provider, engine, index, []Source{good, degraded})
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	ctx := context.Background()
	require.NoError(t, pipeline.IndexVocabularies(ctx))

	indexed, err := index.Indexed(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	assert.True(t, indexed)

	indexed, err = index.Indexed(ctx, "rescuegroups", core.CategoryColor)
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	bad := &fakeSource{name: "petfinder", fetchErr: errors.New("boom")}
	pipeline, _ := newTestPipeline(t, []Source{bad})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := pipeline.Run(ctx, Query{}, false)
		require.NoError(t, err)
	}
	require.Equal(t, 3, bad.fetchCalls)

	// Breaker is open now: the source is not called again.
	report, err := pipeline.Run(ctx, Query{}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"petfinder"}, report.SourcesFailed)
	assert.Equal(t, 3, bad.fetchCalls)
}

func TestNewPipeline_Validation(t *testing.T) {
	listingRepo, vocabRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vocabRepo.Close()
		listingRepo.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider()
	engine, err := dedupe.NewEngine(listingRepo)
	require.NoError(t, err)
	index, err := vocab.NewIndex(vocabRepo, provider.Embedder())
	require.NoError(t, err)
	sources := []Source{&fakeSource{name: "petfinder"}}

	_, err = NewPipeline(nil, provider, engine, index, sources)
	assert.ErrorIs(t, err, ErrListingRepositoryRequired)

	_, err = NewPipeline(listingRepo, nil, engine, index, sources)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewPipeline(listingRepo, provider, nil, index, sources)
	assert.ErrorIs(t, err, ErrDedupeEngineRequired)

	_, err = NewPipeline(listingRepo, provider, engine, nil, sources)
	assert.ErrorIs(t, err, ErrVocabularyIndexRequired)

	_, err = NewPipeline(listingRepo, provider, engine, index, nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestToListing(t *testing.T) {
	fetchedAt := time.Now().UTC()

	t.Run("carries all fields", func(t *testing.T) {
		rec := persianRecord("1", "Fluffy")
		rec.Photos = []string{"https://example.org/cat.jpg"}
		rec.Colors = []string{"White"}
		rec.GoodWithCats = true

		listing, err := toListing("petfinder", rec, fetchedAt)
		require.NoError(t, err)

		assert.Equal(t, "petfinder", listing.Source)
		assert.Equal(t, "1", listing.SourceId)
		assert.Equal(t, "Persian", listing.Breed)
		assert.Equal(t, []string{"White"}, listing.Colors)
		assert.True(t, listing.GoodWithCats)
		assert.Equal(t, fetchedAt, listing.FetchedAt)
	})

	t.Run("missing source id is malformed", func(t *testing.T) {
		_, err := toListing("petfinder", RawRecord{Name: "NoId"}, fetchedAt)
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})
}
