package reembed

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/poiesic/adoptmatch/ai/mock"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/storage"
	"github.com/poiesic/adoptmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.ListingRepository {
	t.Helper()
	listingRepo, vocabRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vocabRepo.Close()
		listingRepo.Close()
		backend.Close()
	})
	return listingRepo
}

func seedListings(t *testing.T, repo storage.ListingRepository, n int) []*core.Listing {
	t.Helper()
	listings := make([]*core.Listing, n)
	for i := range listings {
		listings[i] = &core.Listing{
			Source:      "petfinder",
			SourceId:    string(rune('a' + i)),
			Name:        "Cat",
			Description: "a calm lap cat",
			Photos:      []string{"https://example.org/cat.jpg"},
			FetchedAt:   time.Now().UTC(),
		}
	}
	_, err := repo.AddListings(context.Background(), listings...)
	require.NoError(t, err)
	return listings
}

func TestReembedder_Run(t *testing.T) {
	repo := newTestRepo(t)
	seeded := seedListings(t, repo, 5)

	var out bytes.Buffer
	config := DefaultConfig()
	config.BatchSize = 2

	r := NewReembedder(repo, mock.NewMockEmbedder(), nil, config, &out)
	require.NoError(t, r.Run(context.Background()))

	for _, l := range seeded {
		got, err := repo.GetListing(context.Background(), l.Id)
		require.NoError(t, err)
		assert.NotEmpty(t, got.DescriptionVector)
		assert.Empty(t, got.ImageVector)
	}

	assert.Contains(t, out.String(), "Reembedding complete")
}

func TestReembedder_Run_WithImages(t *testing.T) {
	repo := newTestRepo(t)
	seeded := seedListings(t, repo, 2)

	var out bytes.Buffer
	config := DefaultConfig()
	config.IncludeImages = true

	r := NewReembedder(repo, mock.NewMockEmbedder(), mock.NewMockImageEmbedder(), config, &out)
	require.NoError(t, r.Run(context.Background()))

	for _, l := range seeded {
		got, err := repo.GetListing(context.Background(), l.Id)
		require.NoError(t, err)
		assert.NotEmpty(t, got.ImageVector)
	}
}

func TestReembedder_Run_EmptyStore(t *testing.T) {
	repo := newTestRepo(t)

	var out bytes.Buffer
	r := NewReembedder(repo, mock.NewMockEmbedder(), nil, nil, &out)
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "No listings found")
}

func TestBatchProcessor_EmbedsDocumentNotRawDescription(t *testing.T) {
	repo := newTestRepo(t)

	listing := &core.Listing{
		Source:      "petfinder",
		SourceId:    "1",
		Description: "sweet girl",
		Breed:       "Persian",
		FetchedAt:   time.Now().UTC(),
	}
	_, err := repo.AddListings(context.Background(), listing)
	require.NoError(t, err)

	var embedded []string
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded = texts
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	bp := NewBatchProcessor(repo, embedder, nil, 1, time.Millisecond)
	require.NoError(t, bp.Process(context.Background(), []*core.Listing{listing}))

	require.Len(t, embedded, 1)
	assert.Equal(t, core.BuildListingDocument(listing), embedded[0])
}

func TestListingIterator_BatchSizes(t *testing.T) {
	repo := newTestRepo(t)
	seedListings(t, repo, 5)

	it := NewListingIterator(repo, 2)

	var batches []int
	err := it.ForEach(context.Background(), func(listings []*core.Listing) error {
		batches = append(batches, len(listings))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, batches)
}

func TestListingIterator_EmptyStore(t *testing.T) {
	repo := newTestRepo(t)

	it := NewListingIterator(repo, 10)
	called := false
	err := it.ForEach(context.Background(), func([]*core.Listing) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
