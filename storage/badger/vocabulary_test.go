package badger

import (
	"context"
	"testing"

	"github.com/poiesic/adoptmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(source string, category core.VocabularyCategory, value string, vector []float32) *core.VocabularyEntry {
	return &core.VocabularyEntry{
		Source:   source,
		Category: category,
		Value:    value,
		Vector:   vector,
	}
}

func TestAddEntries(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	added, err := repo.AddEntries(ctx,
		testEntry("petfinder", core.CategoryColor, "Black", []float32{1, 0}),
		testEntry("petfinder", core.CategoryColor, "White", []float32{0, 1}))
	require.NoError(t, err)
	require.Len(t, added, 2)

	for _, entry := range added {
		assert.NotZero(t, entry.Id)
		assert.False(t, entry.InsertedAt.IsZero())
	}

	t.Run("re-add is idempotent", func(t *testing.T) {
		_, err := repo.AddEntries(ctx,
			testEntry("petfinder", core.CategoryColor, "Black", []float32{1, 0}))
		require.NoError(t, err)

		count, err := repo.CountEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("invalid entry rejected", func(t *testing.T) {
		_, err := repo.AddEntries(ctx,
			testEntry("petfinder", core.CategoryColor, "", nil))
		assert.ErrorIs(t, err, core.ErrEmptyVocabularyValue)
	})
}

func TestHasEntries(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	found, err := repo.HasEntries(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = repo.AddEntries(ctx,
		testEntry("petfinder", core.CategoryColor, "Black", []float32{1, 0}))
	require.NoError(t, err)

	found, err = repo.HasEntries(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	assert.True(t, found)

	// Other categories and sources remain unaffected.
	found, err = repo.HasEntries(ctx, "petfinder", core.CategoryBreed)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.HasEntries(ctx, "rescuegroups", core.CategoryColor)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetEntries_ScopedBySourceAndCategory(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx,
		testEntry("petfinder", core.CategoryColor, "Black", []float32{1, 0}),
		testEntry("petfinder", core.CategoryBreed, "Persian", []float32{0, 1}),
		testEntry("rescuegroups", core.CategoryColor, "White", []float32{1, 1}))
	require.NoError(t, err)

	entries, err := repo.GetEntries(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Black", entries[0].Value)
}

func TestFindSimilarEntries(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx,
		testEntry("petfinder", core.CategoryColor, "Black", []float32{1, 0, 0}),
		testEntry("petfinder", core.CategoryColor, "White", []float32{0, 1, 0}),
		testEntry("petfinder", core.CategoryColor, "Gray", []float32{0.7, 0.7, 0}))
	require.NoError(t, err)

	matches, err := repo.FindSimilarEntries(ctx, []float32{1, 0, 0}, "petfinder", core.CategoryColor, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Black", matches[0].Entry.Value)
	assert.Equal(t, "Gray", matches[1].Entry.Value)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestClear(t *testing.T) {
	_, repo := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx,
		testEntry("petfinder", core.CategoryColor, "Black", []float32{1, 0}),
		testEntry("petfinder", core.CategoryBreed, "Persian", []float32{0, 1}))
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx, "petfinder", core.CategoryColor))

	found, err := repo.HasEntries(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.HasEntries(ctx, "petfinder", core.CategoryBreed)
	require.NoError(t, err)
	assert.True(t, found)
}
