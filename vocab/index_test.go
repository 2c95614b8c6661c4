package vocab

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/adoptmatch/ai/mock"
	"github.com/poiesic/adoptmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Build(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	index, repo := newTestIndex(t, embedder)
	ctx := context.Background()

	values := []string{"Black", "White", "Orange"}
	require.NoError(t, index.Build(ctx, "petfinder", core.CategoryColor, values))

	indexed, err := index.Indexed(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	assert.True(t, indexed)

	entries, err := repo.GetEntries(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, entry := range entries {
		assert.NotEmpty(t, entry.Vector)
	}

	t.Run("rebuild is a no-op", func(t *testing.T) {
		before := embedder.CallCount()
		require.NoError(t, index.Build(ctx, "petfinder", core.CategoryColor, []string{"Blue"}))
		assert.Equal(t, before, embedder.CallCount())

		entries, err := repo.GetEntries(ctx, "petfinder", core.CategoryColor)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("clear allows rebuild", func(t *testing.T) {
		require.NoError(t, index.Clear(ctx, "petfinder", core.CategoryColor))
		require.NoError(t, index.Build(ctx, "petfinder", core.CategoryColor, []string{"Blue"}))

		values, err := index.Values(ctx, "petfinder", core.CategoryColor)
		require.NoError(t, err)
		assert.Equal(t, []string{"Blue"}, values)
	})
}

func TestIndex_Build_EmptyValues(t *testing.T) {
	index, _ := newTestIndex(t, nil)
	ctx := context.Background()

	require.NoError(t, index.Build(ctx, "petfinder", core.CategoryColor, nil))

	indexed, err := index.Indexed(ctx, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestIndex_Build_InvalidCategory(t *testing.T) {
	index, _ := newTestIndex(t, nil)
	err := index.Build(context.Background(), "petfinder", "pattern", []string{"Striped"})
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestIndex_Search(t *testing.T) {
	index, _ := newTestIndex(t, nil)
	ctx := context.Background()

	require.NoError(t, index.Build(ctx, "petfinder", core.CategoryColor, []string{"Black", "White"}))

	matches, err := index.Search(ctx, "Black", 2, "petfinder", core.CategoryColor)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Black", matches[0].Entry.Value)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)

	t.Run("empty term", func(t *testing.T) {
		_, err := index.Search(ctx, "  ", 1, "petfinder", core.CategoryColor)
		assert.ErrorIs(t, err, ErrEmptyTerm)
	})
}

func TestNewIndex_Validation(t *testing.T) {
	_, repo := newTestIndex(t, nil)

	_, err := NewIndex(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrNilRepository)

	_, err = NewIndex(repo, nil)
	assert.ErrorIs(t, err, ErrNilEmbedder)
}

func TestDictionary_Lookup(t *testing.T) {
	dict := DefaultDictionary()

	assert.Equal(t, []string{"Black & White / Tuxedo"}, dict.Lookup(core.CategoryColor, "Tuxedo"))
	assert.Equal(t, []string{"Sphynx"}, dict.Lookup(core.CategoryBreed, " sphinx "))
	assert.Nil(t, dict.Lookup(core.CategoryColor, "nonexistent"))
}

func TestDictionary_Merge(t *testing.T) {
	dict := DefaultDictionary()
	dict.Merge(Dictionary{
		core.CategoryColor: {
			"tuxedo": {"Tuxedo"},
			"void":   {"Black"},
		},
	})

	assert.Equal(t, []string{"Tuxedo"}, dict.Lookup(core.CategoryColor, "tuxedo"))
	assert.Equal(t, []string{"Black"}, dict.Lookup(core.CategoryColor, "void"))
	// Untouched entries survive the merge.
	assert.Equal(t, []string{"Tortoiseshell"}, dict.Lookup(core.CategoryColor, "tortie"))
}

func TestLoadDictionaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	content := `color:
  void:
    - Black
breed:
  moggy:
    - Domestic Short Hair
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	dict, err := LoadDictionaryFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Black"}, dict.Lookup(core.CategoryColor, "void"))
	assert.Equal(t, []string{"Domestic Short Hair"}, dict.Lookup(core.CategoryBreed, "moggy"))

	t.Run("unknown category", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("pattern:\n  striped:\n    - Striped\n"), 0644))

		_, err := LoadDictionaryFile(bad)
		assert.ErrorIs(t, err, core.ErrInvalidCategory)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDictionaryFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
