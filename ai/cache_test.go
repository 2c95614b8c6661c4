package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records how many texts the inner embedder actually saw.
type countingEmbedder struct {
	singleCalls int
	batchTexts  []string
}

func (e *countingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.singleCalls++
	return []float32{float32(len(text)), 1}, nil
}

func (e *countingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchTexts = append(e.batchTexts, texts...)
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

func TestNewCachedEmbedder(t *testing.T) {
	t.Run("requires inner embedder", func(t *testing.T) {
		_, err := NewCachedEmbedder(nil, 16)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		_, err := NewCachedEmbedder(&countingEmbedder{}, 0)
		assert.Error(t, err)
	})
}

func TestCachedEmbedder_EmbedText(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 16)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cached.EmbedText(ctx, "calm lap cat")
	require.NoError(t, err)

	second, err := cached.EmbedText(ctx, "calm lap cat")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.singleCalls)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedEmbedder_EmbedTexts(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 16)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cached.EmbedTexts(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, inner.batchTexts, 3)

	// Second batch overlaps the first; only the new text reaches the inner embedder.
	vectors, err := cached.EmbedTexts(ctx, []string{"b", "d"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []string{"a", "b", "c", "d"}, inner.batchTexts)

	t.Run("fully cached batch skips inner", func(t *testing.T) {
		before := len(inner.batchTexts)
		_, err := cached.EmbedTexts(ctx, []string{"a", "b"})
		require.NoError(t, err)
		assert.Len(t, inner.batchTexts, before)
	})
}

func TestCachedEmbedder_Purge(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 16)
	require.NoError(t, err)

	_, err = cached.EmbedText(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, 1, cached.Len())

	cached.Purge()
	assert.Equal(t, 0, cached.Len())
}

func TestCachedEmbedder_Eviction(t *testing.T) {
	inner := &countingEmbedder{}
	cached, err := NewCachedEmbedder(inner, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for _, text := range []string{"one", "two", "three"} {
		_, err := cached.EmbedText(ctx, text)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cached.Len())

	// "one" was evicted, re-embedding it hits the inner embedder again.
	_, err = cached.EmbedText(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.singleCalls)
}
