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


package ai

import (
	"context"
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder decorates an Embedder with an in-process LRU cache keyed by
// the exact input text. Re-embedding identical listing documents and repeated
// profile texts is common enough that the cache pays for itself quickly.
type CachedEmbedder struct {
	inner  Embedder
	cache  *lru.Cache[string, []float32]
	logger *slog.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with an LRU cache of the given capacity.
func NewCachedEmbedder(inner Embedder, capacity int) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, errors.New("ai: cached embedder requires an inner embedder")
	}

	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}

	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		logger: slog.Default().With("component", "cached-embedder"),
	}, nil
}

// EmbedText returns the cached embedding when present, delegating to the
// inner embedder on a miss.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := c.cache.Get(text); ok {
		return vector, nil
	}

	vector, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(text, vector)
	return vector, nil
}

// EmbedTexts embeds a batch, serving cached entries and forwarding only the
// misses to the inner embedder in a single call.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vector, ok := c.cache.Get(text); ok {
			results[i] = vector
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return results, nil
	}

	c.logger.Debug("embedding cache misses", "total", len(texts), "misses", len(missing))

	vectors, err := c.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, errors.New("ai: embedder returned wrong number of vectors")
	}

	for i, vector := range vectors {
		results[missingIdx[i]] = vector
		c.cache.Add(missing[i], vector)
	}
	return results, nil
}

// Len returns the number of cached embeddings.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *CachedEmbedder) Purge() {
	c.cache.Purge()
}
