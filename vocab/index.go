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


package vocab

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/adoptmatch/ai"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/reembed"
	"github.com/poiesic/adoptmatch/storage"
)

// Index maintains embedded vocabulary entries per source and category so
// free-text terms can be resolved by vector similarity.
type Index struct {
	repo     storage.VocabularyRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// IndexOption is a functional option for configuring an Index.
type IndexOption func(*Index)

// WithLogger sets a custom logger for the index.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(idx *Index) {
		idx.logger = logger
	}
}

// NewIndex creates a vocabulary index over the given repository and embedder.
func NewIndex(repo storage.VocabularyRepository, embedder ai.Embedder, opts ...IndexOption) (*Index, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}

	idx := &Index{
		repo:     repo,
		embedder: embedder,
		logger:   slog.Default().With("component", "vocab-index"),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Build embeds and stores a source's valid values for a category.
// Idempotent: if entries already exist for the source+category pair, Build
// is a no-op. Presence is checked by pair, not content, so a stale
// vocabulary needs an explicit Clear before rebuilding.
func (idx *Index) Build(ctx context.Context, source string, category core.VocabularyCategory, values []string) error {
	if err := core.ValidateCategory(category); err != nil {
		return err
	}

	exists, err := idx.repo.HasEntries(ctx, source, category)
	if err != nil {
		return err
	}
	if exists {
		idx.logger.Debug("vocabulary already indexed", "source", source, "category", category)
		return nil
	}
	if len(values) == 0 {
		idx.logger.Warn("no vocabulary values to index", "source", source, "category", category)
		return nil
	}

	vectors, err := idx.embedder.EmbedTexts(ctx, values)
	if err != nil {
		return err
	}

	entries := make([]*core.VocabularyEntry, len(values))
	for i, value := range values {
		var vector []float32
		if i < len(vectors) {
			vector = reembed.NormalizeVector(vectors[i])
		}
		entries[i] = &core.VocabularyEntry{
			Source:   source,
			Category: category,
			Value:    value,
			Vector:   vector,
		}
	}

	if _, err := idx.repo.AddEntries(ctx, entries...); err != nil {
		return err
	}

	idx.logger.Info("indexed vocabulary", "source", source, "category", category, "values", len(values))
	return nil
}

// Indexed reports whether a source+category pair has vocabulary entries.
func (idx *Index) Indexed(ctx context.Context, source string, category core.VocabularyCategory) (bool, error) {
	return idx.repo.HasEntries(ctx, source, category)
}

// Values returns the canonical vocabulary values for a source+category.
func (idx *Index) Values(ctx context.Context, source string, category core.VocabularyCategory) ([]string, error) {
	entries, err := idx.repo.GetEntries(ctx, source, category)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(entries))
	for i, entry := range entries {
		values[i] = entry.Value
	}
	return values, nil
}

// Search embeds the term and returns the k most similar vocabulary entries
// of the source+category, sorted descending by similarity.
func (idx *Index) Search(ctx context.Context, term string, k int, source string, category core.VocabularyCategory) ([]*core.VocabularyMatch, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptyTerm
	}

	vector, err := idx.embedder.EmbedText(ctx, term)
	if err != nil {
		return nil, err
	}

	return idx.repo.FindSimilarEntries(ctx, reembed.NormalizeVector(vector), source, category, k)
}

// Clear removes all entries for a source+category so it can be rebuilt.
func (idx *Index) Clear(ctx context.Context, source string, category core.VocabularyCategory) error {
	return idx.repo.Clear(ctx, source, category)
}
