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

	"github.com/poiesic/adoptmatch/core"
)

// DefaultSimilarityThreshold is the minimum vector similarity for the
// vector tier to accept a match.
const DefaultSimilarityThreshold = 0.7

// Normalizer resolves free-text user terms against a source's controlled
// vocabulary through three escalating tiers:
//
//  1. Dictionary: static synonym mapping, filtered to the source's valid values.
//  2. Vector: nearest-neighbor lookup in the Index, accepted above a
//     similarity threshold. Skipped for sources that were never indexed.
//  3. Exact/substring: case-insensitive exact match, then substring containment.
//
// The first tier producing a match wins per term. Terms that no tier
// resolves are dropped with a warning; over-broad results beat a hard
// failure. Multiple terms resolve independently and union.
type Normalizer struct {
	index     *Index
	dict      Dictionary
	threshold float32
	logger    *slog.Logger
}

// NormalizerOption is a functional option for configuring a Normalizer.
type NormalizerOption func(*Normalizer)

// WithDictionary replaces the built-in synonym dictionary.
func WithDictionary(dict Dictionary) NormalizerOption {
	return func(n *Normalizer) {
		n.dict = dict
	}
}

// WithSimilarityThreshold sets the vector tier's acceptance threshold.
func WithSimilarityThreshold(threshold float32) NormalizerOption {
	return func(n *Normalizer) {
		n.threshold = threshold
	}
}

// WithNormalizerLogger sets a custom logger for the normalizer.
func WithNormalizerLogger(logger *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// NewNormalizer creates a Normalizer over the given index.
func NewNormalizer(index *Index, opts ...NormalizerOption) (*Normalizer, error) {
	if index == nil {
		return nil, ErrNilRepository
	}

	n := &Normalizer{
		index:     index,
		dict:      DefaultDictionary(),
		threshold: DefaultSimilarityThreshold,
		logger:    slog.Default().With("component", "vocab-normalizer"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Normalize resolves raw user terms to canonical values from valid.
// The resolved sets of all terms are unioned, order preserved, duplicates
// removed. Unresolvable terms are logged and skipped, never an error.
func (n *Normalizer) Normalize(ctx context.Context, terms []string, valid []string, source string, category core.VocabularyCategory) []string {
	var resolved []string
	seen := make(map[string]struct{})

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}

		matches := n.resolveTerm(ctx, term, valid, source, category)
		if len(matches) == 0 {
			n.logger.Warn("dropping unresolvable term",
				"term", term, "source", source, "category", category)
			continue
		}

		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			resolved = append(resolved, match)
		}
	}

	return resolved
}

// resolveTerm runs the tier chain for one term, returning the first tier's
// matches.
func (n *Normalizer) resolveTerm(ctx context.Context, term string, valid []string, source string, category core.VocabularyCategory) []string {
	if matches := n.dictionaryTier(term, valid, category); len(matches) > 0 {
		return matches
	}
	if matches := n.vectorTier(ctx, term, valid, source, category); len(matches) > 0 {
		return matches
	}
	return n.substringTier(term, valid)
}

// dictionaryTier maps a synonym to canonical candidates and keeps only
// those present in the source's valid values.
func (n *Normalizer) dictionaryTier(term string, valid []string, category core.VocabularyCategory) []string {
	candidates := n.dict.Lookup(category, term)
	if len(candidates) == 0 {
		return nil
	}

	var kept []string
	for _, candidate := range candidates {
		if canonical, ok := findExact(candidate, valid); ok {
			kept = append(kept, canonical)
		}
	}
	return kept
}

// vectorTier looks the term up in the vocabulary index, accepting the top
// match above the similarity threshold. Sources that were never indexed
// (vocabulary enumeration failed at startup) skip this tier silently.
func (n *Normalizer) vectorTier(ctx context.Context, term string, valid []string, source string, category core.VocabularyCategory) []string {
	indexed, err := n.index.Indexed(ctx, source, category)
	if err != nil || !indexed {
		return nil
	}

	matches, err := n.index.Search(ctx, term, 1, source, category)
	if err != nil {
		n.logger.Warn("vector tier lookup failed", "term", term, "err", err)
		return nil
	}
	if len(matches) == 0 || matches[0].Score < n.threshold {
		return nil
	}

	// The index may be stale relative to the caller's valid list.
	if canonical, ok := findExact(matches[0].Entry.Value, valid); ok {
		return []string{canonical}
	}
	return nil
}

// substringTier tries case-insensitive exact match, then the first valid
// value containing the term.
func (n *Normalizer) substringTier(term string, valid []string) []string {
	if canonical, ok := findExact(term, valid); ok {
		return []string{canonical}
	}

	lower := strings.ToLower(term)
	for _, value := range valid {
		if strings.Contains(strings.ToLower(value), lower) {
			return []string{value}
		}
	}
	return nil
}

// findExact finds term in valid case-insensitively, returning the canonical
// spelling from the valid list.
func findExact(term string, valid []string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(term))
	for _, value := range valid {
		if strings.ToLower(value) == lower {
			return value, true
		}
	}
	return "", false
}
