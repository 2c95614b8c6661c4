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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/adoptmatch/ai"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/reembed"
	"github.com/poiesic/adoptmatch/storage"
	"github.com/poiesic/adoptmatch/vocab"
)

const (
	// DefaultVectorWeight is the semantic similarity share of the final score.
	DefaultVectorWeight = 0.6
	// DefaultAttributeWeight is the soft-preference share of the final score.
	DefaultAttributeWeight = 0.4

	// poolMultiplier oversizes the semantic candidate pool so hard-constraint
	// filtering still leaves enough results.
	poolMultiplier = 2
)

// Ranker ranks cached listings against a user profile by combining semantic
// similarity of the personality text with a structured soft-preference score.
type Ranker struct {
	listingRepo     storage.ListingRepository
	embedder        ai.Embedder
	normalizer      *vocab.Normalizer
	vocabIndex      *vocab.Index
	vectorWeight    float64
	attributeWeight float64
	minSimilarity   float32
	logger          *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithRankWeights replaces the default 60/40 vector/attribute weighting.
func WithRankWeights(vector, attribute float64) Option {
	return func(r *Ranker) error {
		if vector < 0 || attribute < 0 || math.Abs(vector+attribute-1.0) > 1e-6 {
			return ErrInvalidRankWeights
		}
		r.vectorWeight = vector
		r.attributeWeight = attribute
		return nil
	}
}

// WithMinSimilarity sets the semantic pool's similarity floor.
func WithMinSimilarity(min float32) Option {
	return func(r *Ranker) error {
		r.minSimilarity = min
		return nil
	}
}

// NewRanker creates a new ranker.
func NewRanker(
	listingRepo storage.ListingRepository,
	provider ai.AIProvider,
	normalizer *vocab.Normalizer,
	vocabIndex *vocab.Index,
	opts ...Option,
) (*Ranker, error) {
	if listingRepo == nil {
		return nil, ErrListingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if normalizer == nil || vocabIndex == nil {
		return nil, ErrNormalizerRequired
	}

	r := &Ranker{
		listingRepo:     listingRepo,
		embedder:        provider.Embedder(),
		normalizer:      normalizer,
		vocabIndex:      vocabIndex,
		vectorWeight:    DefaultVectorWeight,
		attributeWeight: DefaultAttributeWeight,
		logger:          slog.Default().With("component", "match-ranker"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Rank returns up to k matches for the profile, best first.
func (r *Ranker) Rank(ctx context.Context, profile *core.Profile, k int) ([]*core.Match, error) {
	return r.RankWithMonitor(ctx, profile, k, nil)
}

// RankWithMonitor ranks with stage callbacks for observability.
func (r *Ranker) RankWithMonitor(ctx context.Context, profile *core.Profile, k int, monitor Monitor) ([]*core.Match, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if err := core.ValidateProfile(profile); err != nil {
		return nil, err
	}

	monitor.Start(profile)

	vector, err := r.embedder.EmbedText(ctx, profile.PersonalityText)
	if err != nil {
		r.logger.Error("error embedding profile text", "err", err)
		return nil, err
	}

	pool, err := r.listingRepo.FindSimilarDescriptions(ctx, reembed.NormalizeVector(vector), r.minSimilarity, poolMultiplier*k)
	if err != nil {
		r.logger.Error("error querying semantic pool", "err", err)
		return nil, err
	}
	monitor.AfterSemanticSearch(pool)

	// Hard constraints are a filter, never a re-ranking signal.
	survivors := make([]*core.ScoredListing, 0, len(pool))
	for _, candidate := range pool {
		if passesHardConstraints(candidate.Listing, profile) {
			survivors = append(survivors, candidate)
		}
	}
	monitor.AfterHardConstraintFilter(survivors)

	// Preferred colors and breeds are raw user terms; resolve them against
	// each source's vocabulary once per query.
	prefs := newPreferenceResolver(r.normalizer, r.vocabIndex, profile, monitor)

	matches := make([]*core.Match, 0, len(survivors))
	for _, candidate := range survivors {
		matches = append(matches, r.scoreCandidate(ctx, candidate, profile, prefs))
	}

	slices.SortFunc(matches, func(a, b *core.Match) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		// Ties prefer the freshest listing.
		if !a.Listing.FetchedAt.Equal(b.Listing.FetchedAt) {
			if a.Listing.FetchedAt.After(b.Listing.FetchedAt) {
				return -1
			}
			return 1
		}
		// Stable final ordering for identical timestamps.
		if a.Listing.Id < b.Listing.Id {
			return -1
		}
		return 1
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	monitor.Finish(matches)

	return matches, nil
}

// passesHardConstraints reports whether a listing survives the profile's
// hard constraints.
func passesHardConstraints(listing *core.Listing, profile *core.Profile) bool {
	if profile.MaxDistanceMi > 0 && listing.DistanceMi > profile.MaxDistanceMi {
		return false
	}
	if len(profile.AgeRange) > 0 && !slices.Contains(profile.AgeRange, listing.Age) {
		return false
	}
	if profile.RequireGoodWithChildren && !listing.GoodWithChildren {
		return false
	}
	if profile.RequireGoodWithDogs && !listing.GoodWithDogs {
		return false
	}
	if profile.RequireGoodWithCats && !listing.GoodWithCats {
		return false
	}
	if listing.SpecialNeeds && !profile.IncludeSpecialNeeds {
		return false
	}
	return true
}

// scoreCandidate combines the candidate's semantic similarity with its
// soft-preference score and synthesizes the explanation outputs.
func (r *Ranker) scoreCandidate(ctx context.Context, candidate *core.ScoredListing, profile *core.Profile, prefs *preferenceResolver) *core.Match {
	listing := candidate.Listing

	attrScore, considered, matching, missing := r.attributeScore(ctx, listing, profile, prefs)

	var score float64
	if considered == 0 {
		// No soft preferences: the semantic signal carries the full score.
		score = float64(candidate.Score)
	} else {
		score = r.vectorWeight*float64(candidate.Score) + r.attributeWeight*attrScore
	}

	match := &core.Match{
		Listing:            listing,
		VectorSimilarity:   candidate.Score,
		AttributeScore:     attrScore,
		Score:              score,
		MatchingAttributes: matching,
		MissingAttributes:  missing,
	}
	match.Explanation = buildExplanation(match, profile)
	return match
}

// attributeScore computes the fraction of soft preferences the listing
// satisfies, along with the explicit matching and missing attribute lists.
func (r *Ranker) attributeScore(ctx context.Context, listing *core.Listing, profile *core.Profile, prefs *preferenceResolver) (score float64, considered int, matching, missing []string) {
	satisfied := 0

	if colors := prefs.colors(ctx, listing.Source); len(colors) > 0 {
		considered++
		if matched, ok := firstIntersection(colors, listing.Colors); ok {
			satisfied++
			matching = append(matching, "color: "+matched)
		} else {
			missing = append(missing, "color: "+strings.Join(colors, " or "))
		}
	}

	if breeds := prefs.breeds(ctx, listing.Source); len(breeds) > 0 {
		considered++
		if matched, ok := firstIntersection(breeds, []string{listing.Breed}); ok {
			satisfied++
			matching = append(matching, "breed: "+matched)
		} else {
			missing = append(missing, "breed: "+strings.Join(breeds, " or "))
		}
	}

	if profile.PreferredCoatLength != "" {
		considered++
		if strings.EqualFold(profile.PreferredCoatLength, listing.CoatLength) {
			satisfied++
			matching = append(matching, "coat length: "+listing.CoatLength)
		} else {
			missing = append(missing, "coat length: "+profile.PreferredCoatLength)
		}
	}

	if considered > 0 {
		score = float64(satisfied) / float64(considered)
	}
	return score, considered, matching, missing
}

// buildExplanation renders the required human-readable match summary.
func buildExplanation(match *core.Match, profile *core.Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%.0f%% match: personality similarity %.2f", match.Score*100, match.VectorSimilarity)

	if len(match.MatchingAttributes) > 0 {
		fmt.Fprintf(&b, "; matches %s", strings.Join(match.MatchingAttributes, ", "))
	}
	if len(match.MissingAttributes) > 0 {
		fmt.Fprintf(&b, "; missing %s", strings.Join(match.MissingAttributes, ", "))
	}
	if containsAllQueryWords(match.Listing.Description, profile.PersonalityText) {
		b.WriteString("; description echoes your profile")
	}

	return b.String()
}

// firstIntersection returns the first want value present in have,
// case-insensitively, preserving have's canonical spelling.
func firstIntersection(want, have []string) (string, bool) {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return h, true
			}
		}
	}
	return "", false
}

// preferenceResolver normalizes the profile's preferred colors and breeds
// against each source's vocabulary, memoized per source for the query.
type preferenceResolver struct {
	normalizer *vocab.Normalizer
	index      *vocab.Index
	profile    *core.Profile
	monitor    Monitor

	resolvedColors map[string][]string
	resolvedBreeds map[string][]string
}

func newPreferenceResolver(normalizer *vocab.Normalizer, index *vocab.Index, profile *core.Profile, monitor Monitor) *preferenceResolver {
	return &preferenceResolver{
		normalizer:     normalizer,
		index:          index,
		profile:        profile,
		monitor:        monitor,
		resolvedColors: make(map[string][]string),
		resolvedBreeds: make(map[string][]string),
	}
}

func (pr *preferenceResolver) colors(ctx context.Context, source string) []string {
	if len(pr.profile.PreferredColors) == 0 {
		return nil
	}
	if resolved, ok := pr.resolvedColors[source]; ok {
		return resolved
	}

	resolved := pr.resolve(ctx, pr.profile.PreferredColors, source, core.CategoryColor)
	pr.resolvedColors[source] = resolved
	pr.monitor.AfterPreferenceResolution(source, resolved, pr.resolvedBreeds[source])
	return resolved
}

func (pr *preferenceResolver) breeds(ctx context.Context, source string) []string {
	if len(pr.profile.PreferredBreeds) == 0 {
		return nil
	}
	if resolved, ok := pr.resolvedBreeds[source]; ok {
		return resolved
	}

	resolved := pr.resolve(ctx, pr.profile.PreferredBreeds, source, core.CategoryBreed)
	pr.resolvedBreeds[source] = resolved
	pr.monitor.AfterPreferenceResolution(source, pr.resolvedColors[source], resolved)
	return resolved
}

func (pr *preferenceResolver) resolve(ctx context.Context, terms []string, source string, category core.VocabularyCategory) []string {
	valid, err := pr.index.Values(ctx, source, category)
	if err != nil {
		return nil
	}
	return pr.normalizer.Normalize(ctx, terms, valid, source, category)
}
