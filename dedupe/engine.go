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


package dedupe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/similarity"
	"github.com/poiesic/adoptmatch/storage"
)

// DefaultCompositeThreshold is the minimum composite similarity for a
// fingerprint-colliding pair to count as the same animal.
const DefaultCompositeThreshold = 0.85

// Status classifies a checked listing.
type Status int

const (
	// StatusUnique means no cached listing matched closely enough.
	StatusUnique Status = iota
	// StatusDuplicate means the listing is a cross-source duplicate.
	StatusDuplicate
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusDuplicate {
		return "DUPLICATE"
	}
	return "UNIQUE"
}

// Decision is the outcome of a duplicate check.
type Decision struct {
	Status Status

	// DuplicateOf is the retained listing's ID when Status is StatusDuplicate.
	DuplicateOf core.ID

	// Score is the best composite similarity found, 0 when no candidates.
	Score float64

	// Components carries the per-signal similarities behind Score.
	Components similarity.Components
}

// Engine decides whether an incoming listing duplicates a cached one.
// Candidates are restricted to listings sharing the fingerprint, so the
// expensive composite scoring only runs on a handful of records.
type Engine struct {
	repo      storage.ListingRepository
	weights   similarity.Weights
	threshold float64
	logger    *slog.Logger
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithWeights replaces the default composite score weights.
func WithWeights(weights similarity.Weights) Option {
	return func(e *Engine) {
		e.weights = weights
	}
}

// WithThreshold replaces the default composite threshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a deduplication engine over the listing repository.
func NewEngine(repo storage.ListingRepository, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, errors.New("dedupe: repository cannot be nil")
	}

	e := &Engine{
		repo:      repo,
		weights:   similarity.DefaultWeights(),
		threshold: DefaultCompositeThreshold,
		logger:    slog.Default().With("component", "dedupe-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Check decides whether listing duplicates a cached record. The listing's
// Fingerprint field is populated as a side effect. A listing whose
// fingerprint cannot be computed (all stable fields missing) is UNIQUE
// unconditionally, never dropped.
func (e *Engine) Check(ctx context.Context, listing *core.Listing) (*Decision, error) {
	fingerprint, err := core.ComputeFingerprint(listing)
	if err != nil {
		if errors.Is(err, core.ErrNoStableFields) {
			e.logger.Warn("listing has no stable fields, treating as unique",
				"source", listing.Source, "sourceId", listing.SourceId)
			return &Decision{Status: StatusUnique}, nil
		}
		return nil, err
	}
	listing.Fingerprint = fingerprint

	candidates, err := e.repo.GetListingsByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Decision{Status: StatusUnique}, nil
	}

	best, bestScore, bestComponents := e.bestCandidate(listing, candidates)

	if bestScore >= e.threshold {
		e.logger.Debug("duplicate detected",
			"source", listing.Source, "sourceId", listing.SourceId,
			"duplicateOf", best.Id, "score", bestScore)
		return &Decision{
			Status:      StatusDuplicate,
			DuplicateOf: best.Id,
			Score:       bestScore,
			Components:  bestComponents,
		}, nil
	}

	return &Decision{
		Status:     StatusUnique,
		Score:      bestScore,
		Components: bestComponents,
	}, nil
}

// bestCandidate scores every candidate and returns the maximum. Exact score
// ties prefer the candidate with the earliest FetchedAt, keeping the
// decision stable across runs.
func (e *Engine) bestCandidate(listing *core.Listing, candidates []*core.Listing) (*core.Listing, float64, similarity.Components) {
	var best *core.Listing
	var bestScore float64
	var bestComponents similarity.Components

	for _, candidate := range candidates {
		// A source re-reporting a listing collides with its own cached copy;
		// a record is never a duplicate of itself.
		if candidate.Source == listing.Source && candidate.SourceId == listing.SourceId {
			continue
		}

		components := e.score(listing, candidate)
		score := e.weights.Composite(components)

		switch {
		case best == nil, score > bestScore:
			best, bestScore, bestComponents = candidate, score, components
		case score == bestScore && candidate.FetchedAt.Before(best.FetchedAt):
			best, bestComponents = candidate, components
		}
	}

	return best, bestScore, bestComponents
}

// score computes the per-signal similarities for a pair. An absent image
// vector on either side marks the image component missing; the composite
// weights handle that per the configured policy.
func (e *Engine) score(a, b *core.Listing) similarity.Components {
	components := similarity.Components{
		Name:        similarity.Text(a.Name, b.Name),
		Description: similarity.Text(a.Description, b.Description),
	}

	if len(a.ImageVector) > 0 && len(b.ImageVector) > 0 {
		components.Image = similarity.Image(a.ImageVector, b.ImageVector)
		components.HasImage = true
	}

	return components
}
