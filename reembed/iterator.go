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


package reembed

import (
	"context"

	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/storage"
)

const (
	// DefaultBatchSize is the default number of listings to fetch in each batch
	DefaultBatchSize = 100
)

// ListingIterator iterates over all cached listings in batches.
type ListingIterator struct {
	repo      storage.ListingRepository
	batchSize int
}

// NewListingIterator creates a new listing iterator.
// batchSize: number of listings to fetch in each batch (must be > 0)
func NewListingIterator(repo storage.ListingRepository, batchSize int) *ListingIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ListingIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all cached listings, calling fn for each batch.
// Iteration stops on first error from fn or when all listings are processed.
// Context cancellation is checked between batches.
func (it *ListingIterator) ForEach(ctx context.Context, fn func([]*core.Listing) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ids, err := it.repo.GetListingIDs(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		// No listings to process
		return nil
	}

	// Process listings in batches of batchSize
	for i := 0; i < len(ids); i += it.batchSize {
		end := i + it.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := it.repo.GetListings(ctx, ids[i:end]...)
		if err != nil {
			return err
		}

		if err := fn(batch); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
