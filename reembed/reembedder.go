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
	"fmt"
	"io"
	"time"

	"github.com/poiesic/adoptmatch/ai"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of listings to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of listings)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// IncludeImages regenerates image vectors alongside description vectors
	IncludeImages bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates the reembedding of all cached listings, typically
// after switching embedding models.
type Reembedder struct {
	repo      storage.ListingRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ListingIterator
}

// NewReembedder creates a new reembedder.
// imageEmbedder is only used when config.IncludeImages is set.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ListingRepository, embedder ai.Embedder, imageEmbedder ai.ImageEmbedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	if !config.IncludeImages {
		imageEmbedder = nil
	}

	processor := NewBatchProcessor(repo, embedder, imageEmbedder, config.MaxRetries, config.RetryDelay)
	iterator := NewListingIterator(repo, config.BatchSize)

	return &Reembedder{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reembedding operation.
// All cached listings will be reembedded with the configured embedder.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	totalListings, err := r.repo.CountListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to count listings: %w", err)
	}

	if totalListings == 0 {
		fmt.Fprintf(r.progress, "No listings found in cache (0 listings)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d listings (batch size: %d)\n",
		totalListings, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalListings, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, func(listings []*core.Listing) error {
		if err := r.processor.Process(ctx, listings); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(listings)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d listings in %v (%.1f listings/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}
