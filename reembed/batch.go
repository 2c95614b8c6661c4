package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/adoptmatch/ai"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/storage"
)

// BatchProcessor handles embedding regeneration for batches of listings.
type BatchProcessor struct {
	repo           storage.ListingRepository
	embedder       ai.Embedder
	imageEmbedder  ai.ImageEmbedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// imageEmbedder may be nil, in which case image vectors are left untouched.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ListingRepository, embedder ai.Embedder, imageEmbedder ai.ImageEmbedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		imageEmbedder:  imageEmbedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates embeddings for a batch of listings and updates them in
// the store. The embedded text is the synthesized listing document, not the
// raw description, so trait fragments survive the re-embed. Vectors are
// normalized after embedding to keep dot products equal to cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, listings []*core.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	texts := make([]string, len(listings))
	for i, listing := range listings {
		texts[i] = core.BuildListingDocument(listing)
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(listings) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(listings), len(embeddings))
	}

	for i := range listings {
		listings[i].DescriptionVector = NormalizeVector(embeddings[i])
	}

	if bp.imageEmbedder != nil {
		for _, listing := range listings {
			if len(listing.Photos) == 0 {
				listing.ImageVector = nil
				continue
			}

			var vector []float32
			err := RetryWithBackoff(ctx, func() error {
				var err error
				vector, err = bp.imageEmbedder.EmbedImage(ctx, listing.Photos[0])
				return err
			}, bp.maxRetries, bp.retryBaseDelay)
			if err != nil {
				return fmt.Errorf("failed to generate image embedding after %d attempts: %w", bp.maxRetries, err)
			}
			listing.ImageVector = NormalizeVector(vector)
		}
	}

	_, err = bp.repo.UpdateListings(ctx, listings...)
	if err != nil {
		return fmt.Errorf("failed to update listings: %w", err)
	}

	return nil
}
