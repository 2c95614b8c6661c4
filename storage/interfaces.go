package storage

import (
	"context"
	"time"

	"github.com/poiesic/adoptmatch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ListingRepository provides operations for the persistent listing cache.
type ListingRepository interface {
	Repository

	// AddListings adds one or more listings to storage.
	// Assigns content-based IDs from (source, source id) when Id is 0 and
	// sets InsertedAt/UpdatedAt. Returns the listings with IDs populated.
	AddListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error)

	// UpdateListings updates existing listings (duplicate linkage, colors,
	// vectors). Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any listing doesn't exist.
	UpdateListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error)

	// GetListing retrieves a single listing by ID.
	// Returns ErrNotFound if the listing doesn't exist.
	GetListing(ctx context.Context, id core.ID) (*core.Listing, error)

	// GetListings retrieves multiple listings by their IDs.
	// Returns only the listings that exist (no error for missing listings).
	GetListings(ctx context.Context, ids ...core.ID) ([]*core.Listing, error)

	// GetListingsByFingerprint retrieves all live (non-duplicate) listings
	// sharing a fingerprint — the candidate set for dedup comparison.
	GetListingsByFingerprint(ctx context.Context, fingerprint string) ([]*core.Listing, error)

	// GetListingIDs retrieves the IDs of all stored listings.
	GetListingIDs(ctx context.Context) ([]core.ID, error)

	// FindSimilarDescriptions finds live listings whose description vectors
	// are similar to the given vector. Returns listings with similarity >=
	// minSimilarity, up to limit results, ordered by similarity descending.
	// Duplicates and listings without embeddings are skipped.
	FindSimilarDescriptions(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredListing, error)

	// CountListings returns the number of cached listings, duplicates included.
	CountListings(ctx context.Context) (int, error)

	// CountEmbedded returns the number of live listings carrying a
	// description embedding, i.e. the semantic index document count.
	CountEmbedded(ctx context.Context) (int, error)

	// PurgeOlderThan removes listings fetched before the cutoff.
	// Returns the number of listings removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// VocabularyRepository provides operations for the per-source controlled
// vocabularies. Vocabularies are written once per source+category at startup
// and read-only afterward.
type VocabularyRepository interface {
	Repository

	// AddEntries adds vocabulary entries to storage.
	// Uses content-based IDs (IDFromContent of the entry tuple).
	AddEntries(ctx context.Context, entries ...*core.VocabularyEntry) ([]*core.VocabularyEntry, error)

	// HasEntries reports whether any entries exist for a source+category.
	HasEntries(ctx context.Context, source string, category core.VocabularyCategory) (bool, error)

	// GetEntries retrieves all entries for a source+category.
	GetEntries(ctx context.Context, source string, category core.VocabularyCategory) ([]*core.VocabularyEntry, error)

	// FindSimilarEntries finds entries of a source+category whose vectors
	// are similar to the given vector, ordered by similarity descending.
	FindSimilarEntries(ctx context.Context, vector []float32, source string, category core.VocabularyCategory, limit int) ([]*core.VocabularyMatch, error)

	// Clear removes all entries for a source+category. Stale vocabularies
	// require an explicit clear; re-adding is otherwise a no-op upstream.
	Clear(ctx context.Context, source string, category core.VocabularyCategory) error

	// CountEntries returns the total number of vocabulary entries.
	CountEntries(ctx context.Context) (int, error)
}
