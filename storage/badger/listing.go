package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/storage"
)

// ListingRepository implements storage.ListingRepository for BadgerDB.
type ListingRepository struct {
	backend *Backend
}

var _ storage.ListingRepository = (*ListingRepository)(nil)

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(backend *Backend) (*ListingRepository, error) {
	return &ListingRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ListingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ListingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddListings adds one or more listings to storage. Re-adding a listing the
// same source already reported (same content ID) overwrites the stored
// record but preserves its InsertedAt.
func (r *ListingRepository) AddListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, listing := range listings {
			if listing.Id == 0 {
				listing.Id = core.IDFromContent(core.ListingKey(listing.Source, listing.SourceId))
			}

			key := makeListingKey(listing.Id)
			old, err := r.readListing(tx, key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if old != nil {
				listing.InsertedAt = old.InsertedAt
				if err := r.deleteIndexEntries(tx, old); err != nil {
					return err
				}
			} else {
				listing.InsertedAt = now
			}
			listing.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalListing(listing)); err != nil {
				return err
			}
			if err := r.setIndexEntries(tx, listing); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return listings, err
}

// UpdateListings updates existing listings.
func (r *ListingRepository) UpdateListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, listing := range listings {
			key := makeListingKey(listing.Id)

			old, err := r.readListing(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			listing.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalListing(listing)); err != nil {
				return err
			}

			if old.Fingerprint != listing.Fingerprint || !old.FetchedAt.Equal(listing.FetchedAt) {
				if err := r.deleteIndexEntries(tx, old); err != nil {
					return err
				}
				if err := r.setIndexEntries(tx, listing); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return listings, err
}

// GetListing retrieves a single listing by ID.
func (r *ListingRepository) GetListing(ctx context.Context, id core.ID) (*core.Listing, error) {
	var result *core.Listing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readListing(tx, makeListingKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetListings retrieves multiple listings by their IDs.
// Missing listings are skipped without error.
func (r *ListingRepository) GetListings(ctx context.Context, ids ...core.ID) ([]*core.Listing, error) {
	results := make([]*core.Listing, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			listing, err := r.readListing(tx, makeListingKey(id))
			if err != nil {
				return err
			}
			if listing != nil {
				results = append(results, listing)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetListingsByFingerprint retrieves all live (non-duplicate) listings
// sharing the given fingerprint.
func (r *ListingRepository) GetListingsByFingerprint(ctx context.Context, fingerprint string) ([]*core.Listing, error) {
	if fingerprint == "" {
		return nil, nil
	}

	var results []*core.Listing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialFingerprintKey(fingerprint)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			listing, err := r.readListing(tx, makeListingKey(id))
			if err != nil {
				return err
			}
			if listing == nil || listing.IsDuplicate {
				continue
			}
			results = append(results, listing)
		}
		return nil
	}, false)
	return results, err
}

// GetListingIDs retrieves the IDs of all stored listings via a key-only scan
// of the fetched-at index.
func (r *ListingRepository) GetListingIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(listingFetchedPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return ids, err
}

// FindSimilarDescriptions finds live listings whose description vectors are
// similar to the given vector.
func (r *ListingRepository) FindSimilarDescriptions(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredListing, error) {
	var results []*core.ScoredListing

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(listingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var listing *core.Listing
			err := iter.Item().Value(func(val []byte) error {
				var err error
				listing, err = storage.UnmarshalListing(val)
				return err
			})
			if err != nil {
				return err
			}
			if listing == nil || listing.IsDuplicate || len(listing.DescriptionVector) == 0 {
				continue
			}

			// Dot product equals cosine similarity for normalized vectors.
			score := dotProduct(vector, listing.DescriptionVector)
			if score >= minSimilarity {
				results = append(results, &core.ScoredListing{
					Listing: listing,
					Score:   score,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.ScoredListing) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CountListings returns the number of cached listings, duplicates included.
func (r *ListingRepository) CountListings(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(listingPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// CountEmbedded returns the number of live listings carrying a description
// embedding.
func (r *ListingRepository) CountEmbedded(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(listingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				listing, err := storage.UnmarshalListing(val)
				if err != nil {
					return err
				}
				if !listing.IsDuplicate && len(listing.DescriptionVector) > 0 {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return count, err
}

// PurgeOlderThan removes listings fetched before the cutoff.
func (r *ListingRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	// Collect first, then delete: badger iterators must not observe their
	// own transaction's deletes.
	var stale []*core.Listing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(listingFetchedPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		boundary := makePartialFetchedKey(cutoff)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if string(key[:len(boundary)]) >= string(boundary) {
				break
			}
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			listing, err := r.readListing(tx, makeListingKey(id))
			if err != nil {
				return err
			}
			if listing != nil {
				stale = append(stale, listing)
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, listing := range stale {
			if err := r.deleteIndexEntries(tx, listing); err != nil {
				return err
			}
			if err := tx.Delete(makeListingKey(listing.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// readListing reads a listing by key within a transaction.
// Returns nil (no error) when the key does not exist.
func (r *ListingRepository) readListing(tx *badger.Txn, key []byte) (*core.Listing, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var listing *core.Listing
	err = item.Value(func(val []byte) error {
		var err error
		listing, err = storage.UnmarshalListing(val)
		return err
	})
	return listing, err
}

func (r *ListingRepository) setIndexEntries(tx *badger.Txn, listing *core.Listing) error {
	idValue := storage.MarshalID(listing.Id)
	if listing.Fingerprint != "" {
		if err := tx.Set(makeFingerprintKey(listing.Fingerprint, listing.Id), idValue); err != nil {
			return err
		}
	}
	return tx.Set(makeFetchedKey(listing.FetchedAt, listing.Id), idValue)
}

func (r *ListingRepository) deleteIndexEntries(tx *badger.Txn, listing *core.Listing) error {
	if listing.Fingerprint != "" {
		if err := tx.Delete(makeFingerprintKey(listing.Fingerprint, listing.Id)); err != nil {
			return err
		}
	}
	return tx.Delete(makeFetchedKey(listing.FetchedAt, listing.Id))
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
