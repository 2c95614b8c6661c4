package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/adoptmatch/core"
	"github.com/poiesic/adoptmatch/storage"
)

// VocabularyRepository implements storage.VocabularyRepository for BadgerDB.
type VocabularyRepository struct {
	backend *Backend
}

var _ storage.VocabularyRepository = (*VocabularyRepository)(nil)

// NewVocabularyRepository creates a new VocabularyRepository.
func NewVocabularyRepository(backend *Backend) (*VocabularyRepository, error) {
	return &VocabularyRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *VocabularyRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *VocabularyRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntries adds vocabulary entries to storage.
// IDs are content-based (IDFromContent of the entry tuple), so re-adding an
// identical entry overwrites in place.
func (r *VocabularyRepository) AddEntries(ctx context.Context, entries ...*core.VocabularyEntry) ([]*core.VocabularyEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := core.ValidateVocabularyEntry(entry); err != nil {
				return err
			}
			if entry.Id == 0 {
				entry.Id = core.IDFromContent(entry.Tuple())
			}
			if entry.InsertedAt.IsZero() {
				entry.InsertedAt = time.Now().UTC()
			}

			key := makeVocabularyKey(entry.Source, entry.Category, entry.Id)
			if err := tx.Set(key, storage.MarshalVocabularyEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// HasEntries reports whether any entries exist for a source+category.
// Presence is checked by key prefix, not content, so a stale vocabulary
// requires an explicit Clear before re-indexing takes effect.
func (r *VocabularyRepository) HasEntries(ctx context.Context, source string, category core.VocabularyCategory) (bool, error) {
	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVocabularyKey(source, category)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Rewind()
		found = iter.Valid()
		return nil
	}, false)
	return found, err
}

// GetEntries retrieves all entries for a source+category.
func (r *VocabularyRepository) GetEntries(ctx context.Context, source string, category core.VocabularyCategory) ([]*core.VocabularyEntry, error) {
	var entries []*core.VocabularyEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVocabularyKey(source, category)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalVocabularyEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return entries, err
}

// FindSimilarEntries finds entries of a source+category whose vectors are
// similar to the given vector, ordered by similarity descending.
func (r *VocabularyRepository) FindSimilarEntries(ctx context.Context, vector []float32, source string, category core.VocabularyCategory, limit int) ([]*core.VocabularyMatch, error) {
	entries, err := r.GetEntries(ctx, source, category)
	if err != nil {
		return nil, err
	}

	var matches []*core.VocabularyMatch
	for _, entry := range entries {
		if len(entry.Vector) == 0 {
			continue
		}
		matches = append(matches, &core.VocabularyMatch{
			Entry: entry,
			Score: dotProduct(vector, entry.Vector),
		})
	}

	slices.SortFunc(matches, func(a, b *core.VocabularyMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Clear removes all entries for a source+category.
func (r *VocabularyRepository) Clear(ctx context.Context, source string, category core.VocabularyCategory) error {
	// Collect keys first; badger iterators must not observe their own
	// transaction's deletes.
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVocabularyKey(source, category)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountEntries returns the total number of vocabulary entries.
func (r *VocabularyRepository) CountEntries(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vocabularyPrefix + ":")
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
