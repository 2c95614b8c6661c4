package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/adoptmatch/core"
)

// Key prefixes for different data types
const (
	listingPrefix            = "lstrec"
	listingFingerprintPrefix = "lstfpr"
	listingFetchedPrefix     = "lstfet"
	vocabularyPrefix         = "vocrec"
)

// makeListingKey generates a key for a listing by ID.
func makeListingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", listingPrefix, id))
}

// makeFingerprintKey generates a composite key for the fingerprint index.
// Format: prefix:fingerprint:id
func makeFingerprintKey(fingerprint string, id core.ID) []byte {
	prefix := listingFingerprintPrefix + ":" + fingerprint + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialFingerprintKey generates a partial key for fingerprint lookups.
// Format: prefix:fingerprint:
func makePartialFingerprintKey(fingerprint string) []byte {
	return []byte(listingFingerprintPrefix + ":" + fingerprint + ":")
}

// makeFetchedKey generates a composite key for the fetched-at index.
// Format: prefix:timestamp:id
func makeFetchedKey(fetchedAt time.Time, id core.ID) []byte {
	prefix := listingFetchedPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(fetchedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialFetchedKey generates a partial key for fetched-at range scans.
// Format: prefix:timestamp
func makePartialFetchedKey(fetchedAt time.Time) []byte {
	prefix := listingFetchedPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fetchedAt.UnixMicro()))
	return buf
}

// makeVocabularyKey generates a key for a vocabulary entry.
// Format: prefix:source:category:id — source and category are part of the
// primary key so a source's vocabulary is one contiguous prefix scan.
func makeVocabularyKey(source string, category core.VocabularyCategory, id core.ID) []byte {
	prefix := vocabularyPrefix + ":" + source + ":" + string(category) + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialVocabularyKey generates a partial key for a source+category scan.
func makePartialVocabularyKey(source string, category core.VocabularyCategory) []byte {
	return []byte(vocabularyPrefix + ":" + source + ":" + string(category) + ":")
}
