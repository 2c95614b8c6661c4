package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that the same listing
// reported twice by the same source resolves to the same identity.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// VocabularyCategory identifies which controlled vocabulary an entry belongs to.
type VocabularyCategory string

const (
	// CategoryColor is the color vocabulary of a source.
	CategoryColor VocabularyCategory = "color"
	// CategoryBreed is the breed vocabulary of a source.
	CategoryBreed VocabularyCategory = "breed"
)

// Categories lists all vocabulary categories a source enumerates.
var Categories = []VocabularyCategory{CategoryColor, CategoryBreed}

// Listing represents one adoption candidate as reported by one source.
//
// The stable identity fields (Organization, Breed, Age, Gender, Size) feed
// the fingerprint and are rarely corrected after posting. The volatile
// fields (Name, Description, Photos, DistanceMi, Fee) vary across sources
// reporting the same animal. A listing is immutable once cached except for
// the duplicate linkage, the denormalized Colors list, and the vectors
// populated by processors.
type Listing struct {
	Id       ID
	Source   string // which external source reported this listing
	SourceId string // the source's own identifier for the listing
	URL      string

	// Stable identity fields.
	Organization string
	Breed        string
	Age          string // age bucket: baby, young, adult, senior
	Gender       string
	Size         string

	// Volatile fields.
	Name        string
	Description string
	Photos      []string
	City        string
	State       string
	DistanceMi  float64
	Fee         float64

	// Structured traits used for soft preferences and hard constraints.
	Colors           []string
	CoatLength       string
	GoodWithChildren bool
	GoodWithDogs     bool
	GoodWithCats     bool
	SpecialNeeds     bool

	// Fingerprint groups candidate duplicates before pairwise comparison.
	// Empty when no stable field was populated.
	Fingerprint string

	// Duplicate linkage, set once by the dedup engine. The record itself,
	// its source, and its URL are retained for provenance.
	IsDuplicate bool
	DuplicateOf ID

	FetchedAt  time.Time // when the record was fetched from its source
	InsertedAt time.Time // when the record was inserted into the store
	UpdatedAt  time.Time // when the record was last updated

	// Embeddings populated by processors.
	DescriptionVector []float32 // embedding of the synthesized listing document
	ImageVector       []float32 // embedding of the primary photo, nil when absent
}

// ListingKey builds the content string a listing's ID is derived from.
func ListingKey(source, sourceId string) string {
	return source + "/" + sourceId
}

// VocabularyEntry is one canonical attribute value of a source's controlled
// vocabulary, with its embedding for fuzzy lookup.
type VocabularyEntry struct {
	Id         ID
	Source     string
	Category   VocabularyCategory
	Value      string
	Vector     []float32
	InsertedAt time.Time
}

// Tuple returns a string representation of the entry as "(source,category,value)".
// This is used for generating deterministic IDs.
func (e *VocabularyEntry) Tuple() string {
	return "(" + e.Source + "," + string(e.Category) + "," + e.Value + ")"
}

// VocabularyMatch is a vocabulary entry matched by vector similarity.
type VocabularyMatch struct {
	Entry *VocabularyEntry
	Score float32
}

// Profile is a user's query: hard constraints plus a free-text personality
// description and optional soft preferences. Preferred colors and breeds are
// raw user terms; they are normalized per source at ranking time.
type Profile struct {
	PersonalityText string `validate:"required"`

	// Hard constraints. Candidates failing any of these are removed
	// entirely, never down-weighted. MaxDistanceMi of 0 means unbounded.
	MaxDistanceMi           float64  `validate:"gte=0"`
	AgeRange                []string `validate:"dive,oneof=baby young adult senior"`
	RequireGoodWithChildren bool
	RequireGoodWithDogs     bool
	RequireGoodWithCats     bool
	IncludeSpecialNeeds     bool

	// Soft preferences.
	PreferredColors     []string
	PreferredBreeds     []string
	PreferredCoatLength string
}

// Match is one ranked result. Produced fresh per query; never persisted.
type Match struct {
	Listing            *Listing
	VectorSimilarity   float32
	AttributeScore     float64
	Score              float64
	Explanation        string
	MatchingAttributes []string
	MissingAttributes  []string
}

// SearchResult is the outcome of one search call.
type SearchResult struct {
	Matches           []*Match
	TotalFound        int
	DuplicatesRemoved int
	SourcesQueried    []string
}

// ScoredListing is a listing matched by vector similarity search.
type ScoredListing struct {
	Listing *Listing
	Score   float32
}
