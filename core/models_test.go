package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent("petfinder/12345")
	id2 := IDFromContent("petfinder/12345")
	id3 := IDFromContent("rescuegroups/12345")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.NotZero(t, id1)
}

func TestListingKey(t *testing.T) {
	assert.Equal(t, "petfinder/42", ListingKey("petfinder", "42"))
}

func TestVocabularyEntryTuple(t *testing.T) {
	e := &VocabularyEntry{Source: "petfinder", Category: CategoryColor, Value: "Black"}
	assert.Equal(t, "(petfinder,color,Black)", e.Tuple())
}

func TestBuildListingDocument(t *testing.T) {
	l := &Listing{
		Description:      "Sweet lap cat who loves sunbeams.",
		Breed:            "Persian",
		Age:              "adult",
		Colors:           []string{"White", "Gray"},
		CoatLength:       "long",
		GoodWithChildren: true,
		SpecialNeeds:     true,
	}

	doc := BuildListingDocument(l)
	assert.Contains(t, doc, "Sweet lap cat")
	assert.Contains(t, doc, "Persian")
	assert.Contains(t, doc, "adult animal")
	assert.Contains(t, doc, "White and Gray coat")
	assert.Contains(t, doc, "long coat length")
	assert.Contains(t, doc, "good with children")
	assert.Contains(t, doc, "special needs")
	assert.NotContains(t, doc, "good with dogs")
}

func TestBuildListingDocument_EmptyDescription(t *testing.T) {
	l := &Listing{Breed: "Tabby", GoodWithCats: true}
	doc := BuildListingDocument(l)
	assert.Equal(t, "Tabby. good with cats", doc)
}

func TestListingMUS_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	l := Listing{
		Id:                IDFromContent("petfinder/1"),
		Source:            "petfinder",
		SourceId:          "1",
		URL:               "https://example.com/1",
		Organization:      "Happy Paws",
		Breed:             "Persian",
		Age:               "adult",
		Gender:            "female",
		Size:              "medium",
		Name:              "Fluffy",
		Description:       "A very fluffy cat",
		Photos:            []string{"https://example.com/a.jpg"},
		City:              "Portland",
		State:             "OR",
		DistanceMi:        12.5,
		Fee:               80,
		Colors:            []string{"White"},
		CoatLength:        "long",
		GoodWithChildren:  true,
		SpecialNeeds:      false,
		Fingerprint:       "0123456789abcdef",
		IsDuplicate:       true,
		DuplicateOf:       IDFromContent("rescuegroups/9"),
		FetchedAt:         now,
		InsertedAt:        now,
		UpdatedAt:         now,
		DescriptionVector: []float32{0.1, 0.2, 0.3},
		ImageVector:       []float32{0.4, 0.5},
	}

	buf := make([]byte, ListingMUS.Size(l))
	n := ListingMUS.Marshal(l, buf)
	require.Equal(t, len(buf), n)

	got, n, err := ListingMUS.Unmarshal(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	assert.Equal(t, l, got)
}

func TestVocabularyEntryMUS_RoundTrip(t *testing.T) {
	e := VocabularyEntry{
		Id:         IDFromContent("(petfinder,color,Black)"),
		Source:     "petfinder",
		Category:   CategoryColor,
		Value:      "Black",
		Vector:     []float32{0.9, 0.1},
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	buf := make([]byte, VocabularyEntryMUS.Size(e))
	n := VocabularyEntryMUS.Marshal(e, buf)
	require.Equal(t, len(buf), n)

	got, n, err := VocabularyEntryMUS.Unmarshal(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	assert.Equal(t, e, got)
}
