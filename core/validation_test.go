package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateListing(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		l := &Listing{Source: "petfinder", SourceId: "1", FetchedAt: time.Now().UTC()}
		assert.NoError(t, ValidateListing(l))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateListing(nil), ErrInvalidListing)
	})

	t.Run("missing source", func(t *testing.T) {
		l := &Listing{SourceId: "1"}
		assert.ErrorIs(t, ValidateListing(l), ErrEmptySource)
	})

	t.Run("missing source id", func(t *testing.T) {
		l := &Listing{Source: "petfinder"}
		assert.ErrorIs(t, ValidateListing(l), ErrEmptySourceId)
	})

	t.Run("future fetched at", func(t *testing.T) {
		l := &Listing{Source: "petfinder", SourceId: "1", FetchedAt: time.Now().Add(time.Hour)}
		assert.ErrorIs(t, ValidateListing(l), ErrInvalidTimestamp)
	})
}

func TestValidateProfile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := &Profile{PersonalityText: "calm lap cat", AgeRange: []string{"young", "adult"}}
		assert.NoError(t, ValidateProfile(p))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateProfile(nil), ErrInvalidProfile)
	})

	t.Run("empty personality text", func(t *testing.T) {
		p := &Profile{}
		assert.ErrorIs(t, ValidateProfile(p), ErrInvalidProfile)
	})

	t.Run("negative distance", func(t *testing.T) {
		p := &Profile{PersonalityText: "x", MaxDistanceMi: -5}
		assert.ErrorIs(t, ValidateProfile(p), ErrInvalidProfile)
	})

	t.Run("unknown age bucket", func(t *testing.T) {
		p := &Profile{PersonalityText: "x", AgeRange: []string{"ancient"}}
		assert.ErrorIs(t, ValidateProfile(p), ErrInvalidProfile)
	})
}

func TestValidateVocabularyEntry(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		e := &VocabularyEntry{Source: "petfinder", Category: CategoryBreed, Value: "Persian"}
		assert.NoError(t, ValidateVocabularyEntry(e))
	})

	t.Run("bad category", func(t *testing.T) {
		e := &VocabularyEntry{Source: "petfinder", Category: "pattern", Value: "Striped"}
		assert.ErrorIs(t, ValidateVocabularyEntry(e), ErrInvalidCategory)
	})

	t.Run("empty value", func(t *testing.T) {
		e := &VocabularyEntry{Source: "petfinder", Category: CategoryColor}
		assert.ErrorIs(t, ValidateVocabularyEntry(e), ErrEmptyVocabularyValue)
	})
}
