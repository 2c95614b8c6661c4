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


package core

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateListing validates a Listing according to domain rules.
//
// Validation rules:
//   - Source and SourceId must not be empty
//   - FetchedAt must not be in the future
//
// NOT validated (populated by processors):
//   - Fingerprint (empty is legal for listings with no stable fields)
//   - DescriptionVector / ImageVector (empty until embedded)
//   - Id (0 until assigned from content)
func ValidateListing(listing *Listing) error {
	if listing == nil {
		return fmt.Errorf("%w: listing is nil", ErrInvalidListing)
	}

	if listing.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrEmptySource)
	}

	if listing.SourceId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrEmptySourceId)
	}

	if !IsValidTimestamp(listing.FetchedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateProfile validates a Profile according to domain rules.
// An invalid profile is a programmer error: it is the only condition for
// which a search call fails outright rather than degrading.
func ValidateProfile(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if err := validate.Struct(profile); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	return nil
}

// ValidateVocabularyEntry validates a VocabularyEntry according to domain rules.
func ValidateVocabularyEntry(entry *VocabularyEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidVocabularyEntry)
	}

	if entry.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVocabularyEntry, ErrEmptySource)
	}

	if err := ValidateCategory(entry.Category); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVocabularyEntry, err)
	}

	if entry.Value == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVocabularyEntry, ErrEmptyVocabularyValue)
	}

	return nil
}

// ValidateCategory validates that a VocabularyCategory has a valid value.
func ValidateCategory(category VocabularyCategory) error {
	switch category {
	case CategoryColor, CategoryBreed:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
}

// IsValidTimestamp returns true if the timestamp is not in the future.
// A small clock-skew allowance is applied for records fetched from remote
// sources whose clocks may drift slightly ahead.
func IsValidTimestamp(t time.Time) bool {
	return !t.After(time.Now().UTC().Add(5 * time.Minute))
}
