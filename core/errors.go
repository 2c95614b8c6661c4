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

import "errors"

// Domain validation errors
var (
	// ErrInvalidListing indicates a Listing failed validation.
	ErrInvalidListing = errors.New("invalid listing")

	// ErrInvalidProfile indicates a Profile failed validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrInvalidVocabularyEntry indicates a VocabularyEntry failed validation.
	ErrInvalidVocabularyEntry = errors.New("invalid vocabulary entry")

	// ErrNoStableFields indicates a listing with no stable identity fields,
	// for which no fingerprint can be computed.
	ErrNoStableFields = errors.New("no stable fields populated")

	// ErrEmptySource indicates the Source field is empty.
	ErrEmptySource = errors.New("source cannot be empty")

	// ErrEmptySourceId indicates the SourceId field is empty.
	ErrEmptySourceId = errors.New("source id cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyVocabularyValue indicates the vocabulary Value field is empty.
	ErrEmptyVocabularyValue = errors.New("vocabulary value cannot be empty")

	// ErrInvalidCategory indicates an unrecognized vocabulary category.
	ErrInvalidCategory = errors.New("invalid vocabulary category")
)
