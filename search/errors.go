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


package search

import "errors"

var (
	// ErrListingRepositoryRequired is returned when a listing repository is not provided.
	ErrListingRepositoryRequired = errors.New("listing repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNormalizerRequired is returned when a vocabulary normalizer is not provided.
	ErrNormalizerRequired = errors.New("vocabulary normalizer required")

	// ErrInvalidK is returned when the requested result count is not positive.
	ErrInvalidK = errors.New("requested result count must be positive")

	// ErrInvalidRankWeights is returned when the vector and attribute weights
	// do not sum to 1.0.
	ErrInvalidRankWeights = errors.New("rank weights must sum to 1.0")
)
