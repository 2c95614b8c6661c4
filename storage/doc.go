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


// Package storage provides the storage abstraction layer for adoptmatch.
//
// This package defines repository interfaces that decouple storage
// implementation from the matching logic. It allows for different storage
// backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	repo, err := badger.NewListingRepository(backend)  // returns storage.ListingRepository
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Architecture
//
//   - ListingRepository: persistent cache of every listing ever seen, its
//     dedup status, fingerprint index, and embeddings (doubles as the
//     semantic index document store)
//   - VocabularyRepository: per-source controlled vocabularies with
//     embeddings for fuzzy lookup; written once at startup
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Writes during a search
// run are additionally serialized by the ingest pipeline so that two
// listings sharing a fingerprint can never race through candidate lookup.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
