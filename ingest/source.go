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


package ingest

import (
	"context"

	"github.com/poiesic/adoptmatch/core"
)

// Query scopes a fetch against an external source.
type Query struct {
	// City and State anchor the distance search.
	City  string
	State string

	// MaxDistanceMi bounds how far from the anchor a listing may be.
	// Zero means the source's default radius.
	MaxDistanceMi float64

	// Limit caps how many records the source should return. Zero means the
	// source's default page size.
	Limit int
}

// RawRecord is one listing as an external source reports it, before
// normalization. Field values are the source's own spellings.
type RawRecord struct {
	SourceId string
	URL      string

	Organization string
	Breed        string
	Age          string
	Gender       string
	Size         string

	Name        string
	Description string
	Photos      []string
	City        string
	State       string
	DistanceMi  float64
	Fee         float64

	Colors           []string
	CoatLength       string
	GoodWithChildren bool
	GoodWithDogs     bool
	GoodWithCats     bool
	SpecialNeeds     bool
}

// Source is an external adoption-listing provider.
// Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source. Must be stable: it is part of every
	// listing's identity.
	Name() string

	// Fetch retrieves candidate listings matching the query.
	Fetch(ctx context.Context, query Query) ([]RawRecord, error)

	// ValidValues enumerates the source's controlled vocabulary for a
	// category. Called once at startup to build the vocabulary index.
	ValidValues(ctx context.Context, category core.VocabularyCategory) ([]string, error)
}
