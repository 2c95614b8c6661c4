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
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/adoptmatch/core"
)

// FileSource serves listings from a local JSON snapshot file. It is the
// offline stand-in for a live provider: exported dumps or fixture data get
// the same ingestion path as a network client would.
type FileSource struct {
	name    string
	records []RawRecord
	vocab   map[core.VocabularyCategory][]string
}

type fileSourceDoc struct {
	Name         string                               `json:"name"`
	Vocabularies map[core.VocabularyCategory][]string `json:"vocabularies"`
	Records      []RawRecord                          `json:"records"`
}

// NewFileSource loads a snapshot file. The file carries the source name,
// its controlled vocabularies, and its records:
//
//	{
//	  "name": "petfinder",
//	  "vocabularies": {"color": ["Black"], "breed": ["Persian"]},
//	  "records": [{"SourceId": "1", "Name": "Fluffy", ...}]
//	}
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source snapshot: %w", err)
	}

	var doc fileSourceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing source snapshot %s: %w", path, err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("source snapshot %s: missing source name", path)
	}

	return &FileSource{
		name:    doc.Name,
		records: doc.Records,
		vocab:   doc.Vocabularies,
	}, nil
}

// Name returns the source name recorded in the snapshot.
func (s *FileSource) Name() string { return s.name }

// Fetch returns the snapshot's records, honoring the query limit.
func (s *FileSource) Fetch(ctx context.Context, query Query) ([]RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records := s.records
	if query.Limit > 0 && query.Limit < len(records) {
		records = records[:query.Limit]
	}
	return records, nil
}

// ValidValues returns the snapshot's vocabulary for the category.
func (s *FileSource) ValidValues(_ context.Context, category core.VocabularyCategory) ([]string, error) {
	return s.vocab[category], nil
}
