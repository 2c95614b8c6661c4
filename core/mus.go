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

// Hand-composed MUS serializers for the stored types. The field order below
// is the wire format; append new fields at the end only.

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
	float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
)

// IDMUS serializes an ID as a varint.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// timeMUS serializes a time.Time as Unix microseconds (UTC on read).
var timeMUS = timeMUSSer{}

type timeMUSSer struct{}

func (timeMUSSer) Marshal(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMUSSer) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeMUSSer) Size(t time.Time) (size int) {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeMUSSer) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// ListingMUS serializes a Listing.
var ListingMUS = listingMUS{}

type listingMUS struct{}

func (listingMUS) Marshal(l Listing, bs []byte) (n int) {
	n = IDMUS.Marshal(l.Id, bs)
	n += ord.String.Marshal(l.Source, bs[n:])
	n += ord.String.Marshal(l.SourceId, bs[n:])
	n += ord.String.Marshal(l.URL, bs[n:])
	n += ord.String.Marshal(l.Organization, bs[n:])
	n += ord.String.Marshal(l.Breed, bs[n:])
	n += ord.String.Marshal(l.Age, bs[n:])
	n += ord.String.Marshal(l.Gender, bs[n:])
	n += ord.String.Marshal(l.Size, bs[n:])
	n += ord.String.Marshal(l.Name, bs[n:])
	n += ord.String.Marshal(l.Description, bs[n:])
	n += stringSliceMUS.Marshal(l.Photos, bs[n:])
	n += ord.String.Marshal(l.City, bs[n:])
	n += ord.String.Marshal(l.State, bs[n:])
	n += raw.Float64.Marshal(l.DistanceMi, bs[n:])
	n += raw.Float64.Marshal(l.Fee, bs[n:])
	n += stringSliceMUS.Marshal(l.Colors, bs[n:])
	n += ord.String.Marshal(l.CoatLength, bs[n:])
	n += ord.Bool.Marshal(l.GoodWithChildren, bs[n:])
	n += ord.Bool.Marshal(l.GoodWithDogs, bs[n:])
	n += ord.Bool.Marshal(l.GoodWithCats, bs[n:])
	n += ord.Bool.Marshal(l.SpecialNeeds, bs[n:])
	n += ord.String.Marshal(l.Fingerprint, bs[n:])
	n += ord.Bool.Marshal(l.IsDuplicate, bs[n:])
	n += IDMUS.Marshal(l.DuplicateOf, bs[n:])
	n += timeMUS.Marshal(l.FetchedAt, bs[n:])
	n += timeMUS.Marshal(l.InsertedAt, bs[n:])
	n += timeMUS.Marshal(l.UpdatedAt, bs[n:])
	n += float32SliceMUS.Marshal(l.DescriptionVector, bs[n:])
	n += float32SliceMUS.Marshal(l.ImageVector, bs[n:])
	return n
}

func (listingMUS) Unmarshal(bs []byte) (l Listing, n int, err error) {
	var n1 int
	if l.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if l.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.SourceId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Organization, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Breed, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Age, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Gender, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Size, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Photos, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.City, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.State, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.DistanceMi, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Fee, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Colors, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.CoatLength, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.GoodWithChildren, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.GoodWithDogs, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.GoodWithCats, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.SpecialNeeds, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.IsDuplicate, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.DuplicateOf, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.FetchedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.DescriptionVector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.ImageVector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	return l, n, nil
}

func (listingMUS) Size(l Listing) (size int) {
	size = IDMUS.Size(l.Id)
	size += ord.String.Size(l.Source)
	size += ord.String.Size(l.SourceId)
	size += ord.String.Size(l.URL)
	size += ord.String.Size(l.Organization)
	size += ord.String.Size(l.Breed)
	size += ord.String.Size(l.Age)
	size += ord.String.Size(l.Gender)
	size += ord.String.Size(l.Size)
	size += ord.String.Size(l.Name)
	size += ord.String.Size(l.Description)
	size += stringSliceMUS.Size(l.Photos)
	size += ord.String.Size(l.City)
	size += ord.String.Size(l.State)
	size += raw.Float64.Size(l.DistanceMi)
	size += raw.Float64.Size(l.Fee)
	size += stringSliceMUS.Size(l.Colors)
	size += ord.String.Size(l.CoatLength)
	size += ord.Bool.Size(l.GoodWithChildren)
	size += ord.Bool.Size(l.GoodWithDogs)
	size += ord.Bool.Size(l.GoodWithCats)
	size += ord.Bool.Size(l.SpecialNeeds)
	size += ord.String.Size(l.Fingerprint)
	size += ord.Bool.Size(l.IsDuplicate)
	size += IDMUS.Size(l.DuplicateOf)
	size += timeMUS.Size(l.FetchedAt)
	size += timeMUS.Size(l.InsertedAt)
	size += timeMUS.Size(l.UpdatedAt)
	size += float32SliceMUS.Size(l.DescriptionVector)
	size += float32SliceMUS.Size(l.ImageVector)
	return size
}

// VocabularyEntryMUS serializes a VocabularyEntry.
var VocabularyEntryMUS = vocabularyEntryMUS{}

type vocabularyEntryMUS struct{}

func (vocabularyEntryMUS) Marshal(e VocabularyEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Source, bs[n:])
	n += ord.String.Marshal(string(e.Category), bs[n:])
	n += ord.String.Marshal(e.Value, bs[n:])
	n += float32SliceMUS.Marshal(e.Vector, bs[n:])
	n += timeMUS.Marshal(e.InsertedAt, bs[n:])
	return n
}

func (vocabularyEntryMUS) Unmarshal(bs []byte) (e VocabularyEntry, n int, err error) {
	var n1 int
	if e.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	var category string
	if category, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	e.Category = VocabularyCategory(category)
	n += n1
	if e.Value, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Vector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	return e, n, nil
}

func (vocabularyEntryMUS) Size(e VocabularyEntry) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Source)
	size += ord.String.Size(string(e.Category))
	size += ord.String.Size(e.Value)
	size += float32SliceMUS.Size(e.Vector)
	size += timeMUS.Size(e.InsertedAt)
	return size
}
