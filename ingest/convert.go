package ingest

import (
	"fmt"
	"time"

	"github.com/poiesic/adoptmatch/core"
)

// toListing converts a raw source record into a domain listing.
// A record without a source identifier cannot participate in identity
// resolution and is rejected as malformed.
func toListing(source string, rec RawRecord, fetchedAt time.Time) (*core.Listing, error) {
	if rec.SourceId == "" {
		return nil, fmt.Errorf("%w: source %s record has no id", ErrMalformedRecord, source)
	}

	return &core.Listing{
		Source:   source,
		SourceId: rec.SourceId,
		URL:      rec.URL,

		Organization: rec.Organization,
		Breed:        rec.Breed,
		Age:          rec.Age,
		Gender:       rec.Gender,
		Size:         rec.Size,

		Name:        rec.Name,
		Description: rec.Description,
		Photos:      rec.Photos,
		City:        rec.City,
		State:       rec.State,
		DistanceMi:  rec.DistanceMi,
		Fee:         rec.Fee,

		Colors:           rec.Colors,
		CoatLength:       rec.CoatLength,
		GoodWithChildren: rec.GoodWithChildren,
		GoodWithDogs:     rec.GoodWithDogs,
		GoodWithCats:     rec.GoodWithCats,
		SpecialNeeds:     rec.SpecialNeeds,

		FetchedAt: fetchedAt,
	}, nil
}
