package core

import "strings"

// BuildListingDocument synthesizes the text that represents a listing in the
// semantic index: the free-text description plus short trait sentences for
// the structured attributes, so that profile queries like "good with kids"
// land near listings whose descriptions never spell it out.
func BuildListingDocument(l *Listing) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(l.Description))

	appendFragment := func(fragment string) {
		if b.Len() > 0 {
			b.WriteString(". ")
		}
		b.WriteString(fragment)
	}

	if l.Breed != "" {
		appendFragment(l.Breed)
	}
	if l.Age != "" {
		appendFragment(l.Age + " animal")
	}
	if len(l.Colors) > 0 {
		appendFragment(strings.Join(l.Colors, " and ") + " coat")
	}
	if l.CoatLength != "" {
		appendFragment(l.CoatLength + " coat length")
	}
	if l.GoodWithChildren {
		appendFragment("good with children")
	}
	if l.GoodWithDogs {
		appendFragment("good with dogs")
	}
	if l.GoodWithCats {
		appendFragment("good with cats")
	}
	if l.SpecialNeeds {
		appendFragment("special needs")
	}

	return b.String()
}
