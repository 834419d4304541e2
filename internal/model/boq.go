package model

import "github.com/google/uuid"

type ItemKind string

const (
	ItemKindBase           ItemKind = "base"
	ItemKindAlternate      ItemKind = "alternate"
	ItemKindProvisionalSum ItemKind = "provisional_sum"
	ItemKindDaywork        ItemKind = "daywork"
)

// BoqSection parent edges must form a forest; sections with a nil
// ParentSectionID are roots.
type BoqSection struct {
	ID              uuid.UUID
	TenderID        uuid.UUID
	ParentSectionID *uuid.UUID
	SectionNumber   string
	Title           string
	SortOrder       int
}

// BoqItem quantity and uom define the comparability key: a bidder line
// priced against a different quantity or uom is not comparable.
type BoqItem struct {
	ID          uuid.UUID
	SectionID   uuid.UUID
	ItemNumber  string
	Description string
	Quantity    float64
	Uom         string
	Kind        ItemKind
	SortOrder   int
}
