package model

import (
	"time"

	"github.com/google/uuid"
)

type BidState string

const (
	BidStateSubmitted    BidState = "submitted"
	BidStateOpened       BidState = "opened"
	BidStateDisqualified BidState = "disqualified"
	BidStateImported     BidState = "imported"
)

// BidSubmission FxRate is the conversion rate to the tender's base
// currency frozen at bid opening; it is never refreshed afterwards so that
// sheet generation stays reproducible.
type BidSubmission struct {
	ID          uuid.UUID
	TenderID    uuid.UUID
	BidderID    uuid.UUID
	BidderName  string
	State       BidState
	Currency    string
	FxRate      *float64
	TotalAmount float64
	SubmittedAt time.Time
	OpenedAt    *time.Time
}

// BidLineItem BoqItemID is nil when the upstream import could not map the
// row onto a canonical item; such rows never reach a cell and are only
// counted.
type BidLineItem struct {
	ID              uuid.UUID
	BidSubmissionID uuid.UUID
	BoqItemID       *uuid.UUID
	Quantity        float64
	Uom             string
	UnitRate        float64
	Amount          float64
}
