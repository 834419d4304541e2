package model

import (
	"time"

	"github.com/google/uuid"
)

type TenderStatus string

const (
	TenderStatusDraft      TenderStatus = "draft"
	TenderStatusPublished  TenderStatus = "published"
	TenderStatusEvaluation TenderStatus = "evaluation"
	TenderStatusAwarded    TenderStatus = "awarded"
	TenderStatusClosed     TenderStatus = "closed"
)

type Tender struct {
	ID              uuid.UUID
	ReferenceNumber string
	Title           string
	BaseCurrency    string
	Status          TenderStatus
	BidOpeningAt    *time.Time
	CreatedAt       time.Time
}
