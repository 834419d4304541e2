package model

import (
	"time"

	"github.com/google/uuid"
)

// OutlierSeverity classifies how far one bidder's normalized amount sits
// from the row median; no_bid and non_comparable cells are shown but
// excluded from every aggregate.
type OutlierSeverity string

const (
	SeverityNormal        OutlierSeverity = "normal"
	SeverityMinor         OutlierSeverity = "minor"
	SeverityMajor         OutlierSeverity = "major"
	SeverityNoBid         OutlierSeverity = "no_bid"
	SeverityNonComparable OutlierSeverity = "non_comparable"
)

type RowType string

const (
	RowTypeSectionHeader RowType = "section_header"
	RowTypeItem          RowType = "item"
	RowTypeSubtotal      RowType = "subtotal"
	RowTypeGrandTotal    RowType = "grand_total"
)

// BidderCellData is one bidder's entry for one sheet row. A no_bid cell
// has no measures, a non_comparable cell keeps the raw figures for display
// only, and DeviationPercent is set only on cells that entered the row
// median.
type BidderCellData struct {
	UnitRate         *float64        `json:"unitRate,omitempty"`
	Amount           *float64        `json:"amount,omitempty"`
	NormalizedRate   *float64        `json:"normalizedRate,omitempty"`
	NormalizedAmount *float64        `json:"normalizedAmount,omitempty"`
	OutlierSeverity  OutlierSeverity `json:"outlierSeverity,omitempty"`
	DeviationPercent *float64        `json:"deviationPercent,omitempty"`
}

// RowStatistics values are normalized unit rates over the row's comparable
// cells.
type RowStatistics struct {
	AverageRate       float64 `json:"averageRate"`
	MedianRate        float64 `json:"medianRate"`
	LowestRate        float64 `json:"lowestRate"`
	HighestRate       float64 `json:"highestRate"`
	StandardDeviation float64 `json:"standardDeviation"`
}

// ComparableSheetRow cells are keyed by bidder id; item rows carry one
// cell per bidder column even when the bidder submitted nothing.
type ComparableSheetRow struct {
	RowID       string                    `json:"rowId"`
	RowType     RowType                   `json:"rowType"`
	SectionID   *uuid.UUID                `json:"sectionId,omitempty"`
	ItemID      *uuid.UUID                `json:"itemId,omitempty"`
	Code        string                    `json:"code,omitempty"`
	Description string                    `json:"description,omitempty"`
	Depth       int                       `json:"depth"`
	Quantity    *float64                  `json:"quantity,omitempty"`
	Uom         string                    `json:"uom,omitempty"`
	ItemKind    ItemKind                  `json:"itemKind,omitempty"`
	Cells       map[string]BidderCellData `json:"cells,omitempty"`
	Statistics  *RowStatistics            `json:"statistics,omitempty"`
}

type BidderColumn struct {
	BidderID        uuid.UUID `json:"bidderId"`
	BidderName      string    `json:"bidderName"`
	SubmissionID    uuid.UUID `json:"submissionId"`
	Currency        string    `json:"currency"`
	FxRate          *float64  `json:"fxRate,omitempty"`
	SubmittedAt     time.Time `json:"submittedAt"`
	TotalAmount     float64   `json:"totalAmount"`
	NormalizedTotal float64   `json:"normalizedTotal"`
	ComparableItems int       `json:"comparableItems"`
}

// BidderSectionTotal sums cover comparable cells only; the counters keep
// the exclusions visible.
type BidderSectionTotal struct {
	Amount             float64 `json:"amount"`
	NormalizedAmount   float64 `json:"normalizedAmount"`
	ComparableItems    int     `json:"comparableItems"`
	NonComparableItems int     `json:"nonComparableItems"`
	NoBidItems         int     `json:"noBidItems"`
}

// SectionSummary totals include everything under descendant sections.
type SectionSummary struct {
	SectionID     uuid.UUID                     `json:"sectionId"`
	SectionNumber string                        `json:"sectionNumber"`
	Title         string                        `json:"title"`
	Depth         int                           `json:"depth"`
	ItemCount     int                           `json:"itemCount"`
	Totals        map[string]BidderSectionTotal `json:"totals"`
}

// BidderRanking rank 1 is the lowest normalized grand total; ties go to
// the earliest submission.
type BidderRanking struct {
	BidderID            uuid.UUID `json:"bidderId"`
	BidderName          string    `json:"bidderName"`
	Rank                int       `json:"rank"`
	TotalAmount         float64   `json:"totalAmount"`
	NormalizedAmount    float64   `json:"normalizedAmount"`
	DeviationFromLowest float64   `json:"deviationFromLowest"`
	DeviationPercent    float64   `json:"deviationPercent"`
}

// SheetStatistics item-state counters count cells, since one item can be
// comparable for one bidder and missing for another; the grand-total
// aggregates cover ranked bidders only.
type SheetStatistics struct {
	TotalItems         int     `json:"totalItems"`
	ComparableItems    int     `json:"comparableItems"`
	NonComparableItems int     `json:"nonComparableItems"`
	NoBidItems         int     `json:"noBidItems"`
	OutlierItems       int     `json:"outlierItems"`
	UnmatchedLines     int     `json:"unmatchedLines"`
	BidderCount        int     `json:"bidderCount"`
	LowestTotal        float64 `json:"lowestTotal"`
	HighestTotal       float64 `json:"highestTotal"`
	AverageTotal       float64 `json:"averageTotal"`
	MedianTotal        float64 `json:"medianTotal"`
}

// ComparableSheet is the immutable evaluation artifact for one tender.
// A generation run builds a complete sheet or nothing; re-generation
// produces a new sheet and leaves prior ones untouched for audit.
type ComparableSheet struct {
	TenderID              uuid.UUID            `json:"tenderId"`
	TenderReference       string               `json:"tenderReference"`
	BaseCurrency          string               `json:"baseCurrency"`
	GeneratedAt           time.Time            `json:"generatedAt"`
	Bidders               []BidderColumn       `json:"bidders"`
	Rows                  []ComparableSheetRow `json:"rows"`
	Sections              []SectionSummary     `json:"sections"`
	Rankings              []BidderRanking      `json:"rankings"`
	Statistics            SheetStatistics      `json:"statistics"`
	MinimumBiddersWarning *string              `json:"minimumBiddersWarning,omitempty"`
}

// SheetRecord is a persisted sheet; exactly one record per tender is
// current, older records stay retrievable.
type SheetRecord struct {
	ID          uuid.UUID       `json:"id"`
	TenderID    uuid.UUID       `json:"tenderId"`
	GeneratedAt time.Time       `json:"generatedAt"`
	IsCurrent   bool            `json:"isCurrent"`
	BidderCount int             `json:"bidderCount"`
	Sheet       ComparableSheet `json:"sheet"`
}

type SheetSummary struct {
	ID          uuid.UUID `json:"id"`
	TenderID    uuid.UUID `json:"tenderId"`
	GeneratedAt time.Time `json:"generatedAt"`
	BidderCount int       `json:"bidderCount"`
	IsCurrent   bool      `json:"isCurrent"`
}
