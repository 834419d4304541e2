package engine

import (
	"testing"

	"github.com/abenov/tenderhub-eval/internal/model"
)

func TestMatchLinesStates(t *testing.T) {
	item := model.BoqItem{ID: item1ID, SectionID: sectionID, ItemNumber: "1.1",
		Quantity: 10, Uom: "EA", Kind: model.ItemKindBase, SortOrder: 1}
	sub := openedSubmission(subA, bidderA, "Alpha Construction", 1000, openingTime)

	tests := []struct {
		name   string
		line   *model.BidLineItem
		expect cellState
	}{
		{
			"exact match",
			&model.BidLineItem{Quantity: 10, Uom: "EA", UnitRate: 100, Amount: 1000},
			cellComparable,
		},
		{
			"uom differs only in case",
			&model.BidLineItem{Quantity: 10, Uom: "ea", UnitRate: 100, Amount: 1000},
			cellComparable,
		},
		{
			"uom padded with whitespace",
			&model.BidLineItem{Quantity: 10, Uom: " EA ", UnitRate: 100, Amount: 1000},
			cellComparable,
		},
		{
			"different uom",
			&model.BidLineItem{Quantity: 10, Uom: "M2", UnitRate: 100, Amount: 1000},
			cellNonComparable,
		},
		{
			"quantity off with exact tolerance",
			&model.BidLineItem{Quantity: 9, Uom: "EA", UnitRate: 100, Amount: 900},
			cellNonComparable,
		},
		{
			"no line at all",
			nil,
			cellNoBid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []model.BidLineItem
			if tt.line != nil {
				l := *tt.line
				l.ID = testUUID(0xE1)
				l.BidSubmissionID = sub.ID
				itemID := item.ID
				l.BoqItemID = &itemID
				lines = []model.BidLineItem{l}
			}

			cells, unmatched := matchLines(
				[]model.BoqItem{item}, []model.BidSubmission{sub}, lines, 0)
			if unmatched != 0 {
				t.Errorf("unmatched = %d, want 0", unmatched)
			}
			got := cells[cellKey{itemID: item.ID, submissionID: sub.ID}]
			if got.state != tt.expect {
				t.Errorf("cell state = %d, want %d", got.state, tt.expect)
			}
			if tt.line != nil && got.line == nil {
				t.Error("line was not retained on the cell")
			}
			if tt.line == nil && got.line != nil {
				t.Error("no_bid cell carries a line")
			}
		})
	}
}

func TestMatchLinesQuantityTolerance(t *testing.T) {
	item := model.BoqItem{ID: item1ID, SectionID: sectionID, ItemNumber: "1.1",
		Quantity: 100, Uom: "M3", Kind: model.ItemKindBase, SortOrder: 1}
	sub := openedSubmission(subA, bidderA, "Alpha Construction", 1000, openingTime)

	tests := []struct {
		name      string
		qty       float64
		tolerance float64
		expect    cellState
	}{
		{"exact under zero tolerance", 100, 0, cellComparable},
		{"off by one under zero tolerance", 101, 0, cellNonComparable},
		{"within five percent", 104, 0.05, cellComparable},
		{"at the tolerance edge", 105, 0.05, cellComparable},
		{"beyond five percent", 106, 0.05, cellNonComparable},
		{"below quantity within tolerance", 96, 0.05, cellComparable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := bidLine(0x01, sub.ID, item.ID, tt.qty, "M3", 10, 10*tt.qty)
			cells, _ := matchLines(
				[]model.BoqItem{item}, []model.BidSubmission{sub},
				[]model.BidLineItem{line}, tt.tolerance)
			got := cells[cellKey{itemID: item.ID, submissionID: sub.ID}]
			if got.state != tt.expect {
				t.Errorf("qty %v tolerance %v: state = %d, want %d",
					tt.qty, tt.tolerance, got.state, tt.expect)
			}
		})
	}
}

func TestMatchLinesDuplicateLines(t *testing.T) {
	item := model.BoqItem{ID: item1ID, SectionID: sectionID, ItemNumber: "1.1",
		Quantity: 10, Uom: "EA", Kind: model.ItemKindBase, SortOrder: 1}
	sub := openedSubmission(subA, bidderA, "Alpha Construction", 1000, openingTime)

	first := bidLine(0x01, sub.ID, item.ID, 10, "EA", 100, 1000)
	second := bidLine(0x02, sub.ID, item.ID, 10, "EA", 120, 1200)

	cells, unmatched := matchLines(
		[]model.BoqItem{item}, []model.BidSubmission{sub},
		[]model.BidLineItem{first, second}, 0)
	if unmatched != 0 {
		t.Errorf("unmatched = %d, want 0", unmatched)
	}

	got := cells[cellKey{itemID: item.ID, submissionID: sub.ID}]
	if got.state != cellNonComparable {
		t.Errorf("duplicate lines: state = %d, want non-comparable", got.state)
	}
	if got.line == nil || got.line.UnitRate != 100 {
		t.Errorf("duplicate lines: retained line = %+v, want the first one", got.line)
	}
}

func TestMatchLinesUnmatchedCounting(t *testing.T) {
	item := model.BoqItem{ID: item1ID, SectionID: sectionID, ItemNumber: "1.1",
		Quantity: 10, Uom: "EA", Kind: model.ItemKindBase, SortOrder: 1}
	sub := openedSubmission(subA, bidderA, "Alpha Construction", 1000, openingTime)

	nilTarget := model.BidLineItem{ID: testUUID(0xE1), BidSubmissionID: sub.ID,
		Quantity: 1, Uom: "EA", UnitRate: 5, Amount: 5}
	unknown := testUUID(0xFF)
	danglingTarget := model.BidLineItem{ID: testUUID(0xE2), BidSubmissionID: sub.ID,
		BoqItemID: &unknown, Quantity: 1, Uom: "EA", UnitRate: 5, Amount: 5}
	good := bidLine(0x03, sub.ID, item.ID, 10, "EA", 100, 1000)

	cells, unmatched := matchLines(
		[]model.BoqItem{item}, []model.BidSubmission{sub},
		[]model.BidLineItem{nilTarget, danglingTarget, good}, 0)
	if unmatched != 2 {
		t.Errorf("unmatched = %d, want 2", unmatched)
	}
	got := cells[cellKey{itemID: item.ID, submissionID: sub.ID}]
	if got.state != cellComparable {
		t.Errorf("mapped line state = %d, want comparable", got.state)
	}
}

func TestMatchLinesOneCellPerItemAndBidder(t *testing.T) {
	snap := threeBidderSnapshot()
	cells, unmatched := matchLines(snap.Items, snap.Submissions, snap.Lines, 0)
	if unmatched != 0 {
		t.Errorf("unmatched = %d, want 0", unmatched)
	}
	if len(cells) != len(snap.Items)*len(snap.Submissions) {
		t.Errorf("cell count = %d, want %d", len(cells), len(snap.Items)*len(snap.Submissions))
	}
	for _, cell := range cells {
		if cell.state != cellComparable {
			t.Errorf("cell state = %d, want every fixture cell comparable", cell.state)
		}
	}
}
