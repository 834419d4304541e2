package engine

import (
	"math"
	"testing"

	"github.com/abenov/tenderhub-eval/internal/model"
)

func nestedRollupFixture(badUom bool) ([]model.BoqSection, []model.BoqItem, []model.BidSubmission, []model.BidLineItem) {
	s1 := section(0x31, nil, "1", 1)
	s1ID := s1.ID
	s11 := section(0x32, &s1ID, "1.1", 1)
	s2 := section(0x33, nil, "2", 2)

	itemX := model.BoqItem{ID: testUUID(0x41), SectionID: s1.ID, ItemNumber: "1.0.1",
		Quantity: 2, Uom: "EA", Kind: model.ItemKindBase, SortOrder: 1}
	itemY := model.BoqItem{ID: testUUID(0x42), SectionID: s11.ID, ItemNumber: "1.1.1",
		Quantity: 3, Uom: "M", Kind: model.ItemKindBase, SortOrder: 1}
	itemZ := model.BoqItem{ID: testUUID(0x43), SectionID: s2.ID, ItemNumber: "2.1",
		Quantity: 1, Uom: "LS", Kind: model.ItemKindBase, SortOrder: 1}

	sub := openedSubmission(subA, bidderA, "Alpha Construction", 135, openingTime)

	lineUomY := "M"
	if badUom {
		lineUomY = "EA"
	}
	lines := []model.BidLineItem{
		bidLine(0x01, sub.ID, itemX.ID, 2, "EA", 10, 20),
		bidLine(0x02, sub.ID, itemY.ID, 3, lineUomY, 5, 15),
		bidLine(0x03, sub.ID, itemZ.ID, 1, "LS", 100, 100),
	}

	return []model.BoqSection{s1, s11, s2},
		[]model.BoqItem{itemX, itemY, itemZ},
		[]model.BidSubmission{sub},
		lines
}

func TestRollupNestedSections(t *testing.T) {
	sections, items, subs, lines := nestedRollupFixture(false)
	tree, err := buildTree(sections, items)
	if err != nil {
		t.Fatalf("buildTree returned error: %v", err)
	}
	matched, _ := matchLines(items, subs, lines, 0)
	cells, _ := normalizeCells(matched, subs, "USD")
	rollups, grand := rollupSections(tree, cells, subs)

	child := rollups[testUUID(0x32)].totals[bidderA]
	if child.amount != 15 || child.comparable != 1 {
		t.Errorf("child subtotal = %+v, want amount 15 with 1 comparable", child)
	}

	parent := rollups[testUUID(0x31)].totals[bidderA]
	if parent.amount != 35 || parent.comparable != 2 {
		t.Errorf("parent subtotal = %+v, want amount 35 with 2 comparable", parent)
	}
	if got := rollups[testUUID(0x31)].itemCount; got != 2 {
		t.Errorf("parent itemCount = %d, want 2 (direct item plus descendant)", got)
	}

	total := grand[bidderA]
	if total.amount != 135 || total.comparable != 3 {
		t.Errorf("grand total = %+v, want amount 135 with 3 comparable", total)
	}

	// A parent's subtotal must equal its direct items plus child subtotals,
	// and the grand total must equal the sum of root subtotals.
	rootSum := rollups[testUUID(0x31)].totals[bidderA].amount +
		rollups[testUUID(0x33)].totals[bidderA].amount
	if math.Abs(total.amount-rootSum) > 1e-6 {
		t.Errorf("grand %v != sum of roots %v", total.amount, rootSum)
	}
}

func TestRollupExcludesNonComparable(t *testing.T) {
	sections, items, subs, lines := nestedRollupFixture(true)
	tree, err := buildTree(sections, items)
	if err != nil {
		t.Fatalf("buildTree returned error: %v", err)
	}
	matched, _ := matchLines(items, subs, lines, 0)
	cells, _ := normalizeCells(matched, subs, "USD")
	rollups, grand := rollupSections(tree, cells, subs)

	child := rollups[testUUID(0x32)].totals[bidderA]
	if child.amount != 0 || child.nonComparable != 1 || child.comparable != 0 {
		t.Errorf("child subtotal = %+v, want excluded non-comparable item", child)
	}

	parent := rollups[testUUID(0x31)].totals[bidderA]
	if parent.amount != 20 || parent.nonComparable != 1 || parent.comparable != 1 {
		t.Errorf("parent subtotal = %+v, want amount 20 with the mismatch tracked", parent)
	}

	total := grand[bidderA]
	if total.amount != 120 || total.comparable != 2 || total.nonComparable != 1 {
		t.Errorf("grand total = %+v, want amount 120 with 2 comparable and 1 non-comparable", total)
	}
}

func TestRollupNormalizedAmounts(t *testing.T) {
	sections, items, _, lines := nestedRollupFixture(false)
	sub := openedSubmission(subA, bidderA, "Alpha Construction", 135, openingTime)
	sub.Currency = "EUR"
	sub.FxRate = floatPtr(1.1)
	subs := []model.BidSubmission{sub}
	for i := range lines {
		lines[i].BidSubmissionID = sub.ID
	}

	tree, err := buildTree(sections, items)
	if err != nil {
		t.Fatalf("buildTree returned error: %v", err)
	}
	matched, _ := matchLines(items, subs, lines, 0)
	cells, _ := normalizeCells(matched, subs, "USD")
	_, grand := rollupSections(tree, cells, subs)

	total := grand[bidderA]
	if math.Abs(total.normalized-148.5) > 1e-6 {
		t.Errorf("normalized grand = %v, want 148.5 (135 x 1.1)", total.normalized)
	}
	if total.amount != 135 {
		t.Errorf("raw grand = %v, want 135", total.amount)
	}
}

func TestRollupNoBidCounting(t *testing.T) {
	sections, items, subs, lines := nestedRollupFixture(false)
	// Drop the lump-sum line so that item turns no_bid.
	lines = lines[:2]

	tree, err := buildTree(sections, items)
	if err != nil {
		t.Fatalf("buildTree returned error: %v", err)
	}
	matched, _ := matchLines(items, subs, lines, 0)
	cells, _ := normalizeCells(matched, subs, "USD")
	rollups, grand := rollupSections(tree, cells, subs)

	s2 := rollups[testUUID(0x33)].totals[bidderA]
	if s2.amount != 0 || s2.noBid != 1 {
		t.Errorf("unpriced section subtotal = %+v, want zero amount and 1 no_bid", s2)
	}
	total := grand[bidderA]
	if total.amount != 35 || total.noBid != 1 || total.comparable != 2 {
		t.Errorf("grand total = %+v, want amount 35 with 1 no_bid", total)
	}
}
