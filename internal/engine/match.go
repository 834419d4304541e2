package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/abenov/tenderhub-eval/internal/model"
)

type cellState int

const (
	cellComparable cellState = iota
	cellNoBid
	cellNonComparable
)

type cellKey struct {
	itemID       uuid.UUID
	submissionID uuid.UUID
}

// matchedCell is the matcher's verdict for one item × submission pair. The
// line is retained for non-comparable cells so the raw figures stay visible
// on the sheet; it is nil only for no_bid.
type matchedCell struct {
	state cellState
	line  *model.BidLineItem
}

// matchLines maps every submission's line items onto the canonical BOQ
// items. A line is comparable only when it prices the same scope of work:
// the unit of measure must match (case-insensitive) and the quantity must
// sit within the relative tolerance, which defaults to zero (exact).
// Missing lines become no_bid, mismatched ones non_comparable, and lines
// the import never mapped onto an item are only counted. Two lines pricing
// the same item are ambiguous and therefore non-comparable as well.
func matchLines(
	items []model.BoqItem,
	submissions []model.BidSubmission,
	lines []model.BidLineItem,
	quantityTolerance float64,
) (map[cellKey]matchedCell, int) {
	itemIDs := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		itemIDs[item.ID] = true
	}

	byKey := make(map[cellKey]*model.BidLineItem, len(lines))
	duplicates := make(map[cellKey]bool)
	unmatched := 0

	for i := range lines {
		line := &lines[i]
		if line.BoqItemID == nil || !itemIDs[*line.BoqItemID] {
			unmatched++
			continue
		}
		key := cellKey{itemID: *line.BoqItemID, submissionID: line.BidSubmissionID}
		if _, exists := byKey[key]; exists {
			duplicates[key] = true
			continue
		}
		byKey[key] = line
	}

	cells := make(map[cellKey]matchedCell, len(items)*len(submissions))
	for _, item := range items {
		for _, sub := range submissions {
			key := cellKey{itemID: item.ID, submissionID: sub.ID}
			line, ok := byKey[key]
			switch {
			case !ok:
				cells[key] = matchedCell{state: cellNoBid}
			case duplicates[key]:
				cells[key] = matchedCell{state: cellNonComparable, line: line}
			case !sameScope(item, line, quantityTolerance):
				cells[key] = matchedCell{state: cellNonComparable, line: line}
			default:
				cells[key] = matchedCell{state: cellComparable, line: line}
			}
		}
	}
	return cells, unmatched
}

// sameScope reports whether the bidder priced the canonical scope of work.
// Prices for differing scopes must never be compared, so any uom or
// out-of-tolerance quantity difference disqualifies the line.
func sameScope(item model.BoqItem, line *model.BidLineItem, quantityTolerance float64) bool {
	if !strings.EqualFold(strings.TrimSpace(item.Uom), strings.TrimSpace(line.Uom)) {
		return false
	}
	diff := line.Quantity - item.Quantity
	if diff < 0 {
		diff = -diff
	}
	limit := quantityTolerance * item.Quantity
	if limit < 0 {
		limit = -limit
	}
	return diff <= limit
}
