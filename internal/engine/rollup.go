package engine

import (
	"github.com/google/uuid"

	"github.com/abenov/tenderhub-eval/internal/model"
)

// bidCell is a matched cell after currency normalization: the raw figures
// in the bidder's currency plus, for comparable cells only, their values in
// the tender base currency.
type bidCell struct {
	state            cellState
	unitRate         *float64
	amount           *float64
	normalizedRate   *float64
	normalizedAmount *float64
}

// bidderTotal accumulates one bidder's figures across a set of items. Only
// comparable cells contribute to the sums; excluded cells are counted
// separately, never summed as zero cost.
type bidderTotal struct {
	amount        float64
	normalized    float64
	comparable    int
	nonComparable int
	noBid         int
}

type sectionRollup struct {
	totals    map[uuid.UUID]*bidderTotal
	itemCount int
}

func newSectionRollup(submissions []model.BidSubmission) *sectionRollup {
	roll := &sectionRollup{totals: make(map[uuid.UUID]*bidderTotal, len(submissions))}
	for _, sub := range submissions {
		roll.totals[sub.BidderID] = &bidderTotal{}
	}
	return roll
}

func (r *sectionRollup) merge(child *sectionRollup) {
	r.itemCount += child.itemCount
	for bidderID, total := range child.totals {
		dst := r.totals[bidderID]
		dst.amount += total.amount
		dst.normalized += total.normalized
		dst.comparable += total.comparable
		dst.nonComparable += total.nonComparable
		dst.noBid += total.noBid
	}
}

// rollupSections computes every section's per-bidder subtotal bottom-up: a
// section's subtotal is the sum of its direct items' comparable amounts
// plus its child sections' subtotals. Root subtotals summed per bidder form
// the grand totals.
func rollupSections(
	tree *boqTree,
	cells map[cellKey]bidCell,
	submissions []model.BidSubmission,
) (map[uuid.UUID]*sectionRollup, map[uuid.UUID]*bidderTotal) {
	rollups := make(map[uuid.UUID]*sectionRollup, len(tree.nodes))

	var visit func(id uuid.UUID) *sectionRollup
	visit = func(id uuid.UUID) *sectionRollup {
		node := tree.nodes[id]
		roll := newSectionRollup(submissions)
		for _, child := range node.children {
			roll.merge(visit(child))
		}
		for _, item := range node.items {
			roll.itemCount++
			for _, sub := range submissions {
				cell := cells[cellKey{itemID: item.ID, submissionID: sub.ID}]
				total := roll.totals[sub.BidderID]
				switch cell.state {
				case cellComparable:
					total.comparable++
					if cell.amount != nil {
						total.amount += *cell.amount
					}
					if cell.normalizedAmount != nil {
						total.normalized += *cell.normalizedAmount
					}
				case cellNonComparable:
					total.nonComparable++
				case cellNoBid:
					total.noBid++
				}
			}
		}
		rollups[id] = roll
		return roll
	}

	grand := newSectionRollup(submissions)
	for _, root := range tree.roots {
		grand.merge(visit(root))
	}
	return rollups, grand.totals
}
