package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abenov/tenderhub-eval/internal/model"
)

// DefaultMinBidders is the competition threshold below which a generated
// sheet carries an advisory warning.
const DefaultMinBidders = 3

// Snapshot is the immutable tender state one sheet is computed from. The
// caller loads it before invoking Generate; no I/O happens inside the
// engine. Submissions must contain opened bids only.
type Snapshot struct {
	Tender      model.Tender
	Sections    []model.BoqSection
	Items       []model.BoqItem
	Submissions []model.BidSubmission
	Lines       []model.BidLineItem
}

// Options tune a generation run. The zero value requests exact quantity
// matching and the default minimum-bidder threshold.
type Options struct {
	// QuantityTolerance is the relative tolerance allowed between a bid
	// line's quantity and the canonical item's before the cell turns
	// non-comparable. Zero requires an exact match.
	QuantityTolerance float64

	// MinBidders is the opened-bid count below which the sheet carries
	// MinimumBiddersWarning. Zero or negative selects DefaultMinBidders.
	MinBidders int
}

// Generate computes the comparable sheet for one tender snapshot. It is a
// pure computation apart from stamping GeneratedAt: the same snapshot and
// options always produce the same sheet content. Fatal conditions return a
// wrapped ErrDataIntegrity or ErrBidsNotOpened with no partial result;
// recoverable conditions (missing fx rate, scope mismatches, too few
// bidders) are embedded in the sheet instead.
func Generate(snap Snapshot, opts Options) (*model.ComparableSheet, error) {
	minBidders := opts.MinBidders
	if minBidders <= 0 {
		minBidders = DefaultMinBidders
	}

	baseCurrency := strings.TrimSpace(snap.Tender.BaseCurrency)
	if !validCurrencyCode(baseCurrency) {
		return nil, fmt.Errorf("%w: tender %s has invalid base currency %q",
			ErrDataIntegrity, snap.Tender.ID, snap.Tender.BaseCurrency)
	}

	seen := make(map[uuid.UUID]uuid.UUID, len(snap.Submissions))
	for _, sub := range snap.Submissions {
		if sub.State != model.BidStateOpened {
			return nil, fmt.Errorf("%w: submission %s is in state %q",
				ErrBidsNotOpened, sub.ID, sub.State)
		}
		if prev, ok := seen[sub.BidderID]; ok {
			return nil, fmt.Errorf("%w: bidder %s has multiple opened submissions (%s, %s)",
				ErrDataIntegrity, sub.BidderID, prev, sub.ID)
		}
		seen[sub.BidderID] = sub.ID
	}

	tree, err := buildTree(snap.Sections, snap.Items)
	if err != nil {
		return nil, err
	}

	// Column order is bid-opening order: earliest submission first, bidder
	// id as the deterministic tie-break.
	subs := append([]model.BidSubmission(nil), snap.Submissions...)
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
		}
		return subs[i].BidderID.String() < subs[j].BidderID.String()
	})

	matched, unmatched := matchLines(snap.Items, subs, snap.Lines, opts.QuantityTolerance)
	cells, fxRates := normalizeCells(matched, subs, baseCurrency)
	rollups, grand := rollupSections(tree, cells, subs)

	b := &sheetBuilder{
		subs:    subs,
		cells:   cells,
		rollups: rollups,
		grand:   grand,
	}

	rankings := b.buildRankings()

	sheet := &model.ComparableSheet{
		TenderID:        snap.Tender.ID,
		TenderReference: snap.Tender.ReferenceNumber,
		BaseCurrency:    baseCurrency,
		GeneratedAt:     time.Now().UTC(),
		Bidders:         b.buildColumns(fxRates),
		Rows:            b.buildRows(tree),
		Sections:        b.buildSectionSummaries(tree),
		Rankings:        rankings,
	}

	// Row assembly fills the cell-state counters, so stats are finalized
	// after buildRows has run.
	stats := b.stats
	stats.TotalItems = len(snap.Items)
	stats.UnmatchedLines = unmatched
	stats.BidderCount = len(subs)
	totals := make([]float64, 0, len(rankings))
	for _, r := range rankings {
		totals = append(totals, r.NormalizedAmount)
	}
	stats.LowestTotal = lowest(totals)
	stats.HighestTotal = highest(totals)
	stats.AverageTotal = mean(totals)
	stats.MedianTotal = median(totals)
	sheet.Statistics = stats

	if len(subs) < minBidders {
		msg := fmt.Sprintf("%d opened bids is below the recommended minimum of %d",
			len(subs), minBidders)
		sheet.MinimumBiddersWarning = &msg
	}
	return sheet, nil
}

// normalizeCells converts every matched cell into the tender base currency.
// A comparable cell whose submission has no resolvable rate degrades to
// non-comparable; its raw figures stay visible. The returned fx map holds
// the effective rate per submission, absent when normalization failed.
func normalizeCells(
	matched map[cellKey]matchedCell,
	submissions []model.BidSubmission,
	baseCurrency string,
) (map[cellKey]bidCell, map[uuid.UUID]float64) {
	fxRates := make(map[uuid.UUID]float64, len(submissions))
	for _, sub := range submissions {
		if rate, ok := resolveFxRate(sub, baseCurrency); ok {
			fxRates[sub.ID] = rate
		}
	}

	cells := make(map[cellKey]bidCell, len(matched))
	for key, mc := range matched {
		cell := bidCell{state: mc.state}
		if mc.line != nil {
			unitRate := mc.line.UnitRate
			amount := mc.line.Amount
			cell.unitRate = &unitRate
			cell.amount = &amount
		}
		if cell.state == cellComparable {
			if rate, ok := fxRates[key.submissionID]; ok {
				normRate := mc.line.UnitRate * rate
				normAmount := mc.line.Amount * rate
				cell.normalizedRate = &normRate
				cell.normalizedAmount = &normAmount
			} else {
				cell.state = cellNonComparable
			}
		}
		cells[key] = cell
	}
	return cells, fxRates
}

// sheetBuilder assembles the output structures from the computed cell and
// rollup state. The cell-state counters accumulate while item rows are
// built.
type sheetBuilder struct {
	subs    []model.BidSubmission
	cells   map[cellKey]bidCell
	rollups map[uuid.UUID]*sectionRollup
	grand   map[uuid.UUID]*bidderTotal
	stats   model.SheetStatistics
}

func (b *sheetBuilder) buildColumns(fxRates map[uuid.UUID]float64) []model.BidderColumn {
	columns := make([]model.BidderColumn, 0, len(b.subs))
	for _, sub := range b.subs {
		col := model.BidderColumn{
			BidderID:     sub.BidderID,
			BidderName:   sub.BidderName,
			SubmissionID: sub.ID,
			Currency:     sub.Currency,
			SubmittedAt:  sub.SubmittedAt,
			TotalAmount:  sub.TotalAmount,
		}
		if rate, ok := fxRates[sub.ID]; ok {
			col.FxRate = &rate
		}
		if total, ok := b.grand[sub.BidderID]; ok {
			col.NormalizedTotal = total.normalized
			col.ComparableItems = total.comparable
		}
		columns = append(columns, col)
	}
	return columns
}

// buildRows walks the forest depth-first emitting, per section, the header
// row, its child sections, its direct item rows and finally the subtotal
// row; the grand-total row closes the sheet.
func (b *sheetBuilder) buildRows(tree *boqTree) []model.ComparableSheetRow {
	rows := make([]model.ComparableSheetRow, 0, 2*len(tree.nodes)+2)

	var emit func(id uuid.UUID, depth int)
	emit = func(id uuid.UUID, depth int) {
		node := tree.nodes[id]
		sectionID := node.section.ID
		rows = append(rows, model.ComparableSheetRow{
			RowID:       "section:" + sectionID.String(),
			RowType:     model.RowTypeSectionHeader,
			SectionID:   &sectionID,
			Code:        node.section.SectionNumber,
			Description: node.section.Title,
			Depth:       depth,
		})
		for _, child := range node.children {
			emit(child, depth+1)
		}
		for _, item := range node.items {
			rows = append(rows, b.itemRow(item, depth+1))
		}
		rows = append(rows, b.subtotalRow(node.section, depth))
	}
	for _, root := range tree.roots {
		emit(root, 0)
	}

	return append(rows, b.grandTotalRow())
}

func (b *sheetBuilder) itemRow(item model.BoqItem, depth int) model.ComparableSheetRow {
	var normAmounts, normRates []float64
	for _, sub := range b.subs {
		cell := b.cells[cellKey{itemID: item.ID, submissionID: sub.ID}]
		if cell.state == cellComparable {
			normAmounts = append(normAmounts, *cell.normalizedAmount)
			normRates = append(normRates, *cell.normalizedRate)
		}
	}
	medianAmount := median(normAmounts)

	out := make(map[string]model.BidderCellData, len(b.subs))
	for _, sub := range b.subs {
		cell := b.cells[cellKey{itemID: item.ID, submissionID: sub.ID}]
		data := model.BidderCellData{
			UnitRate:         cell.unitRate,
			Amount:           cell.amount,
			NormalizedRate:   cell.normalizedRate,
			NormalizedAmount: cell.normalizedAmount,
		}
		switch cell.state {
		case cellComparable:
			b.stats.ComparableItems++
			dev := deviationPercent(*cell.normalizedAmount, medianAmount)
			data.DeviationPercent = &dev
			data.OutlierSeverity = classifySeverity(dev)
			if data.OutlierSeverity != model.SeverityNormal {
				b.stats.OutlierItems++
			}
		case cellNonComparable:
			b.stats.NonComparableItems++
			data.OutlierSeverity = model.SeverityNonComparable
		case cellNoBid:
			b.stats.NoBidItems++
			data.OutlierSeverity = model.SeverityNoBid
		}
		out[sub.BidderID.String()] = data
	}

	itemID := item.ID
	sectionID := item.SectionID
	quantity := item.Quantity
	return model.ComparableSheetRow{
		RowID:       "item:" + itemID.String(),
		RowType:     model.RowTypeItem,
		SectionID:   &sectionID,
		ItemID:      &itemID,
		Code:        item.ItemNumber,
		Description: item.Description,
		Depth:       depth,
		Quantity:    &quantity,
		Uom:         item.Uom,
		ItemKind:    item.Kind,
		Cells:       out,
		Statistics:  rowStatistics(normRates),
	}
}

func (b *sheetBuilder) subtotalRow(section model.BoqSection, depth int) model.ComparableSheetRow {
	roll := b.rollups[section.ID]
	out := make(map[string]model.BidderCellData, len(b.subs))
	for _, sub := range b.subs {
		total := roll.totals[sub.BidderID]
		amount := total.amount
		normalized := total.normalized
		out[sub.BidderID.String()] = model.BidderCellData{
			Amount:           &amount,
			NormalizedAmount: &normalized,
		}
	}
	sectionID := section.ID
	return model.ComparableSheetRow{
		RowID:       "subtotal:" + sectionID.String(),
		RowType:     model.RowTypeSubtotal,
		SectionID:   &sectionID,
		Code:        section.SectionNumber,
		Description: section.Title,
		Depth:       depth,
		Cells:       out,
	}
}

func (b *sheetBuilder) grandTotalRow() model.ComparableSheetRow {
	out := make(map[string]model.BidderCellData, len(b.subs))
	for _, sub := range b.subs {
		total := b.grand[sub.BidderID]
		amount := total.amount
		normalized := total.normalized
		out[sub.BidderID.String()] = model.BidderCellData{
			Amount:           &amount,
			NormalizedAmount: &normalized,
		}
	}
	return model.ComparableSheetRow{
		RowID:       "grand_total",
		RowType:     model.RowTypeGrandTotal,
		Description: "Grand total",
		Cells:       out,
	}
}

func (b *sheetBuilder) buildSectionSummaries(tree *boqTree) []model.SectionSummary {
	summaries := make([]model.SectionSummary, 0, len(tree.nodes))
	tree.walk(func(depth int, node *sectionNode) {
		roll := b.rollups[node.section.ID]
		totals := make(map[string]model.BidderSectionTotal, len(b.subs))
		for _, sub := range b.subs {
			t := roll.totals[sub.BidderID]
			totals[sub.BidderID.String()] = model.BidderSectionTotal{
				Amount:             t.amount,
				NormalizedAmount:   t.normalized,
				ComparableItems:    t.comparable,
				NonComparableItems: t.nonComparable,
				NoBidItems:         t.noBid,
			}
		}
		summaries = append(summaries, model.SectionSummary{
			SectionID:     node.section.ID,
			SectionNumber: node.section.SectionNumber,
			Title:         node.section.Title,
			Depth:         depth,
			ItemCount:     roll.itemCount,
			Totals:        totals,
		})
	})
	return summaries
}

// buildRankings orders bidders by normalized grand total ascending. Ties go
// to the earlier submission, then to the smaller bidder id. A bidder with
// no comparable cell has no evaluable total and is left out.
func (b *sheetBuilder) buildRankings() []model.BidderRanking {
	type candidate struct {
		sub   model.BidSubmission
		total *bidderTotal
	}
	ranked := make([]candidate, 0, len(b.subs))
	for _, sub := range b.subs {
		total := b.grand[sub.BidderID]
		if total == nil || total.comparable == 0 {
			continue
		}
		ranked = append(ranked, candidate{sub: sub, total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total.normalized != ranked[j].total.normalized {
			return ranked[i].total.normalized < ranked[j].total.normalized
		}
		if !ranked[i].sub.SubmittedAt.Equal(ranked[j].sub.SubmittedAt) {
			return ranked[i].sub.SubmittedAt.Before(ranked[j].sub.SubmittedAt)
		}
		return ranked[i].sub.BidderID.String() < ranked[j].sub.BidderID.String()
	})

	rankings := make([]model.BidderRanking, 0, len(ranked))
	var lowestTotal float64
	for i, c := range ranked {
		if i == 0 {
			lowestTotal = c.total.normalized
		}
		rankings = append(rankings, model.BidderRanking{
			BidderID:            c.sub.BidderID,
			BidderName:          c.sub.BidderName,
			Rank:                i + 1,
			TotalAmount:         c.total.amount,
			NormalizedAmount:    c.total.normalized,
			DeviationFromLowest: c.total.normalized - lowestTotal,
			DeviationPercent:    deviationPercent(c.total.normalized, lowestTotal),
		})
	}
	return rankings
}
