package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abenov/tenderhub-eval/internal/model"
)

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) CountByState(ctx context.Context, tenderID uuid.UUID) (map[model.BidState]int, error) {
	var rows []struct {
		State model.BidState
		Count int
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT state, COUNT(*) AS count
		FROM bid_submissions
		WHERE tender_id = ?
		GROUP BY state
	`, tenderID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.BidState]int, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}

// ListOpened returns the tender's opened submissions in bid-opening order,
// with the bidder name denormalized onto each record.
func (r *BidRepository) ListOpened(ctx context.Context, tenderID uuid.UUID) ([]model.BidSubmission, error) {
	var submissions []model.BidSubmission
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id,
			b.tender_id,
			b.bidder_id,
			bd.name AS bidder_name,
			b.state,
			b.currency,
			b.fx_rate,
			b.total_amount,
			b.submitted_at,
			b.opened_at
		FROM bid_submissions b
		JOIN bidders bd ON bd.id = b.bidder_id
		WHERE b.tender_id = ? AND b.state = 'opened'
		ORDER BY b.submitted_at ASC, b.bidder_id ASC
	`, tenderID).Scan(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListOpenedLines returns every line of the tender's opened submissions,
// including lines the import left unmapped (nil boq_item_id).
func (r *BidRepository) ListOpenedLines(ctx context.Context, tenderID uuid.UUID) ([]model.BidLineItem, error) {
	var lines []model.BidLineItem
	if err := r.db.WithContext(ctx).Raw(`
		SELECT l.id, l.bid_submission_id, l.boq_item_id, l.quantity, l.uom, l.unit_rate, l.amount
		FROM bid_line_items l
		JOIN bid_submissions b ON b.id = l.bid_submission_id
		WHERE b.tender_id = ? AND b.state = 'opened'
		ORDER BY l.id ASC
	`, tenderID).Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
