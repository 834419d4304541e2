package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abenov/tenderhub-eval/internal/model"
)

type SheetRepository struct {
	db *gorm.DB
}

func NewSheetRepository(db *gorm.DB) *SheetRepository {
	return &SheetRepository{db: db}
}

// Create stores the sheet as the tender's current one. Flipping the old
// current flag and inserting the new row happen in one transaction, so
// readers never observe zero or two current sheets.
func (r *SheetRepository) Create(ctx context.Context, record *model.SheetRecord) error {
	payload, err := json.Marshal(record.Sheet)
	if err != nil {
		return fmt.Errorf("encode sheet payload: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE comparable_sheets
			SET is_current = FALSE
			WHERE tender_id = ? AND is_current
		`, record.TenderID).Error; err != nil {
			return err
		}

		var row struct {
			ID uuid.UUID
		}
		if err := tx.Raw(`
			INSERT INTO comparable_sheets (tender_id, generated_at, is_current, bidder_count, payload)
			VALUES (?, ?, TRUE, ?, ?::jsonb)
			RETURNING id
		`, record.TenderID, record.GeneratedAt, record.BidderCount, string(payload)).Scan(&row).Error; err != nil {
			return err
		}

		record.ID = row.ID
		record.IsCurrent = true
		return nil
	})
}

func (r *SheetRepository) Current(ctx context.Context, tenderID uuid.UUID) (*model.SheetRecord, error) {
	return r.scanRecord(ctx, `
		SELECT id, tender_id, generated_at, is_current, bidder_count, payload
		FROM comparable_sheets
		WHERE tender_id = ? AND is_current
		LIMIT 1
	`, tenderID)
}

func (r *SheetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SheetRecord, error) {
	return r.scanRecord(ctx, `
		SELECT id, tender_id, generated_at, is_current, bidder_count, payload
		FROM comparable_sheets
		WHERE id = ?
		LIMIT 1
	`, id)
}

func (r *SheetRepository) ListByTender(ctx context.Context, tenderID uuid.UUID) ([]model.SheetSummary, error) {
	var summaries []model.SheetSummary
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, tender_id, generated_at, bidder_count, is_current
		FROM comparable_sheets
		WHERE tender_id = ?
		ORDER BY generated_at DESC, id DESC
	`, tenderID).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *SheetRepository) scanRecord(ctx context.Context, query string, args ...interface{}) (*model.SheetRecord, error) {
	var row struct {
		ID          uuid.UUID
		TenderID    uuid.UUID
		GeneratedAt time.Time
		IsCurrent   bool
		BidderCount int
		Payload     []byte
	}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	record := &model.SheetRecord{
		ID:          row.ID,
		TenderID:    row.TenderID,
		GeneratedAt: row.GeneratedAt,
		IsCurrent:   row.IsCurrent,
		BidderCount: row.BidderCount,
	}
	if err := json.Unmarshal(row.Payload, &record.Sheet); err != nil {
		return nil, fmt.Errorf("decode sheet payload %s: %w", row.ID, err)
	}
	return record, nil
}
