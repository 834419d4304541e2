package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abenov/tenderhub-eval/internal/model"
)

type BoqRepository struct {
	db *gorm.DB
}

func NewBoqRepository(db *gorm.DB) *BoqRepository {
	return &BoqRepository{db: db}
}

func (r *BoqRepository) GetTender(ctx context.Context, id uuid.UUID) (*model.Tender, error) {
	var tender model.Tender
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, reference_number, title, base_currency, status, bid_opening_at, created_at
		FROM tenders
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&tender).Error; err != nil {
		return nil, err
	}
	if tender.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &tender, nil
}

// ListSections returns the tender's flat section records. The engine
// rebuilds the hierarchy itself; the query order only keeps scans stable.
func (r *BoqRepository) ListSections(ctx context.Context, tenderID uuid.UUID) ([]model.BoqSection, error) {
	var sections []model.BoqSection
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, tender_id, parent_section_id, section_number, title, sort_order
		FROM boq_sections
		WHERE tender_id = ?
		ORDER BY sort_order ASC, section_number ASC
	`, tenderID).Scan(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *BoqRepository) ListItems(ctx context.Context, tenderID uuid.UUID) ([]model.BoqItem, error) {
	var items []model.BoqItem
	if err := r.db.WithContext(ctx).Raw(`
		SELECT i.id, i.section_id, i.item_number, i.description, i.quantity, i.uom, i.kind, i.sort_order
		FROM boq_items i
		JOIN boq_sections s ON s.id = i.section_id
		WHERE s.tender_id = ?
		ORDER BY i.sort_order ASC, i.item_number ASC
	`, tenderID).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
