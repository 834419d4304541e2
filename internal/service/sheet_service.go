package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abenov/tenderhub-eval/internal/config"
	"github.com/abenov/tenderhub-eval/internal/engine"
	"github.com/abenov/tenderhub-eval/internal/model"
)

type BoqStore interface {
	GetTender(ctx context.Context, id uuid.UUID) (*model.Tender, error)
	ListSections(ctx context.Context, tenderID uuid.UUID) ([]model.BoqSection, error)
	ListItems(ctx context.Context, tenderID uuid.UUID) ([]model.BoqItem, error)
}

type BidStore interface {
	CountByState(ctx context.Context, tenderID uuid.UUID) (map[model.BidState]int, error)
	ListOpened(ctx context.Context, tenderID uuid.UUID) ([]model.BidSubmission, error)
	ListOpenedLines(ctx context.Context, tenderID uuid.UUID) ([]model.BidLineItem, error)
}

type SheetStore interface {
	Create(ctx context.Context, record *model.SheetRecord) error
	Current(ctx context.Context, tenderID uuid.UUID) (*model.SheetRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.SheetRecord, error)
	ListByTender(ctx context.Context, tenderID uuid.UUID) ([]model.SheetSummary, error)
}

// SheetService serializes generation per tender so two concurrent runs
// cannot race to publish two current sheets; different tenders generate in
// parallel.
type SheetService struct {
	boq    BoqStore
	bids   BidStore
	sheets SheetStore
	opts   engine.Options

	locks sync.Map // tender id -> *sync.Mutex
}

func NewSheetService(boq BoqStore, bids BidStore, sheets SheetStore, cfg *config.Config) *SheetService {
	return &SheetService{
		boq:    boq,
		bids:   bids,
		sheets: sheets,
		opts: engine.Options{
			QuantityTolerance: cfg.Eval.QuantityTolerance,
			MinBidders:        cfg.Eval.MinBidders,
		},
	}
}

// Generate computes a fresh sheet and stores it as the current one.
// Earlier sheets stay retrievable through History.
func (s *SheetService) Generate(ctx context.Context, tenderID uuid.UUID) (*model.SheetRecord, error) {
	if tenderID == uuid.Nil {
		return nil, fmt.Errorf("%w: tender id is required", ErrInvalidInput)
	}

	mu := s.tenderLock(tenderID)
	mu.Lock()
	defer mu.Unlock()

	tender, err := s.boq.GetTender(ctx, tenderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	counts, err := s.bids.CountByState(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	if counts[model.BidStateOpened] == 0 && counts[model.BidStateSubmitted] > 0 {
		return nil, fmt.Errorf("%w: %d sealed submissions await opening",
			engine.ErrBidsNotOpened, counts[model.BidStateSubmitted])
	}

	sections, err := s.boq.ListSections(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	items, err := s.boq.ListItems(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.bids.ListOpened(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	lines, err := s.bids.ListOpenedLines(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	sheet, err := engine.Generate(engine.Snapshot{
		Tender:      *tender,
		Sections:    sections,
		Items:       items,
		Submissions: submissions,
		Lines:       lines,
	}, s.opts)
	if err != nil {
		return nil, err
	}

	record := &model.SheetRecord{
		TenderID:    tenderID,
		GeneratedAt: sheet.GeneratedAt,
		IsCurrent:   true,
		BidderCount: sheet.Statistics.BidderCount,
		Sheet:       *sheet,
	}
	if err := s.sheets.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SheetService) Current(ctx context.Context, tenderID uuid.UUID) (*model.SheetRecord, error) {
	if tenderID == uuid.Nil {
		return nil, fmt.Errorf("%w: tender id is required", ErrInvalidInput)
	}
	record, err := s.sheets.Current(ctx, tenderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *SheetService) SheetByID(ctx context.Context, id uuid.UUID) (*model.SheetRecord, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: sheet id is required", ErrInvalidInput)
	}
	record, err := s.sheets.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// History lists every sheet generated for the tender, newest first.
func (s *SheetService) History(ctx context.Context, tenderID uuid.UUID) ([]model.SheetSummary, error) {
	if tenderID == uuid.Nil {
		return nil, fmt.Errorf("%w: tender id is required", ErrInvalidInput)
	}
	if _, err := s.boq.GetTender(ctx, tenderID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.sheets.ListByTender(ctx, tenderID)
}

func (s *SheetService) tenderLock(id uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
