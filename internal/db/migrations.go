package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'tender_status') THEN
			CREATE TYPE tender_status AS ENUM ('draft', 'published', 'evaluation', 'awarded', 'closed');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'boq_item_kind') THEN
			CREATE TYPE boq_item_kind AS ENUM ('base', 'alternate', 'provisional_sum', 'daywork');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'bid_state') THEN
			CREATE TYPE bid_state AS ENUM ('submitted', 'opened', 'disqualified', 'imported');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS tenders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		reference_number VARCHAR(64) NOT NULL,
		title TEXT NOT NULL,
		base_currency CHAR(3) NOT NULL,
		status tender_status NOT NULL DEFAULT 'draft',
		bid_opening_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tenders_reference_number ON tenders (reference_number);`,
	`CREATE TABLE IF NOT EXISTS bidders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT NOT NULL,
		registration_number VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS boq_sections (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tender_id UUID NOT NULL REFERENCES tenders(id) ON DELETE CASCADE,
		parent_section_id UUID REFERENCES boq_sections(id),
		section_number VARCHAR(32) NOT NULL,
		title TEXT NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_boq_sections_tender_id ON boq_sections (tender_id);`,
	`CREATE TABLE IF NOT EXISTS boq_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		section_id UUID NOT NULL REFERENCES boq_sections(id) ON DELETE CASCADE,
		item_number VARCHAR(32) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quantity NUMERIC(18,3) NOT NULL,
		uom VARCHAR(16) NOT NULL,
		kind boq_item_kind NOT NULL DEFAULT 'base',
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_boq_items_section_id ON boq_items (section_id);`,
	`CREATE TABLE IF NOT EXISTS bid_submissions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tender_id UUID NOT NULL REFERENCES tenders(id) ON DELETE CASCADE,
		bidder_id UUID NOT NULL REFERENCES bidders(id),
		state bid_state NOT NULL DEFAULT 'submitted',
		currency CHAR(3) NOT NULL,
		fx_rate NUMERIC(18,8),
		total_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		submitted_at TIMESTAMPTZ NOT NULL,
		opened_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bid_submissions_tender_bidder ON bid_submissions (tender_id, bidder_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bid_submissions_tender_state ON bid_submissions (tender_id, state);`,
	`CREATE TABLE IF NOT EXISTS bid_line_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		bid_submission_id UUID NOT NULL REFERENCES bid_submissions(id) ON DELETE CASCADE,
		boq_item_id UUID REFERENCES boq_items(id),
		quantity NUMERIC(18,3) NOT NULL,
		uom VARCHAR(16) NOT NULL,
		unit_rate NUMERIC(18,4) NOT NULL,
		amount NUMERIC(18,2) NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_bid_line_items_submission_id ON bid_line_items (bid_submission_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bid_line_items_boq_item_id ON bid_line_items (boq_item_id) WHERE boq_item_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS comparable_sheets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		tender_id UUID NOT NULL REFERENCES tenders(id) ON DELETE CASCADE,
		generated_at TIMESTAMPTZ NOT NULL,
		is_current BOOLEAN NOT NULL DEFAULT TRUE,
		bidder_count INT NOT NULL DEFAULT 0,
		payload JSONB NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_comparable_sheets_current ON comparable_sheets (tender_id) WHERE is_current;`,
	`CREATE INDEX IF NOT EXISTS idx_comparable_sheets_tender_generated ON comparable_sheets (tender_id, generated_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
