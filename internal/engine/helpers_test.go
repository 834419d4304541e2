package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/abenov/tenderhub-eval/internal/model"
)

var openingTime = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

func testUUID(n byte) uuid.UUID {
	var b [16]byte
	b[15] = n
	return uuid.Must(uuid.FromBytes(b[:]))
}

func floatPtr(v float64) *float64 { return &v }

var (
	tenderID  = testUUID(0x01)
	sectionID = testUUID(0x10)
	item1ID   = testUUID(0x21)
	item2ID   = testUUID(0x22)
	bidderA   = testUUID(0xA1)
	bidderB   = testUUID(0xB1)
	bidderC   = testUUID(0xC1)
	subA      = testUUID(0xA2)
	subB      = testUUID(0xB2)
	subC      = testUUID(0xC2)
)

func bidLine(n byte, subID, itemID uuid.UUID, qty float64, uom string, rate, amount float64) model.BidLineItem {
	boqItemID := itemID
	return model.BidLineItem{
		ID:              testUUID(0xE0 + n),
		BidSubmissionID: subID,
		BoqItemID:       &boqItemID,
		Quantity:        qty,
		Uom:             uom,
		UnitRate:        rate,
		Amount:          amount,
	}
}

func openedSubmission(id, bidderID uuid.UUID, name string, total float64, submittedAt time.Time) model.BidSubmission {
	opened := openingTime.Add(24 * time.Hour)
	return model.BidSubmission{
		ID:          id,
		TenderID:    tenderID,
		BidderID:    bidderID,
		BidderName:  name,
		State:       model.BidStateOpened,
		Currency:    "USD",
		TotalAmount: total,
		SubmittedAt: submittedAt,
		OpenedAt:    &opened,
	}
}

// threeBidderSnapshot is the canonical evaluation fixture: one section with
// a measured item (10 EA) and a lump-sum item (5 LS), three USD bidders.
// Expected outcome: item 1 median amount 1100 with C a minor outlier at
// +18.2%, grand totals A=6000 B=6850 C=6300, ranking A, C, B.
func threeBidderSnapshot() Snapshot {
	return Snapshot{
		Tender: model.Tender{
			ID:              tenderID,
			ReferenceNumber: "TND-2025-014",
			Title:           "Access road rehabilitation",
			BaseCurrency:    "USD",
			Status:          model.TenderStatusEvaluation,
		},
		Sections: []model.BoqSection{
			{ID: sectionID, TenderID: tenderID, SectionNumber: "1", Title: "Civil works", SortOrder: 1},
		},
		Items: []model.BoqItem{
			{ID: item1ID, SectionID: sectionID, ItemNumber: "1.1", Description: "Excavate and cart away",
				Quantity: 10, Uom: "EA", Kind: model.ItemKindBase, SortOrder: 1},
			{ID: item2ID, SectionID: sectionID, ItemNumber: "1.2", Description: "Site establishment",
				Quantity: 5, Uom: "LS", Kind: model.ItemKindBase, SortOrder: 2},
		},
		Submissions: []model.BidSubmission{
			openedSubmission(subA, bidderA, "Alpha Construction", 6000, openingTime),
			openedSubmission(subB, bidderB, "Borealis Contracting", 6850, openingTime.Add(time.Hour)),
			openedSubmission(subC, bidderC, "Cascade Builders", 6300, openingTime.Add(2*time.Hour)),
		},
		Lines: []model.BidLineItem{
			bidLine(0x01, subA, item1ID, 10, "EA", 100, 1000),
			bidLine(0x02, subA, item2ID, 5, "LS", 1000, 5000),
			bidLine(0x03, subB, item1ID, 10, "EA", 110, 1100),
			bidLine(0x04, subB, item2ID, 5, "LS", 1150, 5750),
			bidLine(0x05, subC, item1ID, 10, "EA", 130, 1300),
			bidLine(0x06, subC, item2ID, 5, "LS", 1000, 5000),
		},
	}
}
