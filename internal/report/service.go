package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"libraryapi/internal/catalog"
	"libraryapi/internal/lending"
)

// HistoryEntry is one line of a patron's borrow history.
type HistoryEntry struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// PatronReport is a point-in-time snapshot of a patron's standing.
type PatronReport struct {
	PatronID        string          `json:"patron_id"`
	OpenLoans       int             `json:"open_loans"`
	TotalLoans      int             `json:"total_loans"`
	OutstandingFees decimal.Decimal `json:"outstanding_fees"`
	History         []HistoryEntry  `json:"history"`
}

// Service aggregates a patron's records into a status snapshot.
type Service struct {
	store catalog.Store
	now   func() time.Time
}

func NewService(store catalog.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// PatronStatus builds the report. A well-formed patron id with no
// records yields an empty report, not an error.
func (s *Service) PatronStatus(ctx context.Context, patronID string) (PatronReport, error) {
	if err := lending.ValidatePatronID(patronID); err != nil {
		return PatronReport{}, err
	}

	records, err := s.store.FindBorrowsByPatron(ctx, patronID)
	if err != nil {
		return PatronReport{}, fmt.Errorf("%w: list borrow records: %v", catalog.ErrStore, err)
	}

	report := PatronReport{
		PatronID:        patronID,
		TotalLoans:      len(records),
		OutstandingFees: decimal.Zero,
		History:         []HistoryEntry{},
	}

	asOf := s.now()
	books := make(map[string]catalog.Book)
	for _, rec := range records {
		if rec.Open() {
			report.OpenLoans++
		}
		report.OutstandingFees = report.OutstandingFees.Add(lending.ComputeFee(rec, asOf).Amount)

		b, ok := books[rec.BookID]
		if !ok {
			b, err = s.store.FindBookByID(ctx, rec.BookID)
			if err != nil {
				if errors.Is(err, catalog.ErrBookNotFound) {
					continue
				}
				return PatronReport{}, fmt.Errorf("%w: resolve book %s: %v", catalog.ErrStore, rec.BookID, err)
			}
			books[rec.BookID] = b
		}
		report.History = append(report.History, HistoryEntry{
			BookID: b.ID,
			Title:  b.Title,
			Author: b.Author,
		})
	}

	return report, nil
}
