package lending

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"libraryapi/internal/catalog"
)

// Service is the lending engine. It owns the borrow and return
// transitions; the store executes each transition's two writes as one
// atomic unit.
type Service struct {
	store catalog.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store catalog.Store, log *zap.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// BorrowConfirmation reports a successful borrow, including the due date.
type BorrowConfirmation struct {
	RecordID string    `json:"record_id"`
	BookID   string    `json:"book_id"`
	Title    string    `json:"title"`
	DueAt    time.Time `json:"due_at"`
}

// ReturnConfirmation reports a successful return.
type ReturnConfirmation struct {
	BookID     string    `json:"book_id"`
	Title      string    `json:"title"`
	ReturnedAt time.Time `json:"returned_at"`
}

// Borrow lends a book to a patron. Eligibility is checked up front for
// precise failures; the store re-guards the copy count inside the
// borrow transaction.
func (s *Service) Borrow(ctx context.Context, patronID, bookID string) (BorrowConfirmation, error) {
	if err := ValidatePatronID(patronID); err != nil {
		return BorrowConfirmation{}, err
	}

	book, err := s.store.FindBookByID(ctx, bookID)
	if err != nil {
		return BorrowConfirmation{}, err
	}
	if book.AvailableCopies <= 0 {
		return BorrowConfirmation{}, catalog.ErrNoCopiesAvailable
	}

	open, err := s.store.FindOpenBorrows(ctx, patronID)
	if err != nil {
		return BorrowConfirmation{}, fmt.Errorf("%w: count open borrows: %v", catalog.ErrStore, err)
	}
	if len(open) >= MaxOpenBorrows {
		return BorrowConfirmation{}, ErrBorrowLimitExceeded
	}

	now := s.now()
	rec := &catalog.BorrowRecord{
		PatronID:   patronID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, LoanPeriodDays),
	}
	recordID, err := s.store.CreateBorrow(ctx, rec)
	if err != nil {
		return BorrowConfirmation{}, err
	}

	s.log.Info("book borrowed",
		zap.String("patron_id", patronID),
		zap.String("book_id", bookID),
		zap.Time("due_at", rec.DueAt),
	)

	return BorrowConfirmation{
		RecordID: recordID,
		BookID:   bookID,
		Title:    book.Title,
		DueAt:    rec.DueAt,
	}, nil
}

// Return closes the patron's open loan on the book. A pair with no open
// record fails with catalog.ErrNoActiveBorrow, whether it was never
// borrowed or already returned.
func (s *Service) Return(ctx context.Context, patronID, bookID string) (ReturnConfirmation, error) {
	if err := ValidatePatronID(patronID); err != nil {
		return ReturnConfirmation{}, err
	}

	book, err := s.store.FindBookByID(ctx, bookID)
	if err != nil {
		return ReturnConfirmation{}, err
	}

	returnedAt := s.now()
	if err := s.store.CloseBorrow(ctx, patronID, bookID, returnedAt); err != nil {
		return ReturnConfirmation{}, err
	}

	s.log.Info("book returned",
		zap.String("patron_id", patronID),
		zap.String("book_id", bookID),
	)

	return ReturnConfirmation{
		BookID:     bookID,
		Title:      book.Title,
		ReturnedAt: returnedAt,
	}, nil
}

// OpenBorrows lists the patron's active loans.
func (s *Service) OpenBorrows(ctx context.Context, patronID string) ([]catalog.BorrowRecord, error) {
	if err := ValidatePatronID(patronID); err != nil {
		return nil, err
	}
	return s.store.FindOpenBorrows(ctx, patronID)
}
