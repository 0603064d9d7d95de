package catalog

import (
	"context"
	"time"
)

// Store defines the contract for the catalog's source of truth.
//
// CreateBorrow and CloseBorrow each perform the record write and the
// copy-count adjustment as one atomic unit; a failure leaves no partial
// state visible to other callers.
type Store interface {
	FindBookByID(ctx context.Context, id string) (Book, error)
	FindBookByISBN(ctx context.Context, isbn string) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	InsertBook(ctx context.Context, b *Book) (string, error)

	// CreateBorrow inserts an open record and decrements the book's
	// available copies. It fails with ErrNoCopiesAvailable when no copy
	// is free and ErrAlreadyBorrowed when the pair already has an open
	// record.
	CreateBorrow(ctx context.Context, rec *BorrowRecord) (string, error)

	// CloseBorrow sets the return date on the pair's open record and
	// increments available copies, bounded by the total. It fails with
	// ErrNoActiveBorrow when no open record exists.
	CloseBorrow(ctx context.Context, patronID, bookID string, returnedAt time.Time) error

	FindOpenBorrows(ctx context.Context, patronID string) ([]BorrowRecord, error)

	// FindBorrowsByPatron returns every record for the patron, open and
	// closed, in borrow-date order.
	FindBorrowsByPatron(ctx context.Context, patronID string) ([]BorrowRecord, error)

	// FindBorrow returns the pair's open record if one exists, otherwise
	// the most recent closed one, or ErrBorrowRecordNotFound.
	FindBorrow(ctx context.Context, patronID, bookID string) (BorrowRecord, error)
}
