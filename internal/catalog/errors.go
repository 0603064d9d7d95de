package catalog

import (
	"errors"
)

var (
	// ErrBookNotFound is returned when a book id or ISBN matches nothing.
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateISBN is returned when a book with the same ISBN exists.
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")

	// ErrNoCopiesAvailable is returned when every copy is on loan.
	ErrNoCopiesAvailable = errors.New("this book is currently not available")

	// ErrAlreadyBorrowed is returned when the patron already holds an
	// open record for the book.
	ErrAlreadyBorrowed = errors.New("patron already has this book on loan")

	// ErrNoActiveBorrow is returned when a return finds no open record
	// for the (patron, book) pair, whether it was never borrowed or
	// already returned.
	ErrNoActiveBorrow = errors.New("no active borrow for this patron and book")

	// ErrBorrowRecordNotFound is returned when the pair has no record at
	// all, open or closed.
	ErrBorrowRecordNotFound = errors.New("borrow record not found")

	// ErrStore wraps persistence failures.
	ErrStore = errors.New("store error")
)

// FieldError reports which input field failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}
