package catalog

import (
	"time"
)

// Book is a catalog entry. AvailableCopies always stays within
// [0, TotalCopies]; only borrow/return transitions move it.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
}

// BorrowRecord is one loan of a book to a patron. A record with no
// return date is open; a patron holds at most one open record per book.
type BorrowRecord struct {
	ID         string     `json:"id"`
	PatronID   string     `json:"patron_id"`
	BookID     string     `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// Open reports whether the loan is still active.
func (r BorrowRecord) Open() bool {
	return r.ReturnedAt == nil
}
