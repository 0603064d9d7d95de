package lending

import (
	"errors"
)

// Lending policy. Fixed for the single-branch deployment; tests assert
// against these names rather than literals.
const (
	// LoanPeriodDays is how long a borrowed book may be kept.
	LoanPeriodDays = 14

	// MaxOpenBorrows is the system-wide cap on a patron's open loans.
	MaxOpenBorrows = 5

	// PatronIDLength is the fixed width of a library card number.
	PatronIDLength = 6
)

var (
	// ErrInvalidPatronID is returned for anything but a 6-digit card number.
	ErrInvalidPatronID = errors.New("invalid patron id: must be exactly 6 digits")

	// ErrBorrowLimitExceeded is returned when a patron already holds
	// MaxOpenBorrows open loans.
	ErrBorrowLimitExceeded = errors.New("maximum borrowing limit of 5 books reached")
)

// ValidatePatronID checks the 6-digit card number format.
func ValidatePatronID(id string) error {
	if len(id) != PatronIDLength {
		return ErrInvalidPatronID
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ErrInvalidPatronID
		}
	}
	return nil
}
