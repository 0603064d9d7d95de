package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	MaxTitleLength  = 200
	MaxAuthorLength = 100
	ISBNLength      = 13
)

// Service manages catalog entries.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddBook validates and inserts a new catalog entry. All copies of a
// new book start available.
func (s *Service) AddBook(ctx context.Context, title, author, isbn string, totalCopies int) (Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if title == "" {
		return Book{}, &FieldError{Field: "title", Message: "title is required"}
	}
	if len(title) > MaxTitleLength {
		return Book{}, &FieldError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)}
	}
	if author == "" {
		return Book{}, &FieldError{Field: "author", Message: "author is required"}
	}
	if len(author) > MaxAuthorLength {
		return Book{}, &FieldError{Field: "author", Message: fmt.Sprintf("author must be at most %d characters", MaxAuthorLength)}
	}
	if !allDigits(isbn) {
		return Book{}, &FieldError{Field: "isbn", Message: "isbn must contain only digits"}
	}
	if len(isbn) != ISBNLength {
		return Book{}, &FieldError{Field: "isbn", Message: fmt.Sprintf("isbn must be exactly %d digits", ISBNLength)}
	}
	if totalCopies <= 0 {
		return Book{}, &FieldError{Field: "total_copies", Message: "total copies must be a positive integer"}
	}

	_, err := s.store.FindBookByISBN(ctx, isbn)
	switch {
	case err == nil:
		return Book{}, ErrDuplicateISBN
	case !errors.Is(err, ErrBookNotFound):
		return Book{}, fmt.Errorf("%w: lookup by isbn: %v", ErrStore, err)
	}

	b := &Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
	id, err := s.store.InsertBook(ctx, b)
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			return Book{}, ErrDuplicateISBN
		}
		return Book{}, fmt.Errorf("%w: insert book: %v", ErrStore, err)
	}
	b.ID = id
	return *b, nil
}

// GetBook returns a single catalog entry by id.
func (s *Service) GetBook(ctx context.Context, id string) (Book, error) {
	return s.store.FindBookByID(ctx, id)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
