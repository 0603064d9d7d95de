package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"libraryapi/internal/catalog"
)

const (
	TypeISBN   = "isbn"
	TypeTitle  = "title"
	TypeAuthor = "author"
)

// ErrInvalidSearchType is returned for a search type outside
// isbn/title/author.
var ErrInvalidSearchType = errors.New("invalid search type: must be isbn, title, or author")

// Service is a read-only filter over the catalog.
type Service struct {
	store catalog.Store
}

func NewService(store catalog.Store) *Service {
	return &Service{store: store}
}

// Search matches books by exact ISBN or case-insensitive title/author
// substring, preserving catalog order. An empty term or type yields an
// empty result set.
func (s *Service) Search(ctx context.Context, term, searchType string) ([]catalog.Book, error) {
	if term == "" || searchType == "" {
		return []catalog.Book{}, nil
	}

	switch searchType {
	case TypeISBN:
		b, err := s.store.FindBookByISBN(ctx, term)
		if err != nil {
			if errors.Is(err, catalog.ErrBookNotFound) {
				return []catalog.Book{}, nil
			}
			return nil, fmt.Errorf("%w: lookup by isbn: %v", catalog.ErrStore, err)
		}
		return []catalog.Book{b}, nil

	case TypeTitle, TypeAuthor:
		books, err := s.store.ListBooks(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list books: %v", catalog.ErrStore, err)
		}
		needle := strings.ToLower(term)
		out := []catalog.Book{}
		for _, b := range books {
			haystack := b.Title
			if searchType == TypeAuthor {
				haystack = b.Author
			}
			if strings.Contains(strings.ToLower(haystack), needle) {
				out = append(out, b)
			}
		}
		return out, nil

	default:
		return nil, ErrInvalidSearchType
	}
}
