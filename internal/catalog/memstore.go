package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. It backs the api's demo mode and
// the service tests; a single mutex makes every multi-write operation
// atomic.
type MemoryStore struct {
	mu      sync.Mutex
	books   map[string]*Book
	order   []string
	records []*BorrowRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[string]*Book)}
}

func (m *MemoryStore) FindBookByID(_ context.Context, id string) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	return *b, nil
}

func (m *MemoryStore) FindBookByISBN(_ context.Context, isbn string) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.ISBN == isbn {
			return *b, nil
		}
	}
	return Book{}, ErrBookNotFound
}

func (m *MemoryStore) ListBooks(_ context.Context) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Book, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.books[id])
	}
	return out, nil
}

func (m *MemoryStore) InsertBook(_ context.Context, b *Book) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.books {
		if existing.ISBN == b.ISBN {
			return "", ErrDuplicateISBN
		}
	}
	stored := *b
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.books[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	return stored.ID, nil
}

func (m *MemoryStore) CreateBorrow(_ context.Context, rec *BorrowRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[rec.BookID]
	if !ok {
		return "", ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return "", ErrNoCopiesAvailable
	}
	for _, r := range m.records {
		if r.PatronID == rec.PatronID && r.BookID == rec.BookID && r.Open() {
			return "", ErrAlreadyBorrowed
		}
	}
	stored := *rec
	stored.ID = uuid.NewString()
	b.AvailableCopies--
	m.records = append(m.records, &stored)
	return stored.ID, nil
}

func (m *MemoryStore) CloseBorrow(_ context.Context, patronID, bookID string, returnedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.PatronID == patronID && r.BookID == bookID && r.Open() {
			t := returnedAt
			r.ReturnedAt = &t
			if b, ok := m.books[bookID]; ok && b.AvailableCopies < b.TotalCopies {
				b.AvailableCopies++
			}
			return nil
		}
	}
	return ErrNoActiveBorrow
}

func (m *MemoryStore) FindOpenBorrows(_ context.Context, patronID string) ([]BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []BorrowRecord
	for _, r := range m.records {
		if r.PatronID == patronID && r.Open() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindBorrowsByPatron(_ context.Context, patronID string) ([]BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []BorrowRecord
	for _, r := range m.records {
		if r.PatronID == patronID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindBorrow(_ context.Context, patronID, bookID string) (BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *BorrowRecord
	for _, r := range m.records {
		if r.PatronID != patronID || r.BookID != bookID {
			continue
		}
		if r.Open() {
			return *r, nil
		}
		if latest == nil || r.BorrowedAt.After(latest.BorrowedAt) {
			latest = r
		}
	}
	if latest == nil {
		return BorrowRecord{}, ErrBorrowRecordNotFound
	}
	return *latest, nil
}

// SeedDemo loads a handful of books so demo mode starts non-empty.
func (m *MemoryStore) SeedDemo(ctx context.Context) {
	demo := []Book{
		{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", TotalCopies: 3, AvailableCopies: 3},
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", ISBN: "9780441478125", TotalCopies: 2, AvailableCopies: 2},
		{Title: "Neuromancer", Author: "William Gibson", ISBN: "9780441569595", TotalCopies: 1, AvailableCopies: 1},
	}
	for i := range demo {
		_, _ = m.InsertBook(ctx, &demo[i])
	}
}
