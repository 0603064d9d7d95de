package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

const bookColumns = "id, title, author, isbn, total_copies, available_copies, created_at"

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt)
	return b, err
}

func (s *PostgresStore) FindBookByID(ctx context.Context, id string) (Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns)
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(s.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrBookNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *PostgresStore) FindBookByISBN(ctx context.Context, isbn string) (Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE isbn = $1", bookColumns)
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(s.db.QueryRow(timeoutCtx, query, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrBookNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *PostgresStore) ListBooks(ctx context.Context) ([]Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books ORDER BY created_at ASC, id ASC", bookColumns)
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertBook(ctx context.Context, b *Book) (string, error) {
	const query = `
		INSERT INTO books (title, author, isbn, total_copies, available_copies)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	var id string
	err := s.db.QueryRow(timeoutCtx, query, b.Title, b.Author, b.ISBN, b.TotalCopies, b.AvailableCopies).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateISBN
		}
		return "", err
	}
	return id, nil
}

// CreateBorrow reserves a copy and records the loan in one transaction.
// The guarded UPDATE keeps concurrent borrows from overdrawing the
// available count.
func (s *PostgresStore) CreateBorrow(ctx context.Context, rec *BorrowRecord) (string, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.Begin(timeoutCtx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(timeoutCtx)

	const reserveSQL = `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1 AND available_copies > 0`
	tag, err := tx.Exec(timeoutCtx, reserveSQL, rec.BookID)
	if err != nil {
		return "", fmt.Errorf("reserve copy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(timeoutCtx, "SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)", rec.BookID).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return "", ErrBookNotFound
		}
		return "", ErrNoCopiesAvailable
	}

	const insertSQL = `
		INSERT INTO borrow_records (patron_id, book_id, borrow_date, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id string
	err = tx.QueryRow(timeoutCtx, insertSQL, rec.PatronID, rec.BookID, rec.BorrowedAt, rec.DueAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrAlreadyBorrowed
		}
		return "", fmt.Errorf("insert borrow record: %w", err)
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return "", err
	}
	return id, nil
}

// CloseBorrow stamps the open record and releases the copy in one
// transaction. The increment is bounded by total_copies.
func (s *PostgresStore) CloseBorrow(ctx context.Context, patronID, bookID string, returnedAt time.Time) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	const closeSQL = `
		UPDATE borrow_records
		SET return_date = $3
		WHERE patron_id = $1 AND book_id = $2 AND return_date IS NULL`
	tag, err := tx.Exec(timeoutCtx, closeSQL, patronID, bookID, returnedAt)
	if err != nil {
		return fmt.Errorf("close borrow record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActiveBorrow
	}

	const releaseSQL = `
		UPDATE books
		SET available_copies = LEAST(available_copies + 1, total_copies)
		WHERE id = $1`
	if _, err := tx.Exec(timeoutCtx, releaseSQL, bookID); err != nil {
		return fmt.Errorf("release copy: %w", err)
	}

	return tx.Commit(timeoutCtx)
}

const recordColumns = "id, patron_id, book_id, borrow_date, due_date, return_date"

func scanRecord(row pgx.Row) (BorrowRecord, error) {
	var r BorrowRecord
	err := row.Scan(&r.ID, &r.PatronID, &r.BookID, &r.BorrowedAt, &r.DueAt, &r.ReturnedAt)
	return r, err
}

func (s *PostgresStore) FindOpenBorrows(ctx context.Context, patronID string) ([]BorrowRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM borrow_records
		WHERE patron_id = $1 AND return_date IS NULL
		ORDER BY borrow_date ASC`, recordColumns)
	return s.queryRecords(ctx, query, patronID)
}

func (s *PostgresStore) FindBorrowsByPatron(ctx context.Context, patronID string) ([]BorrowRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM borrow_records
		WHERE patron_id = $1
		ORDER BY borrow_date ASC`, recordColumns)
	return s.queryRecords(ctx, query, patronID)
}

func (s *PostgresStore) FindBorrow(ctx context.Context, patronID, bookID string) (BorrowRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM borrow_records
		WHERE patron_id = $1 AND book_id = $2
		ORDER BY (return_date IS NULL) DESC, borrow_date DESC
		LIMIT 1`, recordColumns)
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	r, err := scanRecord(s.db.QueryRow(timeoutCtx, query, patronID, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BorrowRecord{}, ErrBorrowRecordNotFound
		}
		return BorrowRecord{}, err
	}
	return r, nil
}

func (s *PostgresStore) queryRecords(ctx context.Context, query string, args ...any) ([]BorrowRecord, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BorrowRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
