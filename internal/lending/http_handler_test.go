package lending

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libraryapi/internal/catalog"
	"libraryapi/internal/httpx"
)

func newHandlerFixture(t *testing.T) (*http.ServeMux, *catalog.MemoryStore) {
	t.Helper()
	store := catalog.NewMemoryStore()
	h := NewHTTPHandler(NewService(store, zap.NewNop()))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /loans", h.Borrow)
	mux.HandleFunc("POST /returns", h.Return)
	return mux, store
}

func loanBody(patronID, bookID string) *strings.Reader {
	return strings.NewReader(fmt.Sprintf(`{"patron_id":%q,"book_id":%q}`, patronID, bookID))
}

func TestHTTPHandler_Borrow(t *testing.T) {
	t.Run("created with due date", func(t *testing.T) {
		mux, store := newHandlerFixture(t)
		id, err := store.InsertBook(context.Background(), &catalog.Book{
			Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593",
			TotalCopies: 1, AvailableCopies: 1,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", loanBody("123456", id)))

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data BorrowConfirmation `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.Data.BookID)
		assert.False(t, resp.Data.DueAt.IsZero())
	})

	t.Run("malformed patron id rejected at the boundary", func(t *testing.T) {
		mux, _ := newHandlerFixture(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", loanBody("12345", "book-1")))

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		mux, _ := newHandlerFixture(t)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", loanBody("123456", "no-such-book")))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "BOOK_NOT_FOUND", resp.Error.Code)
	})

	t.Run("no copies left conflicts", func(t *testing.T) {
		mux, store := newHandlerFixture(t)
		id, err := store.InsertBook(context.Background(), &catalog.Book{
			Title: "Ubik", Author: "Philip K. Dick", ISBN: "9780547572291",
			TotalCopies: 1, AvailableCopies: 1,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", loanBody("111111", id)))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", loanBody("222222", id)))
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "NO_COPIES_AVAILABLE", resp.Error.Code)
	})
}

func TestHTTPHandler_Return(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mux, store := newHandlerFixture(t)
		id, err := store.InsertBook(context.Background(), &catalog.Book{
			Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593",
			TotalCopies: 1, AvailableCopies: 1,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", loanBody("123456", id)))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/returns", loanBody("123456", id)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("nothing to return conflicts", func(t *testing.T) {
		mux, store := newHandlerFixture(t)
		id, err := store.InsertBook(context.Background(), &catalog.Book{
			Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593",
			TotalCopies: 1, AvailableCopies: 1,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/returns", loanBody("123456", id)))
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "NO_ACTIVE_BORROW", resp.Error.Code)
	})
}
