package lending

import (
	"encoding/json"
	"errors"
	"net/http"

	"libraryapi/internal/catalog"
	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type loanRequest struct {
	PatronID string `json:"patron_id" validate:"required,patronid"`
	BookID   string `json:"book_id" validate:"required"`
}

// Borrow handles POST /loans
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLoanRequest(w, r)
	if !ok {
		return
	}

	conf, err := h.service.Borrow(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		writeLendingError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, conf)
}

// Return handles POST /returns
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLoanRequest(w, r)
	if !ok {
		return
	}

	conf, err := h.service.Return(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		writeLendingError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, conf)
}

func decodeLoanRequest(w http.ResponseWriter, r *http.Request) (loanRequest, bool) {
	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return req, false
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid loan request", details)
		return req, false
	}
	return req, true
}

func writeLendingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidPatronID):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_PATRON_ID", err.Error(), nil)
	case errors.Is(err, catalog.ErrBookNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "BOOK_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, catalog.ErrNoCopiesAvailable):
		httpx.JSONError(w, r, http.StatusConflict, "NO_COPIES_AVAILABLE", err.Error(), nil)
	case errors.Is(err, ErrBorrowLimitExceeded):
		httpx.JSONError(w, r, http.StatusConflict, "BORROW_LIMIT_EXCEEDED", err.Error(), nil)
	case errors.Is(err, catalog.ErrAlreadyBorrowed):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_BORROWED", err.Error(), nil)
	case errors.Is(err, catalog.ErrNoActiveBorrow):
		httpx.JSONError(w, r, http.StatusConflict, "NO_ACTIVE_BORROW", err.Error(), nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
