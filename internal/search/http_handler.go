package search

import (
	"errors"
	"net/http"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Search handles GET /books?term=&type=
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	term := query.Get("term")
	searchType := query.Get("type")

	books, err := h.service.Search(r.Context(), term, searchType)
	if err != nil {
		if errors.Is(err, ErrInvalidSearchType) {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_SEARCH_TYPE", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, books)
}
