package report

import (
	"errors"
	"net/http"

	"libraryapi/internal/httpx"
	"libraryapi/internal/lending"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// PatronStatus handles GET /patrons/{id}/status
func (h *HTTPHandler) PatronStatus(w http.ResponseWriter, r *http.Request) {
	patronID := r.PathValue("id")

	rep, err := h.service.PatronStatus(r.Context(), patronID)
	if err != nil {
		if errors.Is(err, lending.ErrInvalidPatronID) {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_PATRON_ID", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, rep)
}
