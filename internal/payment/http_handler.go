package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"libraryapi/internal/catalog"
	"libraryapi/internal/httpx"
	"libraryapi/internal/lending"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type payFeeRequest struct {
	PatronID string `json:"patron_id" validate:"required,patronid"`
	BookID   string `json:"book_id" validate:"required"`
}

type refundRequest struct {
	TransactionID string  `json:"transaction_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
}

// PayFee handles POST /fees/pay
func (h *HTTPHandler) PayFee(w http.ResponseWriter, r *http.Request) {
	var req payFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment request", details)
		return
	}

	receipt, err := h.service.PayFee(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, receipt)
}

// RefundFee handles POST /fees/refund
func (h *HTTPHandler) RefundFee(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid refund request", details)
		return
	}

	message, err := h.service.RefundFee(r.Context(), req.TransactionID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{"message": message})
}

func writePaymentError(w http.ResponseWriter, r *http.Request, err error) {
	var declined *DeclinedError
	var gatewayErr *GatewayError
	switch {
	case errors.Is(err, lending.ErrInvalidPatronID):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_PATRON_ID", err.Error(), nil)
	case errors.Is(err, ErrInvalidRefund):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_REFUND", err.Error(), nil)
	case errors.Is(err, ErrFeeUnavailable):
		httpx.JSONError(w, r, http.StatusNotFound, "FEE_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, catalog.ErrBookNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "BOOK_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrNoFeeDue):
		httpx.JSONError(w, r, http.StatusConflict, "NO_FEE_DUE", err.Error(), nil)
	case errors.As(err, &declined):
		httpx.JSONError(w, r, http.StatusPaymentRequired, "PAYMENT_DECLINED", declined.Message, nil)
	case errors.As(err, &gatewayErr):
		httpx.JSONError(w, r, http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR", "Payment gateway unavailable", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
