package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"libraryapi/internal/catalog"
	"libraryapi/internal/lending"
)

// Service settles late fees through the injected gateway.
type Service struct {
	store   catalog.Store
	gateway Gateway
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store catalog.Store, gateway Gateway, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		log:     log,
		now:     time.Now,
	}
}

// Receipt reports a settled fee payment.
type Receipt struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
}

// PayFee charges the patron's outstanding late fee on a book. The
// gateway is invoked exactly once; a decline surfaces its message and a
// fault is wrapped, never retried here.
func (s *Service) PayFee(ctx context.Context, patronID, bookID string) (Receipt, error) {
	if err := lending.ValidatePatronID(patronID); err != nil {
		return Receipt{}, err
	}

	rec, err := s.store.FindBorrow(ctx, patronID, bookID)
	if err != nil {
		if errors.Is(err, catalog.ErrBorrowRecordNotFound) {
			return Receipt{}, ErrFeeUnavailable
		}
		return Receipt{}, fmt.Errorf("%w: find borrow record: %v", catalog.ErrStore, err)
	}

	fee := lending.ComputeFee(rec, s.now())
	if !fee.Amount.IsPositive() {
		return Receipt{}, ErrNoFeeDue
	}

	book, err := s.store.FindBookByID(ctx, bookID)
	if err != nil {
		return Receipt{}, err
	}

	description := fmt.Sprintf("Late fees for '%s'", book.Title)
	res, err := s.gateway.ProcessPayment(ctx, patronID, fee.Amount, description)
	if err != nil {
		return Receipt{}, &GatewayError{Err: err}
	}
	if !res.Approved {
		return Receipt{}, &DeclinedError{Message: res.Message}
	}

	s.log.Info("late fee paid",
		zap.String("patron_id", patronID),
		zap.String("book_id", bookID),
		zap.String("transaction_id", res.TransactionID),
		zap.String("amount", fee.Amount.StringFixed(2)),
	)

	return Receipt{
		TransactionID: res.TransactionID,
		Amount:        fee.Amount,
		Message:       res.Message,
	}, nil
}

// RefundFee reverses an earlier fee payment. The amount must be within
// (0, MaxFeePerBook] and the transaction id must carry the gateway
// prefix.
func (s *Service) RefundFee(ctx context.Context, transactionID string, amount decimal.Decimal) (string, error) {
	if !strings.HasPrefix(transactionID, TransactionIDPrefix) {
		return "", fmt.Errorf("%w: transaction id must start with %q", ErrInvalidRefund, TransactionIDPrefix)
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be greater than 0", ErrInvalidRefund)
	}
	if amount.GreaterThan(lending.MaxFeePerBook) {
		return "", fmt.Errorf("%w: amount exceeds maximum late fee", ErrInvalidRefund)
	}

	res, err := s.gateway.RefundPayment(ctx, transactionID, amount)
	if err != nil {
		return "", &GatewayError{Err: err}
	}
	if !res.Approved {
		return "", &DeclinedError{Message: res.Message}
	}

	s.log.Info("late fee refunded",
		zap.String("transaction_id", transactionID),
		zap.String("amount", amount.StringFixed(2)),
	)

	return res.Message, nil
}
