package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Simulator is an in-process Gateway for local runs and demos. It
// approves any well-formed request deterministically; nothing leaves
// the process.
type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

func (s *Simulator) ProcessPayment(_ context.Context, patronID string, amount decimal.Decimal, _ string) (Result, error) {
	if patronID == "" {
		return Result{Message: "missing patron id"}, nil
	}
	if !amount.IsPositive() {
		return Result{Message: "amount must be greater than zero"}, nil
	}
	return Result{
		Approved:      true,
		TransactionID: TransactionIDPrefix + uuid.NewString()[:8],
		Message:       "Payment processed successfully",
	}, nil
}

func (s *Simulator) RefundPayment(_ context.Context, transactionID string, amount decimal.Decimal) (Result, error) {
	if transactionID == "" || !amount.IsPositive() {
		return Result{Message: "invalid refund request"}, nil
	}
	return Result{
		Approved:      true,
		TransactionID: transactionID,
		Message:       "Refund processed successfully",
	}, nil
}
