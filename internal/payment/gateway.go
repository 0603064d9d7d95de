package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransactionIDPrefix marks every gateway transaction identifier.
const TransactionIDPrefix = "txn_"

// Result is the gateway's answer to a charge or refund attempt. A
// declined attempt is a Result with Approved false, not an error;
// errors are reserved for transport faults.
type Result struct {
	Approved      bool
	TransactionID string
	Message       string
}

// Gateway is the external payment capability. Implementations may talk
// to a real processor; tests substitute a double.
type Gateway interface {
	ProcessPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (Result, error)
	RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal) (Result, error)
}
