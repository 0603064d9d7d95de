package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrFeeUnavailable is returned when no borrow record exists to
	// compute a fee from.
	ErrFeeUnavailable = errors.New("unable to determine late fees for this book")

	// ErrNoFeeDue is returned when the computed fee is zero.
	ErrNoFeeDue = errors.New("no late fees to pay for this book")

	// ErrInvalidRefund is returned for a malformed refund request.
	ErrInvalidRefund = errors.New("invalid refund request")
)

// DeclinedError carries the gateway's own decline message.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return "payment declined: " + e.Message
}

// GatewayError wraps a transport-level gateway fault. The settlement
// path makes a single attempt; retry policy belongs to the caller.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
