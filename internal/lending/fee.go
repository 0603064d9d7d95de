package lending

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"libraryapi/internal/catalog"
)

// Late-fee tariff: the first FeeTierDays overdue days are charged at
// TierOneDailyFee per day, every later day at TierTwoDailyFee, and the
// total never exceeds MaxFeePerBook.
const FeeTierDays = 7

var (
	TierOneDailyFee = decimal.NewFromFloat(0.50)
	TierTwoDailyFee = decimal.NewFromFloat(1.00)
	MaxFeePerBook   = decimal.NewFromFloat(15.00)
)

// StatusOnTime is the fee status for a loan with no overdue days.
const StatusOnTime = "Returned on time"

// FeeAssessment is the derived fee for one borrow record. It is never
// persisted.
type FeeAssessment struct {
	Amount      decimal.Decimal `json:"amount"`
	DaysOverdue int             `json:"days_overdue"`
	Status      string          `json:"status"`
}

// ComputeFee derives the late fee for a record as of the given moment.
// For an open loan the fee accrues against asOf; for a closed loan it is
// fixed at the return date. Pure: no store access, no side effects.
func ComputeFee(rec catalog.BorrowRecord, asOf time.Time) FeeAssessment {
	end := asOf
	if rec.ReturnedAt != nil && rec.ReturnedAt.Before(asOf) {
		end = *rec.ReturnedAt
	}

	daysOverdue := int(end.Sub(rec.DueAt).Hours() / 24)
	if daysOverdue < 0 {
		daysOverdue = 0
	}

	var amount decimal.Decimal
	if daysOverdue <= FeeTierDays {
		amount = TierOneDailyFee.Mul(decimal.NewFromInt(int64(daysOverdue)))
	} else {
		amount = TierOneDailyFee.Mul(decimal.NewFromInt(FeeTierDays)).
			Add(TierTwoDailyFee.Mul(decimal.NewFromInt(int64(daysOverdue - FeeTierDays))))
	}
	if amount.GreaterThan(MaxFeePerBook) {
		amount = MaxFeePerBook
	}

	status := StatusOnTime
	if daysOverdue > 0 {
		status = fmt.Sprintf("%d days overdue", daysOverdue)
	}

	return FeeAssessment{
		Amount:      amount,
		DaysOverdue: daysOverdue,
		Status:      status,
	}
}
