package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libraryapi/internal/catalog"
	"libraryapi/internal/lending"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ProcessPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (Result, error) {
	args := m.Called(ctx, patronID, amount, description)
	return args.Get(0).(Result), args.Error(1)
}

func (m *mockGateway) RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal) (Result, error) {
	args := m.Called(ctx, transactionID, amount)
	return args.Get(0).(Result), args.Error(1)
}

// seedOverdueLoan creates a book and an open loan that is ten days
// overdue as of the returned clock value (fee 6.50).
func seedOverdueLoan(t *testing.T, store *catalog.MemoryStore, patronID string) (string, time.Time) {
	t.Helper()
	ctx := context.Background()

	bookID, err := store.InsertBook(ctx, &catalog.Book{
		Title:           "Dune",
		Author:          "Frank Herbert",
		ISBN:            "1111111111111",
		TotalCopies:     1,
		AvailableCopies: 1,
	})
	require.NoError(t, err)

	due := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	_, err = store.CreateBorrow(ctx, &catalog.BorrowRecord{
		PatronID:   patronID,
		BookID:     bookID,
		BorrowedAt: due.AddDate(0, 0, -lending.LoanPeriodDays),
		DueAt:      due,
	})
	require.NoError(t, err)

	return bookID, due.AddDate(0, 0, 10)
}

func TestService_PayFee(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		gateway := new(mockGateway)
		svc := NewService(store, gateway, zap.NewNop())

		bookID, asOf := seedOverdueLoan(t, store, "127456")
		svc.now = func() time.Time { return asOf }

		wantAmount := decimal.RequireFromString("6.5")
		gateway.On("ProcessPayment", ctx, "127456", mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(wantAmount)
		}), "Late fees for 'Dune'").Return(Result{
			Approved:      true,
			TransactionID: "txn_121",
			Message:       "Success",
		}, nil).Once()

		receipt, err := svc.PayFee(ctx, "127456", bookID)
		require.NoError(t, err)
		assert.Equal(t, "txn_121", receipt.TransactionID)
		assert.Equal(t, "6.50", receipt.Amount.StringFixed(2))

		gateway.AssertExpectations(t)
	})

	t.Run("invalid patron id never reaches the gateway", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		gateway := new(mockGateway)
		svc := NewService(store, gateway, zap.NewNop())

		_, err := svc.PayFee(ctx, "b^&3*", "book-1")
		assert.ErrorIs(t, err, lending.ErrInvalidPatronID)
		gateway.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no record means fee unavailable", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		gateway := new(mockGateway)
		svc := NewService(store, gateway, zap.NewNop())

		_, err := svc.PayFee(ctx, "127456", "book-1")
		assert.ErrorIs(t, err, ErrFeeUnavailable)
		gateway.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero fee never reaches the gateway", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		gateway := new(mockGateway)
		svc := NewService(store, gateway, zap.NewNop())

		bookID, _ := seedOverdueLoan(t, store, "222256")
		// Assess while the loan is still within the period.
		svc.now = func() time.Time { return time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC) }

		_, err := svc.PayFee(ctx, "222256", bookID)
		assert.ErrorIs(t, err, ErrNoFeeDue)
		gateway.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("decline surfaces the gateway message", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		gateway := new(mockGateway)
		svc := NewService(store, gateway, zap.NewNop())

		bookID, asOf := seedOverdueLoan(t, store, "123457")
		svc.now = func() time.Time { return asOf }

		gateway.On("ProcessPayment", ctx, "123457", mock.Anything, mock.Anything).
			Return(Result{Approved: false, Message: "Insufficient funds"}, nil).Once()

		_, err := svc.PayFee(ctx, "123457", bookID)
		var declined *DeclinedError
		require.ErrorAs(t, err, &declined)
		assert.Equal(t, "Insufficient funds", declined.Message)
	})

	t.Run("gateway fault is wrapped and not retried", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		gateway := new(mockGateway)
		svc := NewService(store, gateway, zap.NewNop())

		bookID, asOf := seedOverdueLoan(t, store, "444449")
		svc.now = func() time.Time { return asOf }

		cause := errors.New("network down")
		gateway.On("ProcessPayment", ctx, "444449", mock.Anything, mock.Anything).
			Return(Result{}, cause).Once()

		_, err := svc.PayFee(ctx, "444449", bookID)
		var gwErr *GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.ErrorIs(t, gwErr.Err, cause)

		gateway.AssertNumberOfCalls(t, "ProcessPayment", 1)
	})
}

func TestService_RefundFee(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		gateway := new(mockGateway)
		svc := NewService(catalog.NewMemoryStore(), gateway, zap.NewNop())

		amount := decimal.RequireFromString("2")
		gateway.On("RefundPayment", ctx, "txn_003", mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(amount)
		})).Return(Result{Approved: true, Message: "Refund processed"}, nil).Once()

		msg, err := svc.RefundFee(ctx, "txn_003", amount)
		require.NoError(t, err)
		assert.Equal(t, "Refund processed", msg)
		gateway.AssertExpectations(t)
	})

	t.Run("invalid requests never reach the gateway", func(t *testing.T) {
		gateway := new(mockGateway)
		svc := NewService(catalog.NewMemoryStore(), gateway, zap.NewNop())

		cases := []struct {
			name   string
			txnID  string
			amount string
		}{
			{"bad prefix", "_txn", "15"},
			{"negative amount", "txn_387", "-4"},
			{"zero amount", "txn_905", "0"},
			{"above maximum fee", "txn_420", "60"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.RefundFee(ctx, tc.txnID, decimal.RequireFromString(tc.amount))
				assert.ErrorIs(t, err, ErrInvalidRefund)
			})
		}

		gateway.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("maximum fee is refundable", func(t *testing.T) {
		gateway := new(mockGateway)
		svc := NewService(catalog.NewMemoryStore(), gateway, zap.NewNop())

		gateway.On("RefundPayment", ctx, "txn_900", mock.Anything).
			Return(Result{Approved: true, Message: "ok"}, nil).Once()

		_, err := svc.RefundFee(ctx, "txn_900", lending.MaxFeePerBook)
		assert.NoError(t, err)
	})

	t.Run("gateway fault is wrapped", func(t *testing.T) {
		gateway := new(mockGateway)
		svc := NewService(catalog.NewMemoryStore(), gateway, zap.NewNop())

		gateway.On("RefundPayment", ctx, "txn_77", mock.Anything).
			Return(Result{}, errors.New("timeout")).Once()

		_, err := svc.RefundFee(ctx, "txn_77", decimal.RequireFromString("3"))
		var gwErr *GatewayError
		assert.ErrorAs(t, err, &gwErr)
	})
}
