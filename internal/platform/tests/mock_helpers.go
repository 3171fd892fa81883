package tests

import (
	"context"

	"github.com/pkg/errors"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

// Payment records a single settlement payout made through the MockPayer.
type Payment struct {
	Recipient state.Account
	Amount    uint64
}

// MockPayer is a settlement transfer primitive for tests. It records every
// payment and can be told to fail, or to call back into the ledger mid
// payout to exercise re-entrancy handling.
type MockPayer struct {
	Payments []Payment

	// FailNext makes the next Pay call fail without recording a payment.
	FailNext bool

	// Callback, when set, runs during Pay before the payment is recorded.
	// Its error, if any, is returned as the payment failure.
	Callback func(ctx context.Context) error
}

func NewMockPayer() *MockPayer {
	return &MockPayer{}
}

func (mp *MockPayer) Pay(ctx context.Context, recipient state.Account, amount uint64) error {
	if mp.FailNext {
		mp.FailNext = false
		return errors.New("Payment rejected")
	}

	if mp.Callback != nil {
		if err := mp.Callback(ctx); err != nil {
			return err
		}
	}

	mp.Payments = append(mp.Payments, Payment{Recipient: recipient, Amount: amount})
	return nil
}

// TotalPaid sums all recorded payments.
func (mp *MockPayer) TotalPaid() uint64 {
	var result uint64
	for _, payment := range mp.Payments {
		result += payment.Amount
	}
	return result
}

// Reset clears recorded payments and failure state.
func (mp *MockPayer) Reset() {
	mp.Payments = nil
	mp.FailNext = false
	mp.Callback = nil
}
