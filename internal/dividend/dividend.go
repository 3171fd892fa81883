// Package dividend implements the magnified per share dividend accumulator
// and the per account signed corrections that keep entitlements stable
// across weighted share changes.
//
// Distributions credit the ledger's MagnifiedDividendPerShare by
// floor(amount * magnitude / totalWeightedShares). An account's accumulated
// dividend is floor((magnifiedDividendPerShare * weightedShare + correction)
// / magnitude). The magnitude is large enough that the rounding loss per
// distribution is at most totalWeightedShares / magnitude of a unit.
package dividend

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

var (
	// ErrNoShares occurs when a distribution arrives while no account holds
	// any weighted share. The funds have no one to accrue to.
	ErrNoShares = errors.New("No weighted shares outstanding")

	// ErrNothingToClaim occurs when a withdrawal is requested for an account
	// with no withdrawable dividend.
	ErrNothingToClaim = errors.New("Nothing to claim")
)

// magnitude is the fixed point scale of the accumulator, 2^128.
var magnitude = new(big.Int).Lsh(big.NewInt(1), 128)

// Distribute credits amount across all weighted shares by advancing the
// magnified per share accumulator. It requires outstanding weighted shares
// even for a zero amount, which is otherwise a no-op.
func Distribute(l *state.Ledger, amount uint64, now state.Timestamp) error {
	if l.TotalWeightedShares == 0 {
		return ErrNoShares
	}
	if amount == 0 {
		return nil
	}

	credit := new(big.Int).SetUint64(amount)
	credit.Mul(credit, magnitude)
	credit.Quo(credit, new(big.Int).SetUint64(l.TotalWeightedShares))

	l.MagnifiedDividendPerShare.Add(l.MagnifiedDividendPerShare, credit)
	l.TotalDistributed += amount
	l.UpdatedAt = now
	return nil
}

// Accumulated returns the account's lifetime dividend entitlement,
// including any amount already withdrawn. A negative raw value, possible
// transiently from correction ordering, reads as zero.
func Accumulated(l *state.Ledger, h *state.Holding) uint64 {
	raw := new(big.Int).SetUint64(h.WeightedShare)
	raw.Mul(raw, l.MagnifiedDividendPerShare)
	raw.Add(raw, h.Correction)
	if raw.Sign() < 0 {
		return 0
	}

	raw.Quo(raw, magnitude)
	if !raw.IsUint64() {
		return ^uint64(0)
	}
	return raw.Uint64()
}

// Withdrawable returns the portion of the accumulated dividend not yet
// paid out.
func Withdrawable(l *state.Ledger, h *state.Holding) uint64 {
	accumulated := Accumulated(l, h)
	if h.Withdrawn >= accumulated {
		return 0
	}
	return accumulated - h.Withdrawn
}

// CorrectOutgoing adjusts the correction of an account whose weighted share
// is about to drop by weightedDelta, preserving its accumulated dividend.
func CorrectOutgoing(l *state.Ledger, h *state.Holding, weightedDelta uint64, now state.Timestamp) {
	h.Correction.Add(h.Correction, correctionTerm(l, weightedDelta))
	h.UpdatedAt = now
}

// CorrectIncoming adjusts the correction of an account whose weighted share
// is about to grow by weightedDelta, so the new share does not claim
// dividends distributed before it existed.
func CorrectIncoming(l *state.Ledger, h *state.Holding, weightedDelta uint64, now state.Timestamp) {
	h.Correction.Sub(h.Correction, correctionTerm(l, weightedDelta))
	h.UpdatedAt = now
}

func correctionTerm(l *state.Ledger, weightedDelta uint64) *big.Int {
	term := new(big.Int).SetUint64(weightedDelta)
	return term.Mul(term, l.MagnifiedDividendPerShare)
}

// MarkWithdrawn records a successful payout against the account.
func MarkWithdrawn(h *state.Holding, amount uint64, now state.Timestamp) {
	h.Withdrawn += amount
	h.UpdatedAt = now
}
