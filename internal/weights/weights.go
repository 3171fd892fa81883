// Package weights derives an account's weighted share from its balance, its
// holding duration, and the tier ladders, and keeps the per-account cache
// and the ledger wide total consistent.
package weights

import (
	"math"
	"math/bits"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/holdings"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/tiers"
)

// EffectiveMultiplier combines the holding duration multiplier and the
// balance multiplier for an account:
// floor(holdBps * balBps / Basis).
func EffectiveMultiplier(l *state.Ledger, h *state.Holding, now state.Timestamp) uint32 {
	holdBps := l.HoldingTiers.MultiplierFor(uint64(holdings.Duration(h, now)))
	balBps := l.BalanceTiers.MultiplierFor(h.Balance)
	return tiers.Compose(holdBps, balBps)
}

// WeightedShare computes the account's current weighted share:
// floor(balance * effectiveMultiplier / Basis). Zero when the balance is
// zero.
func WeightedShare(l *state.Ledger, h *state.Holding, now state.Timestamp) uint64 {
	if h.Balance == 0 {
		return 0
	}

	return ApplyMultiplier(h.Balance, EffectiveMultiplier(l, h, now))
}

// ApplyMultiplier scales an amount by a basis point multiplier with full
// width intermediate math. Saturates at MaxUint64 rather than silently
// wrapping.
func ApplyMultiplier(amount uint64, multiplierBps uint32) uint64 {
	hi, lo := bits.Mul64(amount, uint64(multiplierBps))
	if hi >= tiers.Basis {
		return math.MaxUint64
	}

	result, _ := bits.Div64(hi, lo, tiers.Basis)
	return result
}

// Refresh recomputes the account's weighted share and reconciles the cache
// and the ledger total. This is the only way TotalWeightedShares changes.
// Returns true when the cached value changed.
//
// Refresh must run on every balance change, and may additionally be run at
// any time to pull forward a stale cache caused purely by time passing over
// a tier boundary.
func Refresh(l *state.Ledger, h *state.Holding, now state.Timestamp) bool {
	current := WeightedShare(l, h, now)
	if current == h.WeightedShare {
		return false
	}

	l.TotalWeightedShares = l.TotalWeightedShares - h.WeightedShare + current
	h.WeightedShare = current
	h.UpdatedAt = now
	l.UpdatedAt = now
	return true
}
