package weights

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/tiers"
)

func testLedger(t *testing.T) *state.Ledger {
	t.Helper()
	return state.NewLedger(state.NewTimestamp(time.Unix(1000, 0)))
}

func holdingAt(start time.Time, balance uint64) *state.Holding {
	h := state.NewHolding(state.Account{1}, state.NewTimestamp(start))
	h.Balance = balance
	h.FirstHeldAt = state.NewTimestamp(start)
	h.StreakStartedAt = state.NewTimestamp(start)
	return h
}

func TestEffectiveMultiplier(t *testing.T) {
	l := testLedger(t)
	start := time.Unix(1000, 0)

	tests := []struct {
		name    string
		balance uint64
		held    time.Duration
		want    uint32
	}{
		{"new small holder", 500, 0, 12000},               // 1.0 hold x 1.2 balance
		{"30 day small holder", 500, 30 * 24 * time.Hour, 15000}, // 1.25 x 1.2
		{"year long mid holder", 5000, 365 * 24 * time.Hour, 22000}, // 2.0 x 1.1
		{"whale at par hold", 200000, 0, 9000},            // 1.0 x 0.9
		{"whale at max hold", 200000, 400 * 24 * time.Hour, 18000}, // 2.0 x 0.9
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := holdingAt(start, tt.balance)
			now := state.NewTimestamp(start.Add(tt.held))
			assert.Equal(t, tt.want, EffectiveMultiplier(l, h, now))
		})
	}
}

func TestApplyMultiplier(t *testing.T) {
	assert.Equal(t, uint64(0), ApplyMultiplier(0, 15000))
	assert.Equal(t, uint64(1500), ApplyMultiplier(1000, 15000))
	assert.Equal(t, uint64(1124), ApplyMultiplier(999, 11250)) // floor of 1123.875

	// Large balances use the full 128 bit intermediate product.
	big := uint64(math.MaxUint64 / 2)
	assert.Equal(t, big, ApplyMultiplier(big, tiers.Basis))

	// Products that exceed 64 bits saturate instead of wrapping.
	assert.Equal(t, uint64(math.MaxUint64), ApplyMultiplier(math.MaxUint64, 20000))
}

func TestWeightedShareZeroBalance(t *testing.T) {
	l := testLedger(t)
	h := holdingAt(time.Unix(1000, 0), 0)
	now := state.NewTimestamp(time.Unix(2000, 0))
	assert.Equal(t, uint64(0), WeightedShare(l, h, now))
}

func TestRefresh(t *testing.T) {
	l := testLedger(t)
	start := time.Unix(1000, 0)
	h := holdingAt(start, 500)
	now := state.NewTimestamp(start)

	changed := Refresh(l, h, now)
	assert.True(t, changed)
	assert.Equal(t, uint64(600), h.WeightedShare) // 500 * 1.2
	assert.Equal(t, uint64(600), l.TotalWeightedShares)

	// No-op refresh leaves the total alone.
	changed = Refresh(l, h, now)
	assert.False(t, changed)
	assert.Equal(t, uint64(600), l.TotalWeightedShares)

	// Crossing a holding tier boundary bumps both cache and total.
	later := state.NewTimestamp(start.Add(30 * 24 * time.Hour))
	changed = Refresh(l, h, later)
	assert.True(t, changed)
	assert.Equal(t, uint64(750), h.WeightedShare) // 500 * 1.25 * 1.2
	assert.Equal(t, uint64(750), l.TotalWeightedShares)

	// Balance going to zero drops the share from the total.
	h.Balance = 0
	changed = Refresh(l, h, later)
	assert.True(t, changed)
	assert.Equal(t, uint64(0), h.WeightedShare)
	assert.Equal(t, uint64(0), l.TotalWeightedShares)
}
