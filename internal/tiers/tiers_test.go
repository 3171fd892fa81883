package tiers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiplierFor(t *testing.T) {
	table := DefaultBalanceTiers()

	tests := []struct {
		name  string
		value uint64
		want  uint32
	}{
		{"zero balance", 0, 12000},
		{"below second tier", 999, 12000},
		{"at second tier", 1000, 11000},
		{"between tiers", 5000, 11000},
		{"at third tier", 10000, 10000},
		{"whale", 100000, 9000},
		{"above top tier", 5000000, 9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.MultiplierFor(tt.value))
		})
	}
}

func TestMultiplierForHoldingDurations(t *testing.T) {
	table := DefaultHoldingTiers()

	day := uint64(24 * time.Hour)

	assert.Equal(t, uint32(10000), table.MultiplierFor(0))
	assert.Equal(t, uint32(10000), table.MultiplierFor(29*day))
	assert.Equal(t, uint32(12500), table.MultiplierFor(30*day))
	assert.Equal(t, uint32(15000), table.MultiplierFor(90*day))
	assert.Equal(t, uint32(17500), table.MultiplierFor(180*day))
	assert.Equal(t, uint32(20000), table.MultiplierFor(365*day))
	assert.Equal(t, uint32(20000), table.MultiplierFor(1000*day))
}

func TestMultiplierForEmptyTable(t *testing.T) {
	var table Table
	assert.Equal(t, uint32(Basis), table.MultiplierFor(500))
}

func TestSetReplace(t *testing.T) {
	table := DefaultBalanceTiers()

	updated, err := table.Set(1, 2000, 10500)
	require.NoError(t, err)

	assert.Equal(t, Tier{Threshold: 2000, MultiplierBps: 10500}, updated[1])
	assert.Len(t, updated, len(table))

	// Original table is unchanged.
	assert.Equal(t, Tier{Threshold: 1000, MultiplierBps: 11000}, table[1])
}

func TestSetAppend(t *testing.T) {
	table := DefaultBalanceTiers()

	updated, err := table.Set(len(table), 1000000, 8000)
	require.NoError(t, err)
	assert.Len(t, updated, len(table)+1)
	assert.Equal(t, uint32(8000), updated.MultiplierFor(1000000))
}

func TestSetRejectsZeroMultiplier(t *testing.T) {
	table := DefaultBalanceTiers()

	_, err := table.Set(0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidTierConfig)
}

func TestSetRejectsBadIndex(t *testing.T) {
	table := DefaultBalanceTiers()

	_, err := table.Set(-1, 0, 10000)
	assert.ErrorIs(t, err, ErrInvalidTierConfig)

	_, err = table.Set(len(table)+1, 0, 10000)
	assert.ErrorIs(t, err, ErrInvalidTierConfig)
}

func TestSetRejectsGrowthBeyondCapacity(t *testing.T) {
	var table Table
	var err error

	for i := 0; i < MaxTiers; i++ {
		table, err = table.Set(i, uint64(i), 10000)
		require.NoError(t, err)
	}

	_, err = table.Set(MaxTiers, uint64(MaxTiers), 10000)
	assert.ErrorIs(t, err, ErrTooManyTiers)
}

func TestCompose(t *testing.T) {
	// 2.0x holding with 1.2x balance composes to 2.4x.
	assert.Equal(t, uint32(24000), Compose(20000, 12000))

	// 1.0x with 1.0x is identity.
	assert.Equal(t, uint32(10000), Compose(10000, 10000))

	// Truncation rounds down: 10500 * 9999 / 10000 = 10498.95.
	assert.Equal(t, uint32(10498), Compose(10500, 9999))
}
