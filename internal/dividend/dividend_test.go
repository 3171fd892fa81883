package dividend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

func testTime(offset time.Duration) state.Timestamp {
	return state.NewTimestamp(time.Unix(1000, 0).Add(offset))
}

func testHolding(seed byte, weightedShare uint64) *state.Holding {
	h := state.NewHolding(state.Account{seed}, testTime(0))
	h.WeightedShare = weightedShare
	return h
}

func TestDistributeNoShares(t *testing.T) {
	l := state.NewLedger(testTime(0))
	err := Distribute(l, 1000, testTime(0))
	assert.ErrorIs(t, err, ErrNoShares)
	assert.Equal(t, uint64(0), l.TotalDistributed)
	assert.Equal(t, 0, l.MagnifiedDividendPerShare.Sign())

	// Outstanding shares are required even when there is nothing to credit.
	assert.ErrorIs(t, Distribute(l, 0, testTime(0)), ErrNoShares)
}

func TestDistributeZeroAmount(t *testing.T) {
	l := state.NewLedger(testTime(0))
	l.TotalWeightedShares = 100
	require.NoError(t, Distribute(l, 0, testTime(0)))
	assert.Equal(t, 0, l.MagnifiedDividendPerShare.Sign())
}

func TestProportionalAccrual(t *testing.T) {
	l := state.NewLedger(testTime(0))
	a := testHolding(1, 300)
	b := testHolding(2, 700)
	l.TotalWeightedShares = 1000

	require.NoError(t, Distribute(l, 10000, testTime(0)))

	assert.Equal(t, uint64(3000), Accumulated(l, a))
	assert.Equal(t, uint64(7000), Accumulated(l, b))
	assert.Equal(t, uint64(10000), l.TotalDistributed)
}

func TestConservation(t *testing.T) {
	// The sum paid out never exceeds the sum distributed, and the shortfall
	// stays below one unit per distribution per holder.
	l := state.NewLedger(testTime(0))
	holders := []*state.Holding{
		testHolding(1, 17),
		testHolding(2, 313),
		testHolding(3, 4999),
	}
	l.TotalWeightedShares = 17 + 313 + 4999

	distributions := []uint64{1, 7, 99999, 1000003}
	var total uint64
	for _, amount := range distributions {
		require.NoError(t, Distribute(l, amount, testTime(0)))
		total += amount
	}

	var claimed uint64
	for _, h := range holders {
		claimed += Accumulated(l, h)
	}
	assert.LessOrEqual(t, claimed, total)
	assert.Less(t, total-claimed, uint64(len(distributions)*len(holders)))
}

func TestWithdrawableTracksWithdrawn(t *testing.T) {
	l := state.NewLedger(testTime(0))
	h := testHolding(1, 100)
	l.TotalWeightedShares = 100

	require.NoError(t, Distribute(l, 5000, testTime(0)))
	assert.Equal(t, uint64(5000), Withdrawable(l, h))

	MarkWithdrawn(h, 5000, testTime(time.Second))
	assert.Equal(t, uint64(0), Withdrawable(l, h))
	assert.Equal(t, uint64(5000), Accumulated(l, h))

	require.NoError(t, Distribute(l, 2000, testTime(time.Minute)))
	assert.Equal(t, uint64(2000), Withdrawable(l, h))
}

func TestCorrectionsPreserveEntitlement(t *testing.T) {
	l := state.NewLedger(testTime(0))
	sender := testHolding(1, 600)
	receiver := testHolding(2, 400)
	l.TotalWeightedShares = 1000

	require.NoError(t, Distribute(l, 10000, testTime(0)))
	senderBefore := Accumulated(l, sender)
	receiverBefore := Accumulated(l, receiver)
	require.Equal(t, uint64(6000), senderBefore)
	require.Equal(t, uint64(4000), receiverBefore)

	// Move 200 weighted shares from sender to receiver.
	CorrectOutgoing(l, sender, 200, testTime(time.Second))
	CorrectIncoming(l, receiver, 200, testTime(time.Second))
	sender.WeightedShare = 400
	receiver.WeightedShare = 600

	assert.Equal(t, senderBefore, Accumulated(l, sender))
	assert.Equal(t, receiverBefore, Accumulated(l, receiver))

	// Future distributions follow the new weights.
	require.NoError(t, Distribute(l, 10000, testTime(time.Minute)))
	assert.Equal(t, senderBefore+4000, Accumulated(l, sender))
	assert.Equal(t, receiverBefore+6000, Accumulated(l, receiver))
}

func TestNegativeRawClampsToZero(t *testing.T) {
	l := state.NewLedger(testTime(0))
	h := testHolding(1, 0)
	l.TotalWeightedShares = 500

	require.NoError(t, Distribute(l, 1000, testTime(0)))

	// An incoming correction without the matching share yet applied leaves
	// the raw value negative. It must read as zero, not wrap.
	CorrectIncoming(l, h, 500, testTime(time.Second))
	require.Equal(t, -1, h.Correction.Sign())
	assert.Equal(t, uint64(0), Accumulated(l, h))
	assert.Equal(t, uint64(0), Withdrawable(l, h))
}

func TestPrecisionManyUnitDistributions(t *testing.T) {
	// Repeated one unit distributions to a sole holder lose less than one
	// unit in total to rounding, regardless of how many there are.
	l := state.NewLedger(testTime(0))
	h := testHolding(1, 1000)
	l.TotalWeightedShares = 1000

	for i := 0; i < 1000; i++ {
		require.NoError(t, Distribute(l, 1, testTime(0)))
	}

	assert.Equal(t, uint64(1000), l.TotalDistributed)
	assert.GreaterOrEqual(t, Accumulated(l, h), uint64(999))
	assert.LessOrEqual(t, Accumulated(l, h), uint64(1000))
}
