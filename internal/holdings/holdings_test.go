package holdings

import (
	"bytes"
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/db"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(seed byte) state.Account {
	var account state.Account
	for i := range account {
		account[i] = seed
	}
	return account
}

func TestStreakLifecycle(t *testing.T) {
	clock := clockwork.NewFakeClock()

	h := state.NewHolding(testAccount(0x01), state.NewTimestamp(clock.Now()))

	// Not a holder yet.
	assert.Equal(t, time.Duration(0), Duration(h, state.NewTimestamp(clock.Now())))

	// First deposit stamps FirstHeldAt and starts the streak.
	h.Balance = 100
	OnBalanceBecameNonZero(h, state.NewTimestamp(clock.Now()))
	firstHeld := h.FirstHeldAt
	require.NotZero(t, firstHeld)
	require.NotZero(t, h.StreakStartedAt)

	clock.Advance(10 * 24 * time.Hour)
	assert.Equal(t, 10*24*time.Hour, Duration(h, state.NewTimestamp(clock.Now())))

	// Sell to zero: streak folds into completed time and freezes.
	h.Balance = 0
	OnBalanceBecameZero(h, state.NewTimestamp(clock.Now()))
	assert.Equal(t, 10*24*time.Hour, h.HeldDuration)
	assert.Zero(t, h.StreakStartedAt)

	// Externally-reported duration is zero while not holding, even though
	// the history is preserved.
	clock.Advance(5 * 24 * time.Hour)
	assert.Equal(t, time.Duration(0), Duration(h, state.NewTimestamp(clock.Now())))

	// Re-entry resumes from the preserved history; FirstHeldAt is set once.
	h.Balance = 50
	OnBalanceBecameNonZero(h, state.NewTimestamp(clock.Now()))
	assert.Equal(t, firstHeld, h.FirstHeldAt)
	assert.Equal(t, 10*24*time.Hour, Duration(h, state.NewTimestamp(clock.Now())))

	clock.Advance(3 * 24 * time.Hour)
	assert.Equal(t, 13*24*time.Hour, Duration(h, state.NewTimestamp(clock.Now())))
}

func TestDurationMonotonicWhileHolding(t *testing.T) {
	clock := clockwork.NewFakeClock()

	h := state.NewHolding(testAccount(0x02), state.NewTimestamp(clock.Now()))
	h.Balance = 10
	OnBalanceBecameNonZero(h, state.NewTimestamp(clock.Now()))

	previous := Duration(h, state.NewTimestamp(clock.Now()))
	for i := 0; i < 20; i++ {
		clock.Advance(7 * time.Hour)
		current := Duration(h, state.NewTimestamp(clock.Now()))
		assert.GreaterOrEqual(t, current, previous)
		previous = current
	}
}

func TestOnBalanceBecameNonZeroIdempotentWhileStreakActive(t *testing.T) {
	clock := clockwork.NewFakeClock()

	h := state.NewHolding(testAccount(0x03), state.NewTimestamp(clock.Now()))
	h.Balance = 10
	OnBalanceBecameNonZero(h, state.NewTimestamp(clock.Now()))
	streakStart := h.StreakStartedAt

	// More deposits while already holding must not restart the streak.
	clock.Advance(time.Hour)
	h.Balance = 20
	OnBalanceBecameNonZero(h, state.NewTimestamp(clock.Now()))
	assert.Equal(t, streakStart, h.StreakStartedAt)
}

func TestHoldingSerializeRoundTrip(t *testing.T) {
	now := state.NewTimestamp(time.Now())

	h := state.NewHolding(testAccount(0xAA), now)
	h.Balance = 12345
	h.FirstHeldAt = now
	h.StreakStartedAt = now
	h.HeldDuration = 42 * 24 * time.Hour
	h.WeightedShare = 14814
	h.Correction = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(98765), 128))
	h.Withdrawn = 55

	data, err := serializeHolding(h)
	require.NoError(t, err)

	decoded, err := deserializeHolding(bytes.NewReader(data))
	require.NoError(t, err)

	if diff := cmp.Diff(h, decoded, cmpopts.IgnoreUnexported(big.Int{})); diff != "" {
		t.Fatalf("holding mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, h.Correction.Cmp(decoded.Correction))
}

func TestStorageCache(t *testing.T) {
	ctx := context.Background()

	masterDB, err := db.New(&db.StorageConfig{Bucket: "standalone", Root: t.TempDir()})
	require.NoError(t, err)
	defer masterDB.Close()

	Reset(ctx)
	defer Reset(ctx)

	account := testAccount(0xBB)
	now := state.NewTimestamp(time.Now())

	// Lazy create.
	h, err := GetHolding(ctx, masterDB, account, now)
	require.NoError(t, err)
	assert.Equal(t, account, h.Account)
	assert.Zero(t, h.Balance)

	h.Balance = 500
	ci, err := Save(ctx, masterDB, h)
	require.NoError(t, err)
	require.NoError(t, ci.Write(ctx, masterDB))

	// Mutating the fetched copy must not affect the cache.
	fetched, err := Fetch(ctx, masterDB, account)
	require.NoError(t, err)
	fetched.Balance = 999

	again, err := Fetch(ctx, masterDB, account)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), again.Balance)

	// Survives a cache reset by reading from storage.
	Reset(ctx)
	persisted, err := Fetch(ctx, masterDB, account)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), persisted.Balance)

	keys, err := List(ctx, masterDB)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}
