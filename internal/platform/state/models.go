package state

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"math/big"
	"time"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/tiers"

	"github.com/pkg/errors"
)

// AccountSize is the length of an account identifier in bytes.
const AccountSize = 20

var (
	// ErrInvalidAccount occurs when an account identifier is not in a valid
	// form.
	ErrInvalidAccount = errors.New("Account is not in its proper form")
)

// Account identifies a holder of vault shares.
type Account [AccountSize]byte

// AccountFromString parses a hex encoded account identifier.
func AccountFromString(s string) (Account, error) {
	var result Account

	b, err := hex.DecodeString(s)
	if err != nil {
		return result, errors.Wrap(ErrInvalidAccount, err.Error())
	}
	if len(b) != AccountSize {
		return result, ErrInvalidAccount
	}

	copy(result[:], b)
	return result, nil
}

func (a Account) String() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns the raw account identifier.
func (a Account) Bytes() []byte {
	return a[:]
}

// IsZero returns true for the zero value account, used to denote mints and
// burns at the vault boundary.
func (a Account) IsZero() bool {
	return a == Account{}
}

// Timestamp is a number of nanoseconds since the unix epoch.
type Timestamp uint64

// NewTimestamp converts a time.Time to a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Nano returns the raw nanosecond value.
func (ts Timestamp) Nano() uint64 {
	return uint64(ts)
}

// Time converts the Timestamp back to a time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(0, int64(ts))
}

func (ts Timestamp) String() string {
	return ts.Time().UTC().Format(time.RFC3339Nano)
}

// Serialize writes the Timestamp to a writer.
func (ts Timestamp) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, uint64(ts))
}

// DeserializeTimestamp reads a Timestamp from a reader.
func DeserializeTimestamp(r io.Reader) (Timestamp, error) {
	var value uint64
	if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
		return 0, err
	}
	return Timestamp(value), nil
}

// Holding is the full per-account ledger record: vault share balance,
// holding streak bookkeeping, the cached weighted share, and the dividend
// correction and withdrawal bookkeeping.
//
// Holdings are created lazily on the first balance changing event for an
// account and are never destroyed, even after the balance returns to zero.
// The historical streak time and correction bookkeeping must survive
// re-entry.
type Holding struct {
	Account Account

	// Balance is the count of vault shares held.
	Balance uint64

	// FirstHeldAt is set once, the first time the balance becomes non-zero.
	FirstHeldAt Timestamp

	// StreakStartedAt marks the start of the current continuous holding
	// streak. Zero while the balance is zero.
	StreakStartedAt Timestamp

	// HeldDuration is the sum of all completed holding streaks. The
	// in-progress streak is not included.
	HeldDuration time.Duration

	// WeightedShare is the cached weighted share for this account. Only
	// weights.Refresh may change it.
	WeightedShare uint64

	// Correction offsets the magnified accumulator's historical value so
	// balance changes don't retroactively alter past entitlement. Signed.
	Correction *big.Int

	// Withdrawn is the cumulative dividend amount already paid out.
	Withdrawn uint64

	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// NewHolding returns a zero state Holding for an account.
func NewHolding(account Account, now Timestamp) *Holding {
	return &Holding{
		Account:    account,
		Correction: big.NewInt(0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Copy returns a deep copy of the Holding so cached records are not
// unintentionally modified by reference.
func (h *Holding) Copy() *Holding {
	result := *h
	result.Correction = new(big.Int).Set(h.Correction)
	return &result
}

// Ledger holds the vault wide dividend accounting state.
type Ledger struct {
	// TotalWeightedShares is the sum of every account's cached weighted
	// share. Only weights.Refresh may change it.
	TotalWeightedShares uint64

	// MagnifiedDividendPerShare is the dividend-per-weighted-share
	// accumulator, scaled up by 2^128.
	MagnifiedDividendPerShare *big.Int

	// TotalDistributed is the lifetime sum of all distributed amounts.
	TotalDistributed uint64

	HoldingTiers tiers.Table
	BalanceTiers tiers.Table

	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// NewLedger returns a Ledger with the default tier ladders and an empty
// accumulator.
func NewLedger(now Timestamp) *Ledger {
	return &Ledger{
		MagnifiedDividendPerShare: big.NewInt(0),
		HoldingTiers:              tiers.DefaultHoldingTiers(),
		BalanceTiers:              tiers.DefaultBalanceTiers(),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
}
