// Package holdings tracks per-account vault share records: balance,
// continuous holding streaks, and dividend bookkeeping.
package holdings

import (
	"context"
	"time"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/db"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound abstracts the standard not found error.
	ErrNotFound = errors.New("Holding not found")

	// ErrInsufficientHoldings occurs when the account doesn't hold enough
	// shares for the operation.
	ErrInsufficientHoldings = errors.New("Holdings insufficient")
)

// GetHolding returns the holding record for an account, lazily creating a
// zero state record when none exists yet.
func GetHolding(ctx context.Context, dbConn *db.DB, account state.Account,
	now state.Timestamp) (*state.Holding, error) {

	result, err := Fetch(ctx, dbConn, account)
	if err == nil {
		return result, nil
	}
	if err != ErrNotFound {
		return result, err
	}

	return state.NewHolding(account, now), nil
}

// OnBalanceBecameZero folds the active streak into the completed holding
// time and freezes the streak. The completed time is preserved for when the
// account re-enters.
func OnBalanceBecameZero(h *state.Holding, now state.Timestamp) {
	if h.StreakStartedAt == 0 {
		return
	}

	h.HeldDuration += time.Duration(now - h.StreakStartedAt)
	h.StreakStartedAt = 0
	h.UpdatedAt = now
}

// OnBalanceBecameNonZero starts or resumes the holding streak. The first
// transition also stamps FirstHeldAt, exactly once.
func OnBalanceBecameNonZero(h *state.Holding, now state.Timestamp) {
	if h.FirstHeldAt == 0 {
		h.FirstHeldAt = now
	}
	if h.StreakStartedAt == 0 {
		h.StreakStartedAt = now
	}
	h.UpdatedAt = now
}

// Duration returns the effective holding duration for an account: the
// completed streak time plus the in-progress streak.
//
// An account whose balance is currently zero reports a duration of zero
// regardless of historical streak time. The history is retained internally
// and resumes counting on re-entry; it is just not externally visible while
// the account is not holding.
func Duration(h *state.Holding, now state.Timestamp) time.Duration {
	if h.Balance == 0 {
		return 0
	}

	if h.StreakStartedAt != 0 {
		return h.HeldDuration + time.Duration(now-h.StreakStartedAt)
	}
	return h.HeldDuration
}
