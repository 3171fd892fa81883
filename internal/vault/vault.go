// Package vault owns the dividend ledger. It sequences every state
// changing operation under a single lock, keeps the per account holdings
// and the ledger wide totals consistent, and is the only writer of either.
package vault

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	sync "github.com/sasha-s/go-deadlock"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/dividend"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/holdings"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/config"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/db"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/node"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/weights"
)

// Payer is the settlement transfer primitive. Pay either delivers the full
// amount or fails without partial payment.
type Payer interface {
	Pay(ctx context.Context, recipient state.Account, amount uint64) error
}

// Vault is the dividend ledger instance. All cross field invariants are
// maintained by taking the vault's lock for the whole logical operation,
// never per field.
type Vault struct {
	masterDB *db.DB
	clock    clockwork.Clock
	payer    Payer
	owner    state.Account

	ledger *state.Ledger

	// cacheChannel, when set, receives modified holdings for asynchronous
	// write-behind to storage.
	cacheChannel *holdings.CacheChannel

	// busy rejects re-entrant mutating calls. A payout callback that tries
	// to call back in before the initiating operation finishes would
	// otherwise deadlock on mu.
	busy uint32
	mu   sync.Mutex
}

// SetCacheChannel enables asynchronous write-behind of modified holdings.
// Modified holdings are queued on the channel as operations save them; a
// ProcessCacheItems worker drains the channel to storage. Without a
// channel, holdings persist on the next Flush.
func (v *Vault) SetCacheChannel(ch *holdings.CacheChannel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cacheChannel = ch
}

// saveHolding puts a modified holding in the cache and queues it for
// write-behind when a cache channel is configured. A rejected queue add is
// not an operation failure: the holding is already marked modified in the
// cache, so it persists on the next Flush instead.
func (v *Vault) saveHolding(ctx context.Context, h *state.Holding) error {
	ci, err := holdings.Save(ctx, v.masterDB, h)
	if err != nil {
		return err
	}

	if v.cacheChannel != nil {
		if err := v.cacheChannel.Add(ci); err != nil {
			node.LogWarn(ctx, "Holding %s not queued, pending flush : %s", h.Account, err)
		}
	}
	return nil
}

// New loads the ledger state from storage, creating a fresh ledger on first
// run, and returns a Vault ready to serve operations.
func New(cfg *config.Config, masterDB *db.DB, clock clockwork.Clock, payer Payer) (*Vault, error) {
	result := Vault{
		masterDB: masterDB,
		clock:    clock,
		payer:    payer,
	}

	if len(cfg.Vault.OwnerAccount) > 0 {
		owner, err := state.AccountFromString(cfg.Vault.OwnerAccount)
		if err != nil {
			return nil, errors.Wrap(err, "Invalid owner account")
		}
		result.owner = owner
	}

	ctx := context.Background()
	ledger, err := FetchLedger(ctx, masterDB)
	if err != nil {
		if errors.Cause(err) != ErrLedgerNotFound {
			return nil, errors.Wrap(err, "Failed to fetch ledger")
		}
		ledger = state.NewLedger(state.NewTimestamp(clock.Now()))
	}
	result.ledger = ledger

	totalWeightedSharesGauge.Set(float64(ledger.TotalWeightedShares))

	return &result, nil
}

// lockOperation guards a mutating entry point. The busy flag is checked
// before the mutex so a re-entrant call fails fast instead of deadlocking.
func (v *Vault) lockOperation() error {
	if !atomic.CompareAndSwapUint32(&v.busy, 0, 1) {
		return ErrOperationInProgress
	}
	v.mu.Lock()
	return nil
}

func (v *Vault) unlockOperation() {
	v.mu.Unlock()
	atomic.StoreUint32(&v.busy, 0)
}

// now returns the current time as a ledger timestamp.
func (v *Vault) now() state.Timestamp {
	return state.NewTimestamp(v.clock.Now())
}

// TotalWeightedShares returns the ledger wide sum of cached weighted
// shares.
func (v *Vault) TotalWeightedShares() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.TotalWeightedShares
}

// TotalDistributed returns the lifetime sum of all distributed amounts.
func (v *Vault) TotalDistributed() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.TotalDistributed
}

// BalanceOf returns the account's current share balance.
func (v *Vault) BalanceOf(ctx context.Context, account state.Account) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, v.now())
	if err != nil {
		return 0, err
	}
	return h.Balance, nil
}

// Accumulated returns the account's lifetime dividend entitlement.
func (v *Vault) Accumulated(ctx context.Context, account state.Account) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, v.now())
	if err != nil {
		return 0, err
	}
	return dividend.Accumulated(v.ledger, h), nil
}

// Withdrawable returns the dividend amount the account could claim now.
func (v *Vault) Withdrawable(ctx context.Context, account state.Account) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, v.now())
	if err != nil {
		return 0, err
	}
	return dividend.Withdrawable(v.ledger, h), nil
}

// Withdrawn returns the dividend amount already paid out to the account.
func (v *Vault) Withdrawn(ctx context.Context, account state.Account) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, v.now())
	if err != nil {
		return 0, err
	}
	return h.Withdrawn, nil
}

// WeightedShareOf returns the account's cached weighted share.
func (v *Vault) WeightedShareOf(ctx context.Context, account state.Account) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, v.now())
	if err != nil {
		return 0, err
	}
	return h.WeightedShare, nil
}

// EffectiveMultiplier returns the account's current composed multiplier in
// basis points.
func (v *Vault) EffectiveMultiplier(ctx context.Context, account state.Account) (uint32, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, v.now())
	if err != nil {
		return 0, err
	}
	return weights.EffectiveMultiplier(v.ledger, h, v.now()), nil
}

// HoldingDuration returns the account's effective continuous holding
// duration. Zero while the balance is zero.
func (v *Vault) HoldingDuration(ctx context.Context, account state.Account) (time.Duration, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, v.now())
	if err != nil {
		return 0, err
	}
	return holdings.Duration(h, v.now()), nil
}

// RefreshWeightedShares recomputes an account's cached weighted share and
// reconciles the ledger total. Callable by anyone at any time; a stale
// cache caused purely by time passing over a tier boundary is otherwise
// invisible until the next balance change.
func (v *Vault) RefreshWeightedShares(ctx context.Context, account state.Account) error {
	ctx, span := node.NewOperationContext(ctx, "vault.RefreshWeightedShares", v.clock.Now())
	defer span.End()

	if err := v.lockOperation(); err != nil {
		return err
	}
	defer v.unlockOperation()

	return v.refresh(ctx, account)
}

// RefreshWeightedSharesBatch refreshes a list of accounts in one operation.
func (v *Vault) RefreshWeightedSharesBatch(ctx context.Context, accounts []state.Account) error {
	ctx, span := node.NewOperationContext(ctx, "vault.RefreshWeightedSharesBatch", v.clock.Now())
	defer span.End()

	if err := v.lockOperation(); err != nil {
		return err
	}
	defer v.unlockOperation()

	for _, account := range accounts {
		if err := v.refresh(ctx, account); err != nil {
			return errors.Wrapf(err, "Failed to refresh %s", account)
		}
	}
	return nil
}

// refresh is the locked refresh body shared by the public refresh
// operations. Saves the holding only when the cached value changed.
func (v *Vault) refresh(ctx context.Context, account state.Account) error {
	now := v.now()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, now)
	if err != nil {
		return err
	}

	if !weights.Refresh(v.ledger, h, now) {
		return nil
	}

	if err := v.saveHolding(ctx, h); err != nil {
		return err
	}

	totalWeightedSharesGauge.Set(float64(v.ledger.TotalWeightedShares))
	node.LogVerbose(ctx, "Refreshed weighted share : account %s, share %d, total %d",
		account, h.WeightedShare, v.ledger.TotalWeightedShares)
	return nil
}

// Flush writes the ledger and all modified holdings through to storage.
func (v *Vault) Flush(ctx context.Context) error {
	ctx, span := node.NewOperationContext(ctx, "vault.Flush", v.clock.Now())
	defer span.End()

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := SaveLedger(ctx, v.masterDB, v.ledger); err != nil {
		return errors.Wrap(err, "Failed to save ledger")
	}

	if err := holdings.WriteCache(ctx, v.masterDB); err != nil {
		return errors.Wrap(err, "Failed to write holdings cache")
	}

	return nil
}
