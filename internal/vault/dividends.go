package vault

import (
	"context"

	"github.com/pkg/errors"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/dividend"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/holdings"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/node"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/weights"
)

// Distribute credits amount across all weighted shares. Fails with
// dividend.ErrNoShares while no weighted shares are outstanding; silently
// dropping a distribution would visibly break conservation, so that case is
// a hard error rather than a no-op.
func (v *Vault) Distribute(ctx context.Context, source state.Account, amount uint64) error {
	ctx, span := node.NewOperationContext(ctx, "vault.Distribute", v.clock.Now())
	defer span.End()

	if err := v.lockOperation(); err != nil {
		return err
	}
	defer v.unlockOperation()

	if err := dividend.Distribute(v.ledger, amount, v.now()); err != nil {
		return err
	}

	distributionsProcessed.Inc()
	distributedUnits.Add(float64(amount))

	node.Log(ctx, "Distributed : source %s, amount %d, lifetime %d",
		source, amount, v.ledger.TotalDistributed)
	return nil
}

// Withdraw pays the account's full withdrawable dividend to the account
// itself.
func (v *Vault) Withdraw(ctx context.Context, account state.Account) (uint64, error) {
	return v.WithdrawTo(ctx, account, account)
}

// WithdrawTo pays the account's full withdrawable dividend to recipient.
//
// The weighted share is force refreshed first so a duration tier crossing
// since the account was last touched is reflected in the payout. The
// withdrawn bookkeeping is recorded before the payout is attempted and
// rolled back if the payout fails, so the operation as a whole either
// happened or did not.
func (v *Vault) WithdrawTo(ctx context.Context, account, recipient state.Account) (uint64, error) {
	ctx, span := node.NewOperationContext(ctx, "vault.WithdrawTo", v.clock.Now())
	defer span.End()

	if err := v.lockOperation(); err != nil {
		return 0, err
	}
	defer v.unlockOperation()

	now := v.now()

	h, err := holdings.GetHolding(ctx, v.masterDB, account, now)
	if err != nil {
		return 0, err
	}

	if weights.Refresh(v.ledger, h, now) {
		totalWeightedSharesGauge.Set(float64(v.ledger.TotalWeightedShares))
	}

	amount := dividend.Withdrawable(v.ledger, h)
	if amount == 0 {
		// The refresh stands on its own; keep it even though the claim
		// fails.
		if err := v.saveHolding(ctx, h); err != nil {
			return 0, err
		}
		return 0, ErrNothingToClaim
	}

	// Mark withdrawn before paying out, then roll back to this snapshot if
	// delivery fails.
	refreshed := h.Copy()
	dividend.MarkWithdrawn(h, amount, now)
	if err := v.saveHolding(ctx, h); err != nil {
		return 0, err
	}

	if err := v.payer.Pay(ctx, recipient, amount); err != nil {
		if saveErr := v.saveHolding(ctx, refreshed); saveErr != nil {
			return 0, errors.Wrap(saveErr, "Failed to roll back withdrawal")
		}
		return 0, errors.Wrap(ErrTransferFailed, err.Error())
	}

	withdrawalsProcessed.Inc()
	withdrawnUnits.Add(float64(amount))

	node.Log(ctx, "Withdrawal : account %s, recipient %s, amount %d",
		account, recipient, amount)
	return amount, nil
}
