package vault

import (
	"context"
	"time"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/node"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

// SetHoldingTier replaces or appends a rung of the holding duration ladder.
// Restricted to the configured owner. Existing cached weighted shares are
// not recomputed here; they pull forward on the next refresh.
func (v *Vault) SetHoldingTier(ctx context.Context, caller state.Account, index int,
	minDuration time.Duration, multiplierBps uint32) error {

	ctx, span := node.NewOperationContext(ctx, "vault.SetHoldingTier", v.clock.Now())
	defer span.End()

	if err := v.lockOperation(); err != nil {
		return err
	}
	defer v.unlockOperation()

	if caller != v.owner {
		return ErrUnauthorized
	}

	table, err := v.ledger.HoldingTiers.Set(index, uint64(minDuration), multiplierBps)
	if err != nil {
		return err
	}

	v.ledger.HoldingTiers = table
	v.ledger.UpdatedAt = v.now()

	node.Log(ctx, "Holding tier set : index %d, min duration %s, multiplier %d",
		index, minDuration, multiplierBps)
	return nil
}

// SetBalanceTier replaces or appends a rung of the balance ladder.
// Restricted to the configured owner.
func (v *Vault) SetBalanceTier(ctx context.Context, caller state.Account, index int,
	minBalance uint64, multiplierBps uint32) error {

	ctx, span := node.NewOperationContext(ctx, "vault.SetBalanceTier", v.clock.Now())
	defer span.End()

	if err := v.lockOperation(); err != nil {
		return err
	}
	defer v.unlockOperation()

	if caller != v.owner {
		return ErrUnauthorized
	}

	table, err := v.ledger.BalanceTiers.Set(index, minBalance, multiplierBps)
	if err != nil {
		return err
	}

	v.ledger.BalanceTiers = table
	v.ledger.UpdatedAt = v.now()

	node.Log(ctx, "Balance tier set : index %d, min balance %d, multiplier %d",
		index, minBalance, multiplierBps)
	return nil
}
