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

// OnBalanceChanged is the notification hook the custody layer calls exactly
// once per logical transfer. A nil from denotes a mint, a nil to denotes a
// burn.
//
// The sequence matters. Weighted shares are refreshed before the balance
// delta so each party's pre-change multiplier can be captured, corrections
// are computed from those captured multipliers applied to the moved amount,
// and a second refresh afterwards re-establishes the ledger total. The
// corrections use the pre-change multipliers so the sender keeps the
// entitlement already earned on the weight it gives up, and the receiver's
// new tokens enter at its then-current multiplier without re-weighting its
// pre-existing balance.
//
// Validation happens before any mutation; the mutating steps cannot fail,
// so the operation is all or nothing.
func (v *Vault) OnBalanceChanged(ctx context.Context, from, to *state.Account, amount uint64) error {
	ctx, span := node.NewOperationContext(ctx, "vault.OnBalanceChanged", v.clock.Now())
	defer span.End()

	if from == nil && to == nil {
		return ErrInvalidTransfer
	}
	if amount == 0 {
		return nil
	}
	if from != nil && to != nil && *from == *to {
		return nil // self transfer moves nothing
	}

	if err := v.lockOperation(); err != nil {
		return err
	}
	defer v.unlockOperation()

	now := v.now()

	var fromHolding, toHolding *state.Holding
	var err error
	if from != nil {
		if fromHolding, err = holdings.GetHolding(ctx, v.masterDB, *from, now); err != nil {
			return errors.Wrap(err, "Failed to fetch sender holding")
		}
		if fromHolding.Balance < amount {
			return errors.Wrapf(holdings.ErrInsufficientHoldings, "%d < %d",
				fromHolding.Balance, amount)
		}
	}
	if to != nil {
		if toHolding, err = holdings.GetHolding(ctx, v.masterDB, *to, now); err != nil {
			return errors.Wrap(err, "Failed to fetch recipient holding")
		}
	}

	// Capture pre-change weights and multipliers.
	var fromMultiplier, toMultiplier uint32
	if fromHolding != nil {
		weights.Refresh(v.ledger, fromHolding, now)
		fromMultiplier = weights.EffectiveMultiplier(v.ledger, fromHolding, now)
	}
	if toHolding != nil {
		weights.Refresh(v.ledger, toHolding, now)
		toMultiplier = weights.EffectiveMultiplier(v.ledger, toHolding, now)
	}

	// Apply the raw balance delta.
	toWasZero := toHolding != nil && toHolding.Balance == 0
	if fromHolding != nil {
		fromHolding.Balance -= amount
	}
	if toHolding != nil {
		toHolding.Balance += amount
	}

	// Streak bookkeeping for zero crossings.
	if fromHolding != nil && fromHolding.Balance == 0 {
		holdings.OnBalanceBecameZero(fromHolding, now)
	}
	if toWasZero {
		holdings.OnBalanceBecameNonZero(toHolding, now)
	}

	// Corrections sized by the pre-change multipliers.
	if fromHolding != nil {
		dividend.CorrectOutgoing(v.ledger, fromHolding,
			weights.ApplyMultiplier(amount, fromMultiplier), now)
	}
	if toHolding != nil {
		dividend.CorrectIncoming(v.ledger, toHolding,
			weights.ApplyMultiplier(amount, toMultiplier), now)
	}

	// Post-change refresh re-establishes the ledger total.
	if fromHolding != nil {
		weights.Refresh(v.ledger, fromHolding, now)
		if err := v.saveHolding(ctx, fromHolding); err != nil {
			return errors.Wrap(err, "Failed to save sender holding")
		}
	}
	if toHolding != nil {
		weights.Refresh(v.ledger, toHolding, now)
		if err := v.saveHolding(ctx, toHolding); err != nil {
			return errors.Wrap(err, "Failed to save recipient holding")
		}
	}

	totalWeightedSharesGauge.Set(float64(v.ledger.TotalWeightedShares))
	transfersProcessed.Inc()

	node.LogVerbose(ctx, "Balance change : from %s, to %s, amount %d, total weighted %d",
		accountLabel(from), accountLabel(to), amount, v.ledger.TotalWeightedShares)
	return nil
}

func accountLabel(account *state.Account) string {
	if account == nil {
		return "-"
	}
	return account.String()
}
