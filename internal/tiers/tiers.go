// Package tiers provides the ordered multiplier ladders that scale an
// account's dividend weight by holding duration and by balance size.
package tiers

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// Basis is the fixed point scale for multipliers: 10,000 = 1.0x.
	Basis = 10000

	// MaxTiers bounds the size of a tier table.
	MaxTiers = 10
)

var (
	// ErrInvalidTierConfig occurs on a zero multiplier or an out of range
	// index. A zero multiplier would silently zero out a holder's weight, so
	// it is treated as a configuration error.
	ErrInvalidTierConfig = errors.New("Invalid tier configuration")

	// ErrTooManyTiers occurs when a tier table is at capacity.
	ErrTooManyTiers = errors.New("Too many tiers")
)

// Tier is a single rung of a multiplier ladder. Threshold is a minimum
// duration in nanoseconds for holding tiers, or a minimum balance for
// balance tiers.
type Tier struct {
	Threshold     uint64
	MultiplierBps uint32
}

// Table is an ordered multiplier ladder, ascending by Threshold. The table
// does not auto-sort on mutation; order is the owner's responsibility.
type Table []Tier

// Set replaces the tier at index, or appends when index equals the current
// length. Returns the updated table.
func (t Table) Set(index int, threshold uint64, multiplierBps uint32) (Table, error) {
	if multiplierBps == 0 {
		return nil, errors.Wrap(ErrInvalidTierConfig, "zero multiplier")
	}
	if index < 0 || index > len(t) {
		return nil, errors.Wrapf(ErrInvalidTierConfig, "index %d out of range", index)
	}

	if index == len(t) {
		if len(t) >= MaxTiers {
			return nil, ErrTooManyTiers
		}
		return append(t, Tier{Threshold: threshold, MultiplierBps: multiplierBps}), nil
	}

	result := make(Table, len(t))
	copy(result, t)
	result[index] = Tier{Threshold: threshold, MultiplierBps: multiplierBps}
	return result, nil
}

// MultiplierFor scans tiers from highest index to lowest and returns the
// multiplier of the first tier whose threshold is at or below value. Falls
// back to tier 0's multiplier, or the identity multiplier for an empty
// table.
func (t Table) MultiplierFor(value uint64) uint32 {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Threshold <= value {
			return t[i].MultiplierBps
		}
	}

	if len(t) > 0 {
		return t[0].MultiplierBps
	}
	return Basis
}

// Compose combines a holding multiplier and a balance multiplier into a
// single effective multiplier: floor(holdBps * balBps / Basis).
func Compose(holdBps, balBps uint32) uint32 {
	return uint32(uint64(holdBps) * uint64(balBps) / Basis)
}

const day = 24 * time.Hour

// DefaultHoldingTiers is the default holding duration ladder.
func DefaultHoldingTiers() Table {
	return Table{
		{Threshold: 0, MultiplierBps: 10000},
		{Threshold: uint64(30 * day), MultiplierBps: 12500},
		{Threshold: uint64(90 * day), MultiplierBps: 15000},
		{Threshold: uint64(180 * day), MultiplierBps: 17500},
		{Threshold: uint64(365 * day), MultiplierBps: 20000},
	}
}

// DefaultBalanceTiers is the default balance ladder. Larger balances get a
// lower multiplier.
func DefaultBalanceTiers() Table {
	return Table{
		{Threshold: 0, MultiplierBps: 12000},
		{Threshold: 1000, MultiplierBps: 11000},
		{Threshold: 10000, MultiplierBps: 10000},
		{Threshold: 100000, MultiplierBps: 9000},
	}
}
