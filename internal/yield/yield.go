// Package yield adapts external income sources to the ledger. Each source
// produces an amount when harvested; non-zero harvests are credited to
// holders through the ledger's distribute operation.
package yield

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/dividend"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/node"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

var (
	// ErrInvalidSourceSpec occurs when a yield source specification string
	// can't be parsed.
	ErrInvalidSourceSpec = errors.New("Invalid yield source specification")
)

// Source produces income to distribute. Harvest returns the amount
// produced since the previous harvest; zero means nothing accrued.
type Source interface {
	Name() string
	Harvest(ctx context.Context) (uint64, error)
}

// Distributor credits a harvested amount across all weighted shares.
type Distributor interface {
	Distribute(ctx context.Context, source state.Account, amount uint64) error
}

// FixedSource produces a constant amount on every harvest. Used for
// standalone deployments and testing; protocol specific adapters implement
// Source the same way.
type FixedSource struct {
	name   string
	amount uint64
}

func NewFixedSource(name string, amount uint64) *FixedSource {
	return &FixedSource{name: name, amount: amount}
}

func (fs *FixedSource) Name() string {
	return fs.name
}

func (fs *FixedSource) Harvest(ctx context.Context) (uint64, error) {
	return fs.amount, nil
}

// ParseSources parses a comma separated list of name:amount pairs into
// fixed sources. An empty specification yields no sources.
func ParseSources(spec string) ([]Source, error) {
	spec = strings.TrimSpace(spec)
	if len(spec) == 0 {
		return nil, nil
	}

	var result []Source
	for _, entry := range strings.Split(spec, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 2)
		if len(parts) != 2 || len(parts[0]) == 0 {
			return nil, errors.Wrap(ErrInvalidSourceSpec, entry)
		}

		amount, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidSourceSpec, entry)
		}

		result = append(result, NewFixedSource(parts[0], amount))
	}
	return result, nil
}

// HarvestProcess harvests every source and distributes the proceeds. It is
// run periodically by the scheduler.
type HarvestProcess struct {
	distributor Distributor
	operator    state.Account
	sources     []Source
}

func NewHarvestProcess(distributor Distributor, operator state.Account,
	sources []Source) *HarvestProcess {
	return &HarvestProcess{
		distributor: distributor,
		operator:    operator,
		sources:     sources,
	}
}

// Run harvests each source in turn. A zero harvest is skipped. A harvest
// that finds no weighted shares outstanding is logged and dropped; the
// source will produce again next cycle when holders exist. Other failures
// are logged and do not stop the remaining sources.
func (hp *HarvestProcess) Run(ctx context.Context) {
	for _, source := range hp.sources {
		amount, err := source.Harvest(ctx)
		if err != nil {
			node.LogWarn(ctx, "Harvest failed : source %s : %s", source.Name(), err)
			continue
		}
		if amount == 0 {
			continue
		}

		if err := hp.distributor.Distribute(ctx, hp.operator, amount); err != nil {
			if errors.Cause(err) == dividend.ErrNoShares {
				node.LogVerbose(ctx, "Harvest dropped, no shares : source %s, amount %d",
					source.Name(), amount)
				continue
			}
			node.LogWarn(ctx, "Distribute failed : source %s, amount %d : %s",
				source.Name(), amount, err)
		}
	}
}
