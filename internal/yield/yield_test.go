package yield

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/dividend"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

type recordingDistributor struct {
	amounts []uint64
	err     error
}

func (rd *recordingDistributor) Distribute(ctx context.Context, source state.Account,
	amount uint64) error {
	if rd.err != nil {
		return rd.err
	}
	rd.amounts = append(rd.amounts, amount)
	return nil
}

func TestParseSources(t *testing.T) {
	sources, err := ParseSources("")
	require.NoError(t, err)
	assert.Empty(t, sources)

	sources, err = ParseSources("lending:250, staking:100")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "lending", sources[0].Name())
	assert.Equal(t, "staking", sources[1].Name())

	amount, err := sources[0].Harvest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(250), amount)

	_, err = ParseSources("lending")
	assert.ErrorIs(t, err, ErrInvalidSourceSpec)

	_, err = ParseSources("lending:abc")
	assert.ErrorIs(t, err, ErrInvalidSourceSpec)

	_, err = ParseSources(":250")
	assert.ErrorIs(t, err, ErrInvalidSourceSpec)
}

func TestHarvestDistributes(t *testing.T) {
	ctx := context.Background()
	distributor := &recordingDistributor{}

	process := NewHarvestProcess(distributor, state.Account{1}, []Source{
		NewFixedSource("lending", 250),
		NewFixedSource("idle", 0),
		NewFixedSource("staking", 100),
	})

	process.Run(ctx)

	// The zero harvest is skipped, the others distribute.
	assert.Equal(t, []uint64{250, 100}, distributor.amounts)
}

func TestHarvestSwallowsNoShares(t *testing.T) {
	ctx := context.Background()
	distributor := &recordingDistributor{
		err: errors.Wrap(dividend.ErrNoShares, "distribute"),
	}

	process := NewHarvestProcess(distributor, state.Account{1}, []Source{
		NewFixedSource("lending", 250),
	})

	// Must not panic or retry; the harvest is dropped.
	process.Run(ctx)
	assert.Empty(t, distributor.amounts)
}
