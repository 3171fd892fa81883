package vault

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

func TestLedgerSerializeRoundTrip(t *testing.T) {
	l := state.NewLedger(state.NewTimestamp(time.Unix(5000, 0)))
	l.TotalWeightedShares = 123456
	l.TotalDistributed = 987654
	l.MagnifiedDividendPerShare = new(big.Int).Lsh(big.NewInt(42), 130)
	l.UpdatedAt = state.NewTimestamp(time.Unix(6000, 0))

	var err error
	l.HoldingTiers, err = l.HoldingTiers.Set(5, uint64(500*24*time.Hour), 25000)
	if err != nil {
		t.Fatalf("Failed to extend holding tiers : %v", err)
	}

	data, err := serializeLedger(l)
	if err != nil {
		t.Fatalf("Failed to serialize ledger : %v", err)
	}

	read, err := deserializeLedger(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to deserialize ledger : %v", err)
	}

	if diff := cmp.Diff(l, read, cmpopts.IgnoreUnexported(big.Int{})); diff != "" {
		t.Fatalf("Ledger round trip mismatch (-want +got):\n%s", diff)
	}
	if l.MagnifiedDividendPerShare.Cmp(read.MagnifiedDividendPerShare) != 0 {
		t.Fatalf("Accumulator mismatch : %s != %s", l.MagnifiedDividendPerShare,
			read.MagnifiedDividendPerShare)
	}
}
