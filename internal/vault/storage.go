package vault

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/db"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/tiers"
)

var (
	// ErrLedgerNotFound occurs when no ledger record exists in storage yet.
	ErrLedgerNotFound = errors.New("Ledger not found")
)

const ledgerStorageKey = "vault/ledger"

// FetchLedger reads the ledger record from storage.
func FetchLedger(ctx context.Context, dbConn *db.DB) (*state.Ledger, error) {
	ctx, span := trace.StartSpan(ctx, "vault.FetchLedger")
	defer span.End()

	b, err := dbConn.Fetch(ctx, ledgerStorageKey)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, ErrLedgerNotFound
		}

		return nil, errors.Wrap(err, "Failed to fetch ledger")
	}

	result, err := deserializeLedger(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to deserialize ledger")
	}

	return result, nil
}

// SaveLedger writes the ledger record to storage.
func SaveLedger(ctx context.Context, dbConn *db.DB, l *state.Ledger) error {
	ctx, span := trace.StartSpan(ctx, "vault.SaveLedger")
	defer span.End()

	data, err := serializeLedger(l)
	if err != nil {
		return errors.Wrap(err, "Failed to serialize ledger")
	}

	return dbConn.Put(ctx, ledgerStorageKey, data)
}

func serializeLedger(l *state.Ledger) ([]byte, error) {
	var buf bytes.Buffer

	// Version
	if err := binary.Write(&buf, binary.LittleEndian, uint8(0)); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, l.TotalWeightedShares); err != nil {
		return nil, err
	}

	b := l.MagnifiedDividendPerShare.Bytes()
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(b))); err != nil {
		return nil, err
	}
	if _, err := buf.Write(b); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, l.TotalDistributed); err != nil {
		return nil, err
	}

	if err := serializeTiers(&buf, l.HoldingTiers); err != nil {
		return nil, err
	}
	if err := serializeTiers(&buf, l.BalanceTiers); err != nil {
		return nil, err
	}

	if err := l.CreatedAt.Serialize(&buf); err != nil {
		return nil, err
	}
	if err := l.UpdatedAt.Serialize(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func deserializeLedger(buf *bytes.Reader) (*state.Ledger, error) {
	var result state.Ledger

	// Version
	var version uint8
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("Unknown version : %d", version)
	}

	if err := binary.Read(buf, binary.LittleEndian, &result.TotalWeightedShares); err != nil {
		return nil, err
	}

	var length uint32
	if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(buf, b); err != nil {
		return nil, err
	}
	result.MagnifiedDividendPerShare = new(big.Int).SetBytes(b)

	if err := binary.Read(buf, binary.LittleEndian, &result.TotalDistributed); err != nil {
		return nil, err
	}

	var err error
	result.HoldingTiers, err = deserializeTiers(buf)
	if err != nil {
		return nil, err
	}
	result.BalanceTiers, err = deserializeTiers(buf)
	if err != nil {
		return nil, err
	}

	result.CreatedAt, err = state.DeserializeTimestamp(buf)
	if err != nil {
		return nil, err
	}
	result.UpdatedAt, err = state.DeserializeTimestamp(buf)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func serializeTiers(buf *bytes.Buffer, table tiers.Table) error {
	if err := binary.Write(buf, binary.LittleEndian, uint8(len(table))); err != nil {
		return err
	}
	for _, tier := range table {
		if err := binary.Write(buf, binary.LittleEndian, tier.Threshold); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, tier.MultiplierBps); err != nil {
			return err
		}
	}
	return nil
}

func deserializeTiers(buf *bytes.Reader) (tiers.Table, error) {
	var count uint8
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	result := make(tiers.Table, count)
	for i := range result {
		if err := binary.Read(buf, binary.LittleEndian, &result[i].Threshold); err != nil {
			return nil, err
		}
		if err := binary.Read(buf, binary.LittleEndian, &result[i].MultiplierBps); err != nil {
			return nil, err
		}
	}
	return result, nil
}
