// Package tests provides the shared harness for ledger level tests: a
// storage backed DB rooted in a temp directory, a fake clock to drive
// holding duration tier crossings, and a mock settlement payer.
package tests

import (
	"context"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/holdings"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/config"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/db"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/logger"
)

// Test holds the shared resources for a test run.
type Test struct {
	Context  context.Context
	Config   *config.Config
	MasterDB *db.DB
	Clock    clockwork.FakeClock
	Payer    *MockPayer

	path string
}

// New builds a test harness with filesystem storage under a fresh temp
// directory and a fake clock pinned to a fixed start time.
func New() (*Test, error) {
	result := Test{
		Context: logger.NewContext(),
	}

	path, err := os.MkdirTemp("", "vault_test")
	if err != nil {
		return nil, err
	}
	result.path = path

	result.Config = &config.Config{}
	result.Config.Vault.IsTest = true
	result.Config.Storage.Bucket = "standalone"
	result.Config.Storage.Root = path

	result.MasterDB, err = db.New(&db.StorageConfig{
		Bucket: result.Config.Storage.Bucket,
		Root:   result.Config.Storage.Root,
	})
	if err != nil {
		os.RemoveAll(path)
		return nil, err
	}

	result.Clock = clockwork.NewFakeClockAt(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	result.Payer = NewMockPayer()

	return &result, nil
}

// Reset clears the holdings cache and all stored state, leaving the
// harness ready for an independent scenario.
func (test *Test) Reset(ctx context.Context) error {
	holdings.Reset(ctx)
	test.Payer.Reset()
	return test.MasterDB.Clear(ctx, "vault")
}

// TearDown releases the harness resources.
func (test *Test) TearDown() {
	if test.MasterDB != nil {
		test.MasterDB.Close()
	}
	if len(test.path) > 0 {
		os.RemoveAll(test.path)
	}
}
