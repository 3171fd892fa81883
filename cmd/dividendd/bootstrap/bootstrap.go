// Package bootstrap wires the shared pieces of the daemon and the CLI:
// logging context, configuration, storage, and the vault itself.
package bootstrap

import (
	"context"
	"encoding/json"

	"github.com/jonboulle/clockwork"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/config"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/db"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/logger"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/node"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/vault"
)

// NewContextWithLogger returns a Context carrying a logger and request ID.
func NewContextWithLogger() context.Context {
	return logger.NewContext()
}

// NewConfigFromEnv loads configuration from the environment and logs it
// with sensitive values masked.
func NewConfigFromEnv(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Environment()
	if err != nil {
		return nil, err
	}

	cfgSafe := config.SafeConfig(*cfg)
	cfgJSON, err := json.MarshalIndent(cfgSafe, "", "    ")
	if err != nil {
		return nil, err
	}
	node.Log(ctx, "Config : %s", string(cfgJSON))

	return cfg, nil
}

// NewMasterDB opens the storage backend selected by configuration.
func NewMasterDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	return db.New(&db.StorageConfig{
		Bucket:     cfg.Storage.Bucket,
		Root:       cfg.Storage.Root,
		MaxRetries: cfg.AWS.MaxRetries,
		RetryDelay: cfg.AWS.RetryDelay,
	})
}

// NewVault builds the vault on a real clock with the logging payer.
func NewVault(ctx context.Context, cfg *config.Config, masterDB *db.DB) (*vault.Vault, error) {
	return vault.New(cfg, masterDB, clockwork.NewRealClock(), NewLogPayer())
}

// LogPayer is the default settlement payer. It records each payout in the
// log; actual delivery belongs to the custody integration, which replaces
// this payer when wired in.
type LogPayer struct{}

func NewLogPayer() *LogPayer {
	return &LogPayer{}
}

func (lp *LogPayer) Pay(ctx context.Context, recipient state.Account, amount uint64) error {
	node.Log(ctx, "Payout : recipient %s, amount %d", recipient, amount)
	return nil
}
