package cmd

import (
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/devbyteai/Diamond-Dividend-Vault/cmd/dividendd/bootstrap"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/dividend"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/holdings"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/vault"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/weights"
)

var cmdAccount = &cobra.Command{
	Use:   "account <hex>",
	Short: "Load and print an account's holding state.",
	Long:  "Load and print an account's holding record, weight, and dividend balances.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("Missing account")
		}

		account, err := state.AccountFromString(args[0])
		if err != nil {
			return err
		}

		ctx := bootstrap.NewContextWithLogger()
		cfg, err := bootstrap.NewConfigFromEnv(ctx)
		if err != nil {
			return err
		}
		masterDB, err := bootstrap.NewMasterDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer masterDB.Close()

		ledger, err := vault.FetchLedger(ctx, masterDB)
		if err != nil {
			return err
		}

		h, err := holdings.Fetch(ctx, masterDB, account)
		if err != nil {
			return err
		}

		now := state.NewTimestamp(time.Now())

		fmt.Printf("# Account %s\n\n", account)
		spew.Dump(h)

		fmt.Printf("\nHolding duration : %s\n", holdings.Duration(h, now))
		fmt.Printf("Effective multiplier : %d bps\n",
			weights.EffectiveMultiplier(ledger, h, now))
		fmt.Printf("Accumulated : %d\n", dividend.Accumulated(ledger, h))
		fmt.Printf("Withdrawable : %d\n", dividend.Withdrawable(ledger, h))
		fmt.Printf("Withdrawn : %d\n", h.Withdrawn)

		return nil
	},
}
