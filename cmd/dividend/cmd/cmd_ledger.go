package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/devbyteai/Diamond-Dividend-Vault/cmd/dividendd/bootstrap"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/holdings"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/vault"
)

var cmdLedger = &cobra.Command{
	Use:   "ledger",
	Short: "Load and print the ledger state.",
	Long:  "Load and print the ledger wide dividend accounting state.",
	RunE: func(c *cobra.Command, args []string) error {
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

		fmt.Printf("# Ledger\n\n")
		spew.Dump(ledger)

		keys, err := holdings.List(ctx, masterDB)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d holdings in storage\n", len(keys))

		return nil
	},
}
