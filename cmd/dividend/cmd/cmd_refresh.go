package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/devbyteai/Diamond-Dividend-Vault/cmd/dividendd/bootstrap"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

var cmdRefresh = &cobra.Command{
	Use:   "refresh <hex> [hex...]",
	Short: "Refresh weighted shares for the given accounts.",
	Long: "Recompute the cached weighted share for each account and write the " +
		"result through to storage. Pulls forward caches left stale by holding " +
		"duration tier crossings.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("Missing accounts")
		}

		accounts := make([]state.Account, 0, len(args))
		for _, arg := range args {
			account, err := state.AccountFromString(arg)
			if err != nil {
				return errors.Wrap(err, arg)
			}
			accounts = append(accounts, account)
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

		v, err := bootstrap.NewVault(ctx, cfg, masterDB)
		if err != nil {
			return err
		}

		if err := v.RefreshWeightedSharesBatch(ctx, accounts); err != nil {
			return err
		}
		if err := v.Flush(ctx); err != nil {
			return err
		}

		fmt.Printf("Refreshed %d accounts, total weighted shares %d\n",
			len(accounts), v.TotalWeightedShares())
		return nil
	},
}
