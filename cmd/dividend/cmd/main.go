package cmd

import (
	"github.com/spf13/cobra"
)

var dvCmd = &cobra.Command{
	Use:   "dividend",
	Short: "Dividend Vault CLI",
}

func Execute() {
	dvCmd.AddCommand(cmdAccount)
	dvCmd.AddCommand(cmdLedger)
	dvCmd.AddCommand(cmdRefresh)
	dvCmd.Execute()
}
