package main

import (
	"github.com/devbyteai/Diamond-Dividend-Vault/cmd/dividend/cmd"
)

// Dividend Vault CLI
func main() {
	cmd.Execute()
}
