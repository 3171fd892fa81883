package tests

import (
	"math/rand"

	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
)

var testHelperRand = rand.New(rand.NewSource(985621))

// RandomAccount generates a random account identifier.
func RandomAccount() state.Account {
	var result state.Account
	for i := range result {
		result[i] = byte(testHelperRand.Intn(256))
	}
	return result
}
