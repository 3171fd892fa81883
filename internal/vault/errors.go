package vault

import (
	"github.com/pkg/errors"
)

var (
	// ErrNothingToClaim occurs when a withdrawal finds no withdrawable
	// dividend. Recoverable, the caller waits for more to accrue.
	ErrNothingToClaim = errors.New("Nothing to claim")

	// ErrTransferFailed occurs when the settlement payout fails. The
	// withdrawal bookkeeping is rolled back, so a retry is safe.
	ErrTransferFailed = errors.New("Settlement transfer failed")

	// ErrUnauthorized occurs when a privileged call arrives from an account
	// other than the configured owner.
	ErrUnauthorized = errors.New("Unauthorized")

	// ErrOperationInProgress occurs when a mutating call arrives while
	// another operation holds the ledger, including a payout callback
	// attempting to re-enter.
	ErrOperationInProgress = errors.New("Operation in progress")

	// ErrInvalidTransfer occurs when a balance change names no accounts.
	ErrInvalidTransfer = errors.New("Invalid transfer")
)
