// Package accounts abstracts the remote account store: raw byte buffers
// addressed by account address. The core scheduling logic never caches
// through this interface; every pass re-fetches what it needs.
package accounts

import (
	"context"
	"errors"

	"solana-oracle-lab/internal/domain"
)

// ErrNotFound is returned when an account does not exist on the remote
// store.
var ErrNotFound = errors.New("account not found")

// Store provides read access to remote account data.
type Store interface {
	// Fetch returns the raw data of a single account.
	// Returns ErrNotFound if the account does not exist.
	Fetch(ctx context.Context, addr domain.Address) ([]byte, error)

	// FetchMany returns raw data for each address in order. Missing
	// accounts yield a nil element, not an error; transport failures
	// fail the whole call.
	FetchMany(ctx context.Context, addrs []domain.Address) ([][]byte, error)
}
