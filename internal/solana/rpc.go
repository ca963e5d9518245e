package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the oracle
// client.
type RPCClient interface {
	// GetAccountInfo retrieves account data by base58 public key.
	// Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetMultipleAccounts retrieves account data for up to 100 public keys
	// in one call. Missing accounts yield nil entries.
	GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*AccountInfo, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)

	// GetBlockTime retrieves the estimated production time of a block.
	GetBlockTime(ctx context.Context, slot int64) (*int64, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction
	// assembly.
	GetLatestBlockhash(ctx context.Context) (*Blockhash, error)

	// SendTransaction submits a signed, serialized transaction and returns
	// its signature.
	SendTransaction(ctx context.Context, serialized []byte) (string, error)
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       []byte // decoded account data
	Executable bool
	RentEpoch  uint64
}

// Blockhash is a recent blockhash plus its validity horizon.
type Blockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}
