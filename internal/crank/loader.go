package crank

import (
	"context"
	"fmt"

	"solana-oracle-lab/internal/accounts"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/oracle"
)

// Load fetches and decodes a crank account. The full row set is re-read on
// every call; there is no incremental diff protocol.
func Load(ctx context.Context, store accounts.Store, addr domain.Address) (*oracle.CrankAccount, error) {
	buf, err := store.Fetch(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("load crank %s: %w", addr, err)
	}
	c, err := oracle.DecodeCrank(buf)
	if err != nil {
		return nil, fmt.Errorf("load crank %s: %w", addr, err)
	}
	return c, nil
}
