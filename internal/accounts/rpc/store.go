// Package rpc implements accounts.Store over the Solana RPC client.
package rpc

import (
	"context"
	"fmt"

	"solana-oracle-lab/internal/accounts"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/solana"
)

// Store fetches account data through a Solana RPC client.
type Store struct {
	client solana.RPCClient
}

// NewStore creates a new RPC-backed account store.
func NewStore(client solana.RPCClient) *Store {
	return &Store{client: client}
}

// Fetch returns the raw data of a single account.
func (s *Store) Fetch(ctx context.Context, addr domain.Address) ([]byte, error) {
	info, err := s.client.GetAccountInfo(ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", addr, err)
	}
	if info == nil {
		return nil, fmt.Errorf("fetch %s: %w", addr, accounts.ErrNotFound)
	}
	return info.Data, nil
}

// FetchMany returns raw data for each address in order, batching through
// getMultipleAccounts. Missing accounts yield nil elements.
func (s *Store) FetchMany(ctx context.Context, addrs []domain.Address) ([][]byte, error) {
	result := make([][]byte, len(addrs))

	for start := 0; start < len(addrs); start += solana.MaxMultipleAccounts {
		end := start + solana.MaxMultipleAccounts
		if end > len(addrs) {
			end = len(addrs)
		}

		keys := make([]string, 0, end-start)
		for _, addr := range addrs[start:end] {
			keys = append(keys, addr.String())
		}

		infos, err := s.client.GetMultipleAccounts(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("fetch batch [%d:%d]: %w", start, end, err)
		}
		for i, info := range infos {
			if info != nil {
				result[start+i] = info.Data
			}
		}
	}

	return result, nil
}

// Verify interface compliance at compile time.
var _ accounts.Store = (*Store)(nil)
