package memory

import (
	"context"
	"sync"

	"solana-oracle-lab/internal/accounts"
	"solana-oracle-lab/internal/domain"
)

// Store is an in-memory implementation of accounts.Store for tests and dry
// runs.
type Store struct {
	mu   sync.RWMutex
	data map[domain.Address][]byte
}

// NewStore creates an empty in-memory account store.
func NewStore() *Store {
	return &Store{data: make(map[domain.Address][]byte)}
}

// Set stores account data, replacing any previous value.
func (s *Store) Set(addr domain.Address, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	buf := make([]byte, len(data))
	copy(buf, data)
	s.data[addr] = buf
}

// Delete removes an account.
func (s *Store) Delete(addr domain.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, addr)
}

// Fetch returns the raw data of a single account.
func (s *Store) Fetch(_ context.Context, addr domain.Address) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[addr]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// FetchMany returns raw data for each address in order, nil for missing.
func (s *Store) FetchMany(_ context.Context, addrs []domain.Address) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([][]byte, len(addrs))
	for i, addr := range addrs {
		data, ok := s.data[addr]
		if !ok {
			continue
		}
		buf := make([]byte, len(data))
		copy(buf, data)
		result[i] = buf
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ accounts.Store = (*Store)(nil)
