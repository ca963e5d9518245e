package memory

import (
	"context"
	"sort"
	"sync"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/storage"
)

// FeedStore is an in-memory implementation of storage.FeedStore.
type FeedStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Feed // keyed by pubkey
}

// NewFeedStore creates a new in-memory feed store.
func NewFeedStore() *FeedStore {
	return &FeedStore{
		data: make(map[string]*domain.Feed),
	}
}

// Insert adds a new feed. Returns ErrDuplicateKey if the pubkey exists.
func (s *FeedStore) Insert(_ context.Context, f *domain.Feed) error {
	if f == nil || f.Pubkey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[f.Pubkey]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	feedCopy := *f
	s.data[f.Pubkey] = &feedCopy
	return nil
}

// GetByPubkey retrieves a feed. Returns ErrNotFound if not exists.
func (s *FeedStore) GetByPubkey(_ context.Context, pubkey string) (*domain.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.data[pubkey]
	if !exists {
		return nil, storage.ErrNotFound
	}

	feedCopy := *f
	return &feedCopy, nil
}

// List retrieves all feeds, ordered by added_at ASC then pubkey ASC.
func (s *FeedStore) List(_ context.Context) ([]*domain.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Feed, 0, len(s.data))
	for _, f := range s.data {
		feedCopy := *f
		result = append(result, &feedCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AddedAt != result[j].AddedAt {
			return result[i].AddedAt < result[j].AddedAt
		}
		return result[i].Pubkey < result[j].Pubkey
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.FeedStore = (*FeedStore)(nil)
