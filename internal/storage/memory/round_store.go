package memory

import (
	"context"
	"sort"
	"sync"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/storage"
)

// roundKey identifies one round uniquely.
type roundKey struct {
	feedPubkey string
	openSlot   uint64
}

// RoundStore is an in-memory implementation of storage.RoundStore.
type RoundStore struct {
	mu   sync.RWMutex
	data map[roundKey]*domain.Round
}

// NewRoundStore creates a new in-memory round store.
func NewRoundStore() *RoundStore {
	return &RoundStore{
		data: make(map[roundKey]*domain.Round),
	}
}

// InsertBulk adds multiple rounds. Fails the entire batch on a duplicate
// (feed_pubkey, open_slot).
func (s *RoundStore) InsertBulk(_ context.Context, rounds []*domain.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check intra-batch and existing duplicates before mutating anything
	seen := make(map[roundKey]struct{})
	for _, r := range rounds {
		if r == nil || r.FeedPubkey == "" {
			return storage.ErrInvalidInput
		}
		k := roundKey{r.FeedPubkey, r.OpenSlot}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, r := range rounds {
		roundCopy := *r
		s.data[roundKey{r.FeedPubkey, r.OpenSlot}] = &roundCopy
	}
	return nil
}

// GetByFeed retrieves all rounds for a feed, ordered by timestamp ASC.
func (s *RoundStore) GetByFeed(_ context.Context, feedPubkey string) ([]*domain.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Round
	for _, r := range s.data {
		if r.FeedPubkey == feedPubkey {
			roundCopy := *r
			result = append(result, &roundCopy)
		}
	}

	sortRounds(result)
	return result, nil
}

// GetByTimeRange retrieves rounds for a feed within [start, end]
// milliseconds (inclusive).
func (s *RoundStore) GetByTimeRange(_ context.Context, feedPubkey string, start, end int64) ([]*domain.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Round
	for _, r := range s.data {
		if r.FeedPubkey == feedPubkey && r.TimestampMs >= start && r.TimestampMs <= end {
			roundCopy := *r
			result = append(result, &roundCopy)
		}
	}

	sortRounds(result)
	return result, nil
}

// LatestSlot returns the highest recorded open slot for a feed, or 0 if
// none.
func (s *RoundStore) LatestSlot(_ context.Context, feedPubkey string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest uint64
	for _, r := range s.data {
		if r.FeedPubkey == feedPubkey && r.OpenSlot > latest {
			latest = r.OpenSlot
		}
	}
	return latest, nil
}

// sortRounds orders by (timestamp ASC, open slot ASC).
func sortRounds(rounds []*domain.Round) {
	sort.Slice(rounds, func(i, j int) bool {
		if rounds[i].TimestampMs != rounds[j].TimestampMs {
			return rounds[i].TimestampMs < rounds[j].TimestampMs
		}
		return rounds[i].OpenSlot < rounds[j].OpenSlot
	})
}

// Verify interface compliance at compile time.
var _ storage.RoundStore = (*RoundStore)(nil)
