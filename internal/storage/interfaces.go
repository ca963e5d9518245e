// Package storage defines the persistence interfaces of the feed monitor.
//
// Nothing in the pop path persists state; storage backs the monitoring
// feature only, and every interface has an in-memory implementation for
// running without a database.
package storage

import (
	"context"

	"solana-oracle-lab/internal/domain"
)

// FeedStore provides access to the watched-feed registry.
type FeedStore interface {
	// Insert adds a new feed. Returns ErrDuplicateKey if the pubkey exists.
	Insert(ctx context.Context, f *domain.Feed) error

	// GetByPubkey retrieves a feed. Returns ErrNotFound if not exists.
	GetByPubkey(ctx context.Context, pubkey string) (*domain.Feed, error)

	// List retrieves all feeds, ordered by added_at ASC then pubkey ASC.
	List(ctx context.Context) ([]*domain.Feed, error)
}

// RoundStore provides access to round history storage.
type RoundStore interface {
	// InsertBulk adds multiple rounds. Fails the entire batch on a
	// duplicate (feed_pubkey, open_slot).
	InsertBulk(ctx context.Context, rounds []*domain.Round) error

	// GetByFeed retrieves all rounds for a feed, ordered by timestamp ASC.
	GetByFeed(ctx context.Context, feedPubkey string) ([]*domain.Round, error)

	// GetByTimeRange retrieves rounds for a feed within [start, end]
	// milliseconds (inclusive).
	GetByTimeRange(ctx context.Context, feedPubkey string, start, end int64) ([]*domain.Round, error)

	// LatestSlot returns the highest recorded open slot for a feed, or 0
	// if none.
	LatestSlot(ctx context.Context, feedPubkey string) (uint64, error)
}
