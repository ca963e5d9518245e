package postgres

import (
	"context"
	"fmt"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/storage"
)

// FeedStore implements storage.FeedStore using PostgreSQL.
type FeedStore struct {
	pool *Pool
}

// NewFeedStore creates a new FeedStore.
func NewFeedStore(pool *Pool) *FeedStore {
	return &FeedStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeedStore = (*FeedStore)(nil)

// Insert adds a new feed. Returns ErrDuplicateKey if the pubkey exists.
func (s *FeedStore) Insert(ctx context.Context, f *domain.Feed) error {
	query := `
		INSERT INTO feeds (
			pubkey, name, queue, added_at
		) VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		f.Pubkey,
		f.Name,
		f.Queue,
		f.AddedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert feed: %w", err)
	}
	return nil
}

// GetByPubkey retrieves a feed. Returns ErrNotFound if not exists.
func (s *FeedStore) GetByPubkey(ctx context.Context, pubkey string) (*domain.Feed, error) {
	query := `
		SELECT pubkey, name, queue, added_at, created_at
		FROM feeds
		WHERE pubkey = $1
	`

	var f domain.Feed
	err := s.pool.QueryRow(ctx, query, pubkey).Scan(
		&f.Pubkey,
		&f.Name,
		&f.Queue,
		&f.AddedAt,
		&f.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get feed by pubkey: %w", err)
	}
	return &f, nil
}

// List retrieves all feeds, ordered by added_at ASC then pubkey ASC.
func (s *FeedStore) List(ctx context.Context) ([]*domain.Feed, error) {
	query := `
		SELECT pubkey, name, queue, added_at, created_at
		FROM feeds
		ORDER BY added_at ASC, pubkey ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*domain.Feed
	for rows.Next() {
		var f domain.Feed
		if err := rows.Scan(&f.Pubkey, &f.Name, &f.Queue, &f.AddedAt, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}

	return feeds, nil
}
