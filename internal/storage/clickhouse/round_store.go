package clickhouse

import (
	"context"
	"fmt"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/storage"
)

// RoundStore implements storage.RoundStore using ClickHouse.
type RoundStore struct {
	conn *Conn
}

// NewRoundStore creates a new RoundStore.
func NewRoundStore(conn *Conn) *RoundStore {
	return &RoundStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RoundStore = (*RoundStore)(nil)

// InsertBulk adds multiple rounds. Fails the entire batch on a duplicate
// (feed_pubkey, open_slot).
func (s *RoundStore) InsertBulk(ctx context.Context, rounds []*domain.Round) error {
	if len(rounds) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		feedPubkey string
		openSlot   uint64
	}
	seen := make(map[key]struct{})
	for _, r := range rounds {
		k := key{r.FeedPubkey, r.OpenSlot}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range rounds {
		exists, err := s.exists(ctx, r.FeedPubkey, r.OpenSlot)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO rounds (
			feed_pubkey, open_slot, timestamp_ms, mantissa, scale, value, std_dev, num_success, num_error
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rounds {
		if err := batch.Append(
			r.FeedPubkey,
			r.OpenSlot,
			r.TimestampMs,
			r.Mantissa,
			r.Scale,
			r.Value,
			r.StdDev,
			r.NumSuccess,
			r.NumError,
		); err != nil {
			return fmt.Errorf("append round: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// exists checks whether a round is already stored.
func (s *RoundStore) exists(ctx context.Context, feedPubkey string, openSlot uint64) (bool, error) {
	query := `
		SELECT count() FROM rounds
		WHERE feed_pubkey = ? AND open_slot = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, feedPubkey, openSlot).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByFeed retrieves all rounds for a feed, ordered by timestamp ASC.
func (s *RoundStore) GetByFeed(ctx context.Context, feedPubkey string) ([]*domain.Round, error) {
	query := `
		SELECT feed_pubkey, open_slot, timestamp_ms, mantissa, scale, value, std_dev, num_success, num_error
		FROM rounds
		WHERE feed_pubkey = ?
		ORDER BY timestamp_ms ASC, open_slot ASC
	`
	return s.queryRounds(ctx, query, feedPubkey)
}

// GetByTimeRange retrieves rounds for a feed within [start, end]
// milliseconds (inclusive).
func (s *RoundStore) GetByTimeRange(ctx context.Context, feedPubkey string, start, end int64) ([]*domain.Round, error) {
	query := `
		SELECT feed_pubkey, open_slot, timestamp_ms, mantissa, scale, value, std_dev, num_success, num_error
		FROM rounds
		WHERE feed_pubkey = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, open_slot ASC
	`
	return s.queryRounds(ctx, query, feedPubkey, start, end)
}

// LatestSlot returns the highest recorded open slot for a feed, or 0 if
// none.
func (s *RoundStore) LatestSlot(ctx context.Context, feedPubkey string) (uint64, error) {
	query := `
		SELECT max(open_slot) FROM rounds
		WHERE feed_pubkey = ?
	`

	var slot uint64
	if err := s.conn.QueryRow(ctx, query, feedPubkey).Scan(&slot); err != nil {
		return 0, fmt.Errorf("latest slot: %w", err)
	}
	return slot, nil
}

// queryRounds runs a round SELECT and scans the result set.
func (s *RoundStore) queryRounds(ctx context.Context, query string, args ...interface{}) ([]*domain.Round, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var result []*domain.Round
	for rows.Next() {
		var r domain.Round
		if err := rows.Scan(
			&r.FeedPubkey,
			&r.OpenSlot,
			&r.TimestampMs,
			&r.Mantissa,
			&r.Scale,
			&r.Value,
			&r.StdDev,
			&r.NumSuccess,
			&r.NumError,
		); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}

	return result, nil
}
