package clickhouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/storage"
	chstore "solana-oracle-lab/internal/storage/clickhouse"
)

func testRound(feed string, slot uint64, ts int64) *domain.Round {
	return &domain.Round{
		FeedPubkey:  feed,
		OpenSlot:    slot,
		TimestampMs: ts,
		Mantissa:    "1234500000",
		Scale:       8,
		Value:       12.345,
		StdDev:      0.01,
		NumSuccess:  7,
		NumError:    0,
	}
}

func TestRoundStore_InsertBulkAndGetByFeed(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewRoundStore(conn)
	ctx := context.Background()

	rounds := []*domain.Round{
		testRound("feedA", 100, 1000),
		testRound("feedA", 101, 2000),
		testRound("feedB", 100, 1500),
	}
	require.NoError(t, store.InsertBulk(ctx, rounds))

	got, err := store.GetByFeed(ctx, "feedA")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(100), got[0].OpenSlot)
	assert.Equal(t, uint64(101), got[1].OpenSlot)
	assert.Equal(t, "1234500000", got[0].Mantissa)
	assert.Equal(t, uint32(8), got[0].Scale)
}

func TestRoundStore_InsertBulk_DuplicateFailsBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewRoundStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Round{testRound("feedA", 100, 1000)}))

	// Same (feed, open_slot) again fails the whole batch
	err := store.InsertBulk(ctx, []*domain.Round{
		testRound("feedA", 100, 9999),
		testRound("feedA", 200, 3000),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The non-duplicate row must not have been written
	got, err := store.GetByFeed(ctx, "feedA")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRoundStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewRoundStore(conn)

	err := store.InsertBulk(context.Background(), []*domain.Round{
		testRound("feedA", 100, 1000),
		testRound("feedA", 100, 2000),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRoundStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewRoundStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Round{
		testRound("feedA", 100, 1000),
		testRound("feedA", 101, 2000),
		testRound("feedA", 102, 3000),
	}))

	got, err := store.GetByTimeRange(ctx, "feedA", 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].TimestampMs)
	assert.Equal(t, int64(2000), got[1].TimestampMs)
}

func TestRoundStore_LatestSlot(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewRoundStore(conn)
	ctx := context.Background()

	slot, err := store.LatestSlot(ctx, "feedA")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), slot)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Round{
		testRound("feedA", 100, 1000),
		testRound("feedA", 250, 2000),
	}))

	slot, err = store.LatestSlot(ctx, "feedA")
	require.NoError(t, err)
	assert.Equal(t, uint64(250), slot)
}
