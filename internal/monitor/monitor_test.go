package monitor

import (
	"context"
	"testing"
	"time"

	acctmemory "solana-oracle-lab/internal/accounts/memory"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/fixedpoint"
	"solana-oracle-lab/internal/oracle"
	"solana-oracle-lab/internal/oracle/oracletest"
	storememory "solana-oracle-lab/internal/storage/memory"
)

func testAggregator(openSlot uint64, openTime int64) *oracle.AggregatorAccount {
	return &oracle.AggregatorAccount{
		Name:  "SOL/USD",
		Queue: oracletest.Addr(0xF1),
		LatestRound: oracle.RoundResult{
			NumSuccess:    5,
			OpenSlot:      openSlot,
			OpenTimestamp: openTime,
			Result:        fixedpoint.New(12345678900, 8),
			StdDeviation:  fixedpoint.New(100, 8),
		},
	}
}

// runUntilCancel runs the monitor until the deadline and swallows the
// context error.
func runUntilCancel(t *testing.T, m *Monitor, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := m.Run(ctx); err != context.DeadlineExceeded && err != context.Canceled {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestMonitor_RecordsRoundAndRegistersFeed(t *testing.T) {
	feed := oracletest.Addr(0x01)
	accounts := acctmemory.NewStore()
	accounts.Set(feed, oracletest.EncodeAggregator(testAggregator(500, 1700000000)))

	feedStore := storememory.NewFeedStore()
	roundStore := storememory.NewRoundStore()

	m, err := NewMonitor(Options{
		Store:        accounts,
		FeedStore:    feedStore,
		RoundStore:   roundStore,
		Feeds:        []domain.Address{feed},
		PollInterval: time.Hour,
		Now:          func() int64 { return 1700000100 },
	})
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}

	runUntilCancel(t, m, 50*time.Millisecond)

	rounds, err := roundStore.GetByFeed(context.Background(), feed.String())
	if err != nil {
		t.Fatalf("GetByFeed failed: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("got %d rounds, want 1", len(rounds))
	}
	r := rounds[0]
	if r.OpenSlot != 500 {
		t.Errorf("open slot %d, want 500", r.OpenSlot)
	}
	if r.TimestampMs != 1700000000*1000 {
		t.Errorf("timestamp %d, want ms conversion", r.TimestampMs)
	}
	if r.Mantissa != "12345678900" || r.Scale != 8 {
		t.Errorf("exact value %s/%d, want 12345678900/8", r.Mantissa, r.Scale)
	}
	if r.NumSuccess != 5 {
		t.Errorf("num success %d, want 5", r.NumSuccess)
	}

	f, err := feedStore.GetByPubkey(context.Background(), feed.String())
	if err != nil {
		t.Fatalf("feed was not registered: %v", err)
	}
	if f.Name != "SOL/USD" {
		t.Errorf("feed name %q, want SOL/USD", f.Name)
	}
}

func TestMonitor_DoesNotReinsertSeenRound(t *testing.T) {
	feed := oracletest.Addr(0x01)
	accounts := acctmemory.NewStore()
	accounts.Set(feed, oracletest.EncodeAggregator(testAggregator(500, 1700000000)))

	roundStore := storememory.NewRoundStore()

	opts := Options{
		Store:        accounts,
		RoundStore:   roundStore,
		Feeds:        []domain.Address{feed},
		PollInterval: time.Hour,
		Now:          func() int64 { return 1700000100 },
	}

	m, err := NewMonitor(opts)
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}
	runUntilCancel(t, m, 50*time.Millisecond)

	// A restarted monitor seeds from the round store and must not insert
	// the same round again.
	m2, err := NewMonitor(opts)
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}
	runUntilCancel(t, m2, 50*time.Millisecond)

	rounds, _ := roundStore.GetByFeed(context.Background(), feed.String())
	if len(rounds) != 1 {
		t.Errorf("got %d rounds after restart, want 1", len(rounds))
	}
}

func TestMonitor_RecordsNewRoundOnAdvance(t *testing.T) {
	feed := oracletest.Addr(0x01)
	accounts := acctmemory.NewStore()
	accounts.Set(feed, oracletest.EncodeAggregator(testAggregator(500, 1700000000)))

	roundStore := storememory.NewRoundStore()
	m, err := NewMonitor(Options{
		Store:        accounts,
		RoundStore:   roundStore,
		Feeds:        []domain.Address{feed},
		PollInterval: 10 * time.Millisecond,
		Now:          func() int64 { return 1700000100 },
	})
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}

	// Advance the on-chain round while the monitor polls.
	go func() {
		time.Sleep(30 * time.Millisecond)
		accounts.Set(feed, oracletest.EncodeAggregator(testAggregator(501, 1700000030)))
	}()

	runUntilCancel(t, m, 150*time.Millisecond)

	rounds, _ := roundStore.GetByFeed(context.Background(), feed.String())
	if len(rounds) != 2 {
		t.Fatalf("got %d rounds, want 2", len(rounds))
	}
	if rounds[1].OpenSlot != 501 {
		t.Errorf("second round slot %d, want 501", rounds[1].OpenSlot)
	}
}

func TestMonitor_SkipsUndecodableAccount(t *testing.T) {
	feed := oracletest.Addr(0x01)
	accounts := acctmemory.NewStore()
	accounts.Set(feed, []byte{1, 2, 3})

	roundStore := storememory.NewRoundStore()
	m, err := NewMonitor(Options{
		Store:        accounts,
		RoundStore:   roundStore,
		Feeds:        []domain.Address{feed},
		PollInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}

	runUntilCancel(t, m, 50*time.Millisecond)

	rounds, _ := roundStore.GetByFeed(context.Background(), feed.String())
	if len(rounds) != 0 {
		t.Errorf("undecodable account produced %d rounds", len(rounds))
	}
}

func TestNewMonitor_Validation(t *testing.T) {
	accounts := acctmemory.NewStore()
	roundStore := storememory.NewRoundStore()
	feeds := []domain.Address{oracletest.Addr(1)}

	cases := []struct {
		name string
		opts Options
	}{
		{"missing store", Options{RoundStore: roundStore, Feeds: feeds}},
		{"missing round store", Options{Store: accounts, Feeds: feeds}},
		{"no feeds", Options{Store: accounts, RoundStore: roundStore}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewMonitor(tc.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}
