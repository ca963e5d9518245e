// Package monitor records the round history of watched aggregator feeds.
//
// The monitor is read-only on chain state: it polls (and optionally
// subscribes to) aggregator accounts, decodes their latest round, and
// appends new rounds to the round store keyed by (feed, open slot).
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-oracle-lab/internal/accounts"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/observability"
	"solana-oracle-lab/internal/oracle"
	"solana-oracle-lab/internal/solana"
	"solana-oracle-lab/internal/storage"
)

// Options contains configuration for creating a Monitor.
type Options struct {
	Store      accounts.Store  // account fetcher, required
	WS         solana.WSClient // optional; poll-only when nil
	FeedStore  storage.FeedStore
	RoundStore storage.RoundStore
	Feeds      []domain.Address

	// PollInterval is how often every feed is refetched. Default: 10s.
	PollInterval time.Duration

	// StaleAfter marks a feed stale when its latest round is older than
	// this. Zero disables staleness tracking.
	StaleAfter time.Duration

	Logger *log.Logger

	// Now returns current unix time in seconds. Defaults to time.Now.
	Now func() int64
}

// Monitor watches aggregator feeds and persists their rounds.
type Monitor struct {
	store      accounts.Store
	ws         solana.WSClient
	feedStore  storage.FeedStore
	roundStore storage.RoundStore
	feeds      []domain.Address
	interval   time.Duration
	staleAfter time.Duration
	logger     *log.Logger
	now        func() int64

	// lastSlot is the highest recorded open slot per feed. Seeded from
	// the round store on startup so restarts do not re-insert rounds.
	lastSlot map[domain.Address]uint64
}

// NewMonitor creates a feed monitor.
func NewMonitor(opts Options) (*Monitor, error) {
	if opts.Store == nil {
		return nil, errors.New("monitor: account store is required")
	}
	if opts.RoundStore == nil {
		return nil, errors.New("monitor: round store is required")
	}
	if len(opts.Feeds) == 0 {
		return nil, errors.New("monitor: at least one feed is required")
	}

	interval := opts.PollInterval
	if interval == 0 {
		interval = 10 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}

	feeds := make([]domain.Address, len(opts.Feeds))
	copy(feeds, opts.Feeds)

	return &Monitor{
		store:      opts.Store,
		ws:         opts.WS,
		feedStore:  opts.FeedStore,
		roundStore: opts.RoundStore,
		feeds:      feeds,
		interval:   interval,
		staleAfter: opts.StaleAfter,
		logger:     logger,
		now:        now,
		lastSlot:   make(map[domain.Address]uint64),
	}, nil
}

// Run starts the monitor. It blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Printf("Starting feed monitor, %d feeds, poll interval %v", len(m.feeds), m.interval)
	observability.UpdateFeedsWatched(len(m.feeds))

	if err := m.seedLastSlots(ctx); err != nil {
		return err
	}

	// Initial poll registers feeds and records the current round.
	m.pollAll(ctx)

	// Subscriptions push updates between polls; polling remains the
	// source of truth so a dropped subscription only adds latency.
	notifCh := make(chan feedNotification, 256)
	if m.ws != nil {
		if err := m.subscribeAll(ctx, notifCh); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Println("Monitor stopping...")
			return ctx.Err()

		case notif := <-notifCh:
			m.handleAccount(ctx, notif.feed, notif.data)

		case <-ticker.C:
			m.pollAll(ctx)
		}
	}
}

type feedNotification struct {
	feed domain.Address
	data []byte
}

// seedLastSlots loads the highest stored open slot for every feed.
func (m *Monitor) seedLastSlots(ctx context.Context) error {
	for _, feed := range m.feeds {
		slot, err := m.roundStore.LatestSlot(ctx, feed.String())
		if err != nil {
			return fmt.Errorf("seed latest slot for %s: %w", feed, err)
		}
		m.lastSlot[feed] = slot
	}
	return nil
}

// subscribeAll opens one account subscription per feed and funnels
// notifications into notifCh.
func (m *Monitor) subscribeAll(ctx context.Context, notifCh chan<- feedNotification) error {
	for _, feed := range m.feeds {
		feed := feed
		ch, err := m.ws.SubscribeAccount(ctx, feed.String())
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", feed, err)
		}
		go func() {
			for notif := range ch {
				select {
				case notifCh <- feedNotification{feed: feed, data: notif.Data}:
				case <-ctx.Done():
					return
				}
			}
		}()
		m.logger.Printf("Subscribed to feed %s", feed)
	}
	return nil
}

// pollAll fetches every watched feed in one batched call.
func (m *Monitor) pollAll(ctx context.Context) {
	bufs, err := m.store.FetchMany(ctx, m.feeds)
	if err != nil {
		observability.RecordMonitorError("fetch")
		m.logger.Printf("Error fetching feeds: %v", err)
		return
	}

	observability.DefaultMetrics.LastSuccessfulPoll.Set(float64(m.now()))

	for i, buf := range bufs {
		if buf == nil {
			observability.RecordMonitorError("missing")
			m.logger.Printf("Feed account %s not found", m.feeds[i])
			continue
		}
		m.handleAccount(ctx, m.feeds[i], buf)
	}
}

// handleAccount decodes one aggregator snapshot and records its round if
// it has not been seen before.
func (m *Monitor) handleAccount(ctx context.Context, feed domain.Address, data []byte) {
	agg, err := oracle.DecodeAggregator(data)
	if err != nil {
		observability.RecordMonitorError("decode")
		m.logger.Printf("Error decoding feed %s: %v", feed, err)
		return
	}

	m.registerFeed(ctx, feed, agg)
	m.checkStaleness(feed, agg)

	round := agg.LatestRound
	if round.OpenSlot == 0 || round.OpenSlot <= m.lastSlot[feed] {
		return
	}

	row := &domain.Round{
		FeedPubkey:  feed.String(),
		OpenSlot:    round.OpenSlot,
		TimestampMs: round.OpenTimestamp * 1000,
		Mantissa:    round.Result.Mantissa().String(),
		Scale:       round.Result.Scale(),
		Value:       round.Result.Value().InexactFloat64(),
		StdDev:      round.StdDeviation.Value().InexactFloat64(),
		NumSuccess:  round.NumSuccess,
		NumError:    round.NumError,
	}

	if err := m.roundStore.InsertBulk(ctx, []*domain.Round{row}); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Another monitor instance got there first.
			m.lastSlot[feed] = round.OpenSlot
			return
		}
		observability.RecordMonitorError("insert")
		m.logger.Printf("Error storing round for %s: %v", feed, err)
		return
	}

	m.lastSlot[feed] = round.OpenSlot
	observability.RecordRoundRecorded()
	m.logger.Printf("Recorded round for %s: slot=%d value=%s", feed, round.OpenSlot, round.Result)
}

// registerFeed upserts the feed registry row. Duplicates are expected on
// every poll after the first.
func (m *Monitor) registerFeed(ctx context.Context, feed domain.Address, agg *oracle.AggregatorAccount) {
	if m.feedStore == nil {
		return
	}

	f := &domain.Feed{
		Pubkey:  feed.String(),
		Name:    agg.Name,
		Queue:   agg.Queue.String(),
		AddedAt: m.now() * 1000,
	}
	if err := m.feedStore.Insert(ctx, f); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		observability.RecordMonitorError("register")
		m.logger.Printf("Error registering feed %s: %v", feed, err)
	}
}

// checkStaleness flags feeds whose latest round is older than the
// configured threshold.
func (m *Monitor) checkStaleness(feed domain.Address, agg *oracle.AggregatorAccount) {
	if m.staleAfter == 0 {
		return
	}
	age := m.now() - agg.LatestRound.OpenTimestamp
	if age > int64(m.staleAfter/time.Second) {
		observability.RecordStaleRound()
		m.logger.Printf("Feed %s is stale: last round %ds ago", feed, age)
	}
}
