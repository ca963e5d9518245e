package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-oracle-lab/internal/accounts/rpc"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/monitor"
	"solana-oracle-lab/internal/observability"
	"solana-oracle-lab/internal/solana"
	"solana-oracle-lab/internal/storage"
	chstore "solana-oracle-lab/internal/storage/clickhouse"
	"solana-oracle-lab/internal/storage/memory"
	"solana-oracle-lab/internal/storage/migrations"
	pgstore "solana-oracle-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint (empty for poll-only)")
	feeds := flag.String("feeds", "", "Comma-separated aggregator addresses to watch")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the feed registry")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for round history")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	pollInterval := flag.Duration("poll-interval", 10*time.Second, "Feed poll interval")
	staleAfter := flag.Duration("stale-after", 0, "Flag feeds whose latest round is older than this (0 to disable)")
	metricsAddr := flag.String("metrics-addr", ":9091", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[monitor] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}

	feedList, err := parseFeeds(*feeds)
	if err != nil {
		logger.Fatalf("Invalid --feeds: %v", err)
	}
	if len(feedList) == 0 {
		logger.Fatal("--feeds is required")
	}

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create stores (use interfaces)
	var feedStore storage.FeedStore = memory.NewFeedStore()
	var roundStore storage.RoundStore = memory.NewRoundStore()

	if !*useMemory {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Postgres migrations: %v", err)
		}

		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Connect to clickhouse: %v", err)
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatalf("Clickhouse migrations: %v", err)
		}

		feedStore = pgstore.NewFeedStore(pool)
		roundStore = chstore.NewRoundStore(conn)
	}

	client := solana.NewHTTPClient(*rpcEndpoint)
	store := rpc.NewStore(client)

	var ws solana.WSClient
	if *wsEndpoint != "" {
		wsClient, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("Create websocket client: %v", err)
		}
		defer wsClient.Close()
		ws = wsClient
	}

	m, err := monitor.NewMonitor(monitor.Options{
		Store:        store,
		WS:           ws,
		FeedStore:    feedStore,
		RoundStore:   roundStore,
		Feeds:        feedList,
		PollInterval: *pollInterval,
		StaleAfter:   *staleAfter,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("Create monitor: %v", err)
	}

	if err := m.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// parseFeeds splits and validates the comma-separated feed list.
func parseFeeds(s string) ([]domain.Address, error) {
	var feeds []domain.Address
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		addr, err := domain.AddressFromBase58(part)
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", part, err)
		}
		feeds = append(feeds, addr)
	}
	return feeds, nil
}
