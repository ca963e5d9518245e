package main

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-oracle-lab/internal/accounts/rpc"
	"solana-oracle-lab/internal/crank"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/observability"
	"solana-oracle-lab/internal/solana"
)

func main() {
	// Parse flags
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	programID := flag.String("program-id", "", "Oracle program ID (base58)")
	crankAddr := flag.String("crank", "", "Crank account address (base58)")
	payerPath := flag.String("payer", "", "Path to payer keypair file (Solana CLI JSON format)")
	limit := flag.Int("limit", 10, "Maximum rows to pop per cycle")
	interval := flag.Duration("interval", 5*time.Second, "Interval between pop cycles")
	once := flag.Bool("once", false, "Run a single pop cycle and exit")
	dryRun := flag.Bool("dry-run", false, "Assemble and log without submitting")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[crank] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}

	program, err := domain.AddressFromBase58(*programID)
	if err != nil {
		logger.Fatalf("Invalid --program-id: %v", err)
	}
	crankAccount, err := domain.AddressFromBase58(*crankAddr)
	if err != nil {
		logger.Fatalf("Invalid --crank: %v", err)
	}

	var payer domain.AccountHandle
	if *payerPath != "" {
		payer, err = loadKeypair(*payerPath)
		if err != nil {
			logger.Fatalf("Load payer keypair: %v", err)
		}
	} else if !*dryRun {
		logger.Fatal("--payer is required unless --dry-run")
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

	client := solana.NewHTTPClient(*rpcEndpoint)
	store := rpc.NewStore(client)

	var ledger crank.Ledger
	if !*dryRun {
		ledger = solana.NewSubmitter(client)
	}

	turner, err := crank.NewTurner(crank.TurnerOptions{
		Store:     store,
		Ledger:    ledger,
		ProgramID: program,
		Crank:     crankAccount,
		Payer:     payer,
		Limit:     *limit,
		Interval:  *interval,
		Logger:    logger,
		DryRun:    *dryRun,
	})
	if err != nil {
		logger.Fatalf("Create turner: %v", err)
	}

	if *once {
		res, err := turner.TurnOnce(ctx)
		if err != nil {
			logger.Fatalf("Error: %v", err)
		}
		logger.Printf("ready=%d accounts=%d submitted=%v signature=%s",
			len(res.Ready), len(res.Accounts), res.Submitted, res.Signature)
		return
	}

	if err := turner.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// loadKeypair reads a Solana CLI keypair file: a JSON array of 64 bytes
// holding the ed25519 seed followed by the public key.
func loadKeypair(path string) (domain.AccountHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AccountHandle{}, fmt.Errorf("read keypair file: %w", err)
	}

	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return domain.AccountHandle{}, fmt.Errorf("parse keypair file: %w", err)
	}
	if len(nums) != ed25519.PrivateKeySize {
		return domain.AccountHandle{}, fmt.Errorf("keypair file holds %d bytes, want %d", len(nums), ed25519.PrivateKeySize)
	}

	raw := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return domain.AccountHandle{}, fmt.Errorf("keypair byte %d out of range: %d", i, n)
		}
		raw[i] = byte(n)
	}

	return domain.OwnedAccount(ed25519.PrivateKey(raw))
}
