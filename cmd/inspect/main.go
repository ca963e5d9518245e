// Command inspect fetches one oracle account and prints its decoded form.
// With --derive it prints derived addresses instead of fetching.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-oracle-lab/internal/accounts/rpc"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/oracle"
	"solana-oracle-lab/internal/pda"
	"solana-oracle-lab/internal/solana"
)

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	address := flag.String("address", "", "Account address to fetch and decode (base58)")
	derive := flag.Bool("derive", false, "Derive addresses instead of fetching")
	programID := flag.String("program-id", "", "Oracle program ID (base58, for --derive)")
	queue := flag.String("queue", "", "Queue address (base58, for lease derivation)")
	aggregator := flag.String("aggregator", "", "Aggregator address (base58, for lease derivation)")

	flag.Parse()

	logger := log.New(os.Stderr, "[inspect] ", log.LstdFlags)

	if *derive {
		if err := runDerive(*programID, *queue, *aggregator); err != nil {
			logger.Fatalf("Error: %v", err)
		}
		return
	}

	if *rpcEndpoint == "" || *address == "" {
		logger.Fatal("--rpc-endpoint and --address are required")
	}

	addr, err := domain.AddressFromBase58(*address)
	if err != nil {
		logger.Fatalf("Invalid --address: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := rpc.NewStore(solana.NewHTTPClient(*rpcEndpoint))
	buf, err := store.Fetch(ctx, addr)
	if err != nil {
		logger.Fatalf("Fetch %s: %v", addr, err)
	}

	if err := printRecord(addr, buf); err != nil {
		logger.Fatalf("Decode %s: %v", addr, err)
	}
}

// runDerive prints the state address and, when queue and aggregator are
// given, the lease address.
func runDerive(programID, queue, aggregator string) error {
	program, err := domain.AddressFromBase58(programID)
	if err != nil {
		return fmt.Errorf("invalid --program-id: %w", err)
	}

	state, bump, err := pda.DeriveState(program)
	if err != nil {
		return err
	}
	fmt.Printf("state:      %s (bump %d)\n", state, bump)

	if queue == "" || aggregator == "" {
		return nil
	}
	q, err := domain.AddressFromBase58(queue)
	if err != nil {
		return fmt.Errorf("invalid --queue: %w", err)
	}
	a, err := domain.AddressFromBase58(aggregator)
	if err != nil {
		return fmt.Errorf("invalid --aggregator: %w", err)
	}
	lease, bump, err := pda.DeriveLease(program, q, a)
	if err != nil {
		return err
	}
	fmt.Printf("lease:      %s (bump %d)\n", lease, bump)
	return nil
}

// printRecord decodes the account by discriminator and prints its fields.
func printRecord(addr domain.Address, buf []byte) error {
	name, ok := oracle.RecordName(buf)
	if !ok {
		return fmt.Errorf("unknown discriminator (%d bytes)", len(buf))
	}

	fmt.Printf("address:    %s\n", addr)
	fmt.Printf("record:     %s\n", name)

	switch name {
	case "SbState":
		s, err := oracle.DecodeState(buf)
		if err != nil {
			return err
		}
		fmt.Printf("authority:  %s\n", s.Authority)
		fmt.Printf("tokenMint:  %s\n", s.TokenMint)
		fmt.Printf("tokenVault: %s\n", s.TokenVault)
		fmt.Printf("bump:       %d\n", s.Bump)

	case "AggregatorAccountData":
		agg, err := oracle.DecodeAggregator(buf)
		if err != nil {
			return err
		}
		fmt.Printf("name:       %s\n", agg.Name)
		fmt.Printf("queue:      %s\n", agg.Queue)
		fmt.Printf("batchSize:  %d\n", agg.OracleRequestBatchSize)
		fmt.Printf("minResults: %d\n", agg.MinOracleResults)
		fmt.Printf("minDelay:   %ds\n", agg.MinUpdateDelaySeconds)
		r := agg.LatestRound
		fmt.Printf("round:      slot=%d time=%d result=%s stddev=%s success=%d error=%d\n",
			r.OpenSlot, r.OpenTimestamp, r.Result, r.StdDeviation, r.NumSuccess, r.NumError)

	case "OracleAccountData":
		o, err := oracle.DecodeOracle(buf)
		if err != nil {
			return err
		}
		fmt.Printf("name:       %s\n", o.Name)
		fmt.Printf("authority:  %s\n", o.Authority)
		fmt.Printf("queue:      %s\n", o.Queue)
		fmt.Printf("token:      %s\n", o.TokenAccount)
		fmt.Printf("heartbeat:  %d\n", o.LastHeartbeat)
		fmt.Printf("inUse:      %d\n", o.NumInUse)

	case "OracleQueueAccountData":
		q, err := oracle.DecodeQueue(buf)
		if err != nil {
			return err
		}
		fmt.Printf("name:       %s\n", q.Name)
		fmt.Printf("authority:  %s\n", q.Authority)
		fmt.Printf("timeout:    %ds\n", q.OracleTimeout)
		fmt.Printf("reward:     %d\n", q.Reward)
		fmt.Printf("minStake:   %d\n", q.MinStake)
		fmt.Printf("slashing:   %v\n", q.SlashingEnabled)
		fmt.Printf("size:       %d\n", q.Size)

	case "LeaseAccountData":
		l, err := oracle.DecodeLease(buf)
		if err != nil {
			return err
		}
		fmt.Printf("escrow:     %s\n", l.Escrow)
		fmt.Printf("queue:      %s\n", l.Queue)
		fmt.Printf("aggregator: %s\n", l.Aggregator)
		fmt.Printf("withdraw:   %s\n", l.WithdrawAuthority)
		fmt.Printf("active:     %v\n", l.IsActive)

	case "PermissionAccountData":
		p, err := oracle.DecodePermission(buf)
		if err != nil {
			return err
		}
		fmt.Printf("authority:  %s\n", p.Authority)
		fmt.Printf("granter:    %s\n", p.Granter)
		fmt.Printf("grantee:    %s\n", p.Grantee)
		fmt.Printf("bits:       %#x\n", p.Permissions)
		fmt.Printf("bump:       %d\n", p.Bump)

	case "CrankAccountData":
		c, err := oracle.DecodeCrank(buf)
		if err != nil {
			return err
		}
		fmt.Printf("name:       %s\n", c.Name)
		fmt.Printf("queue:      %s\n", c.Queue)
		fmt.Printf("rows:       %d/%d\n", len(c.Rows), c.MaxRows)
		for _, row := range c.Rows {
			fmt.Printf("  %s due %d\n", row.Aggregator, row.NextTimestamp)
		}
	}

	return nil
}
