package crank

import (
	"context"
	"fmt"
	"log"
	"time"

	"solana-oracle-lab/internal/accounts"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/observability"
	"solana-oracle-lab/internal/pda"
	"solana-oracle-lab/internal/solana"
)

// Ledger submits signed instructions to the chain. The turner only builds
// the instruction; confirmation semantics, fees and retry policy belong to
// the implementation.
type Ledger interface {
	Submit(ctx context.Context, ix solana.Instruction, signers []domain.AccountHandle) (string, error)
}

// TurnerOptions configures a Turner.
type TurnerOptions struct {
	Store     accounts.Store
	Ledger    Ledger
	ProgramID domain.Address
	Crank     domain.Address
	Payer     domain.AccountHandle
	Limit     int
	Interval  time.Duration
	Logger    *log.Logger

	// Now overrides the clock for tests. Defaults to time.Now().Unix.
	Now func() int64

	// DryRun assembles and logs without submitting.
	DryRun bool
}

// Turner runs the pop cycle: load the crank fresh, select the ready set,
// assemble accounts, submit. State is re-fetched every pass; the turner
// keeps nothing between cycles.
type Turner struct {
	store     accounts.Store
	ledger    Ledger
	programID domain.Address
	crank     domain.Address
	payer     domain.AccountHandle
	limit     int
	interval  time.Duration
	logger    *log.Logger
	now       func() int64
	dryRun    bool

	state     domain.Address
	stateBump uint8
}

// NewTurner creates a Turner. The program state address is derived once up
// front; derivation is pure, so this is a cache of a constant, not state.
func NewTurner(opts TurnerOptions) (*Turner, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("turner: account store is required")
	}
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("turner: limit must be positive, got %d", opts.Limit)
	}
	if !opts.DryRun && opts.Ledger == nil {
		return nil, fmt.Errorf("turner: ledger is required unless dry-run")
	}
	if !opts.DryRun && !opts.Payer.CanSign() {
		return nil, fmt.Errorf("turner: payer must hold signing authority unless dry-run")
	}

	state, bump, err := pda.DeriveState(opts.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("turner: derive state: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[crank] ", log.LstdFlags)
	}

	return &Turner{
		store:     opts.Store,
		ledger:    opts.Ledger,
		programID: opts.ProgramID,
		crank:     opts.Crank,
		payer:     opts.Payer,
		limit:     opts.Limit,
		interval:  opts.Interval,
		logger:    logger,
		now:       now,
		dryRun:    opts.DryRun,
		state:     state,
		stateBump: bump,
	}, nil
}

// TurnResult reports one pop cycle.
type TurnResult struct {
	Ready     []domain.Address
	Accounts  []domain.Address
	Signature string
	Submitted bool
}

// TurnOnce runs a single pop cycle. An empty ready set is a valid outcome,
// not an error.
func (t *Turner) TurnOnce(ctx context.Context) (*TurnResult, error) {
	c, err := Load(ctx, t.store, t.crank)
	if err != nil {
		observability.RecordPopError("load")
		return nil, err
	}

	ready := SelectReady(c.Rows, t.now(), t.limit)
	observability.RecordReadySet(len(c.Rows), len(ready))
	if len(ready) == 0 {
		return &TurnResult{Ready: ready}, nil
	}

	assembled, err := AssembleAccounts(ctx, t.store, t.programID, c.Queue, ready)
	if err != nil {
		observability.RecordPopError("assemble")
		return nil, err
	}

	ix := BuildPopInstruction(t.programID, t.state, t.crank, c.Queue, assembled, PopParams{StateBump: t.stateBump})
	result := &TurnResult{Ready: ready, Accounts: assembled}

	if t.dryRun {
		t.logger.Printf("dry run: %d ready, %d accounts", len(ready), len(assembled))
		return result, nil
	}

	sig, err := t.ledger.Submit(ctx, ix, []domain.AccountHandle{t.payer})
	if err != nil {
		observability.RecordPopError("submit")
		return nil, fmt.Errorf("submit pop: %w", err)
	}
	observability.RecordPopSubmitted(len(ready))

	result.Signature = sig
	result.Submitted = true
	return result, nil
}

// Run turns the crank on the configured interval until the context is
// canceled. Individual cycle failures are logged and do not stop the loop;
// the next cycle re-reads everything anyway.
func (t *Turner) Run(ctx context.Context) error {
	if t.interval <= 0 {
		return fmt.Errorf("turner: interval must be positive")
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		res, err := t.TurnOnce(ctx)
		switch {
		case err != nil:
			t.logger.Printf("turn failed: %v", err)
		case res.Submitted:
			t.logger.Printf("popped %d rows, signature %s", len(res.Ready), res.Signature)
		case len(res.Ready) == 0:
			t.logger.Printf("nothing due")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
