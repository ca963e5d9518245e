package crank

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"solana-oracle-lab/internal/accounts"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/oracle"
	"solana-oracle-lab/internal/pda"
	"solana-oracle-lab/internal/solana"
)

// ErrMissingFundingRecord is returned when a selected aggregator's lease
// record cannot be fetched or decoded. The whole assembly aborts; skipping
// the aggregator would misalign the account list the program scans.
var ErrMissingFundingRecord = errors.New("funding record missing for aggregator")

// AssembleAccounts resolves the lease and escrow of every selected
// aggregator and returns the combined account list in canonical order:
// selected targets plus one (lease, escrow) pair each, globally sorted by
// raw address bytes. Output length is always 3 × len(selected).
//
// Lease records are re-fetched on every call; funds may have changed since
// the last pass.
func AssembleAccounts(ctx context.Context, store accounts.Store, programID, queue domain.Address, selected []domain.Address) ([]domain.Address, error) {
	assembled := make([]domain.Address, 0, 3*len(selected))
	assembled = append(assembled, selected...)

	leases := make([]domain.Address, len(selected))
	for i, aggregator := range selected {
		lease, _, err := pda.DeriveLease(programID, queue, aggregator)
		if err != nil {
			return nil, fmt.Errorf("derive lease for %s: %w", aggregator, err)
		}
		leases[i] = lease
	}

	bufs, err := store.FetchMany(ctx, leases)
	if err != nil {
		return nil, fmt.Errorf("fetch lease records: %w", err)
	}

	for i, buf := range bufs {
		if buf == nil {
			return nil, fmt.Errorf("%w: %s (lease %s)", ErrMissingFundingRecord, selected[i], leases[i])
		}
		lease, err := oracle.DecodeLease(buf)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMissingFundingRecord, selected[i], err)
		}
		assembled = append(assembled, leases[i], lease.Escrow)
	}

	domain.SortAddresses(assembled)

	return assembled, nil
}

// popInstructionName is the instruction discriminator name for crankPop.
const popInstructionName = "crank_pop"

// PopParams is the typed argument payload of the pop instruction.
type PopParams struct {
	StateBump uint8
}

// InstructionDiscriminator computes the 8-byte instruction discriminator:
// sha256("global:<name>")[:8].
func InstructionDiscriminator(name string) [8]byte {
	var d [8]byte
	sum := sha256.Sum256([]byte("global:" + name))
	copy(d[:], sum[:8])
	return d
}

// BuildPopInstruction produces the crankPop instruction: the fixed program
// accounts, then the assembled list in its canonical order, then the
// encoded params.
func BuildPopInstruction(programID, state, crankAddr, queue domain.Address, assembled []domain.Address, params PopParams) solana.Instruction {
	disc := InstructionDiscriminator(popInstructionName)
	data := append(disc[:], params.StateBump)

	metas := []solana.AccountMeta{
		{Address: crankAddr, Writable: true},
		{Address: queue, Writable: true},
		{Address: state},
	}
	for _, addr := range assembled {
		metas = append(metas, solana.AccountMeta{Address: addr, Writable: true})
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts:  metas,
		Data:      data,
	}
}
