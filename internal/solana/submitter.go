package solana

import (
	"context"
	"fmt"

	"solana-oracle-lab/internal/domain"
)

// Submitter builds, signs and sends transactions through an RPC client.
// It fetches a fresh blockhash per submission and leaves confirmation
// tracking to the caller.
type Submitter struct {
	client RPCClient
}

// NewSubmitter creates a Submitter over the given RPC client.
func NewSubmitter(client RPCClient) *Submitter {
	return &Submitter{client: client}
}

// Submit compiles the instruction into a signed transaction and sends it.
// The first signer pays the fee.
func (s *Submitter) Submit(ctx context.Context, ix Instruction, signers []domain.AccountHandle) (string, error) {
	bh, err := s.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get blockhash: %w", err)
	}

	tx, err := BuildTransaction([]Instruction{ix}, signers, bh.Blockhash)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	sig, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}
