package solana

import (
	"context"
	"errors"
	"testing"

	"solana-oracle-lab/internal/domain"
)

// stubRPC implements RPCClient for submitter tests.
type stubRPC struct {
	blockhash    string
	blockhashErr error
	sendErr      error
	sentTx       []byte
}

func (s *stubRPC) GetAccountInfo(context.Context, string) (*AccountInfo, error) {
	return nil, nil
}

func (s *stubRPC) GetMultipleAccounts(context.Context, []string) ([]*AccountInfo, error) {
	return nil, nil
}

func (s *stubRPC) GetSlot(context.Context) (int64, error) { return 0, nil }

func (s *stubRPC) GetBlockTime(context.Context, int64) (*int64, error) { return nil, nil }

func (s *stubRPC) GetLatestBlockhash(context.Context) (*Blockhash, error) {
	if s.blockhashErr != nil {
		return nil, s.blockhashErr
	}
	return &Blockhash{Blockhash: s.blockhash, LastValidBlockHeight: 100}, nil
}

func (s *stubRPC) SendTransaction(_ context.Context, tx []byte) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sentTx = tx
	return "stub-signature", nil
}

var _ RPCClient = (*stubRPC)(nil)

func TestSubmitter_Submit(t *testing.T) {
	payer, _ := newSigner(t)
	rpc := &stubRPC{blockhash: testBlockhash()}
	sub := NewSubmitter(rpc)

	ix := Instruction{
		ProgramID: testAddr(0xAA),
		Accounts:  []AccountMeta{{Address: testAddr(0x01), Writable: true}},
		Data:      []byte{1},
	}

	sig, err := sub.Submit(context.Background(), ix, []domain.AccountHandle{payer})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sig != "stub-signature" {
		t.Errorf("signature %q", sig)
	}
	if len(rpc.sentTx) == 0 {
		t.Error("no transaction was sent")
	}
}

func TestSubmitter_BlockhashError(t *testing.T) {
	payer, _ := newSigner(t)
	wantErr := errors.New("rpc down")
	sub := NewSubmitter(&stubRPC{blockhashErr: wantErr})

	_, err := sub.Submit(context.Background(), Instruction{ProgramID: testAddr(0xAA)}, []domain.AccountHandle{payer})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped blockhash error, got %v", err)
	}
}

func TestSubmitter_SendError(t *testing.T) {
	payer, _ := newSigner(t)
	wantErr := errors.New("blockhash expired")
	sub := NewSubmitter(&stubRPC{blockhash: testBlockhash(), sendErr: wantErr})

	ix := Instruction{
		ProgramID: testAddr(0xAA),
		Accounts:  []AccountMeta{{Address: testAddr(0x01), Writable: true}},
	}
	_, err := sub.Submit(context.Background(), ix, []domain.AccountHandle{payer})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}
