package rpc

import (
	"context"
	"errors"
	"testing"

	"solana-oracle-lab/internal/accounts"
	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/solana"
)

// stubClient serves canned account data keyed by base58 pubkey.
type stubClient struct {
	data    map[string][]byte
	batches [][]string
	err     error
}

func (s *stubClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	buf, ok := s.data[pubkey]
	if !ok {
		return nil, nil
	}
	return &solana.AccountInfo{Data: buf}, nil
}

func (s *stubClient) GetMultipleAccounts(_ context.Context, pubkeys []string) ([]*solana.AccountInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, pubkeys)
	infos := make([]*solana.AccountInfo, len(pubkeys))
	for i, pk := range pubkeys {
		if buf, ok := s.data[pk]; ok {
			infos[i] = &solana.AccountInfo{Data: buf}
		}
	}
	return infos, nil
}

func (s *stubClient) GetSlot(context.Context) (int64, error) { return 0, nil }

func (s *stubClient) GetBlockTime(context.Context, int64) (*int64, error) { return nil, nil }

func (s *stubClient) GetLatestBlockhash(context.Context) (*solana.Blockhash, error) {
	return nil, nil
}

func (s *stubClient) SendTransaction(context.Context, []byte) (string, error) { return "", nil }

var _ solana.RPCClient = (*stubClient)(nil)

func addr(b byte) domain.Address {
	var a domain.Address
	a[0] = b
	return a
}

func TestFetch(t *testing.T) {
	a := addr(1)
	client := &stubClient{data: map[string][]byte{a.String(): {1, 2, 3}}}
	store := NewStore(client)

	got, err := store.Fetch(context.Background(), a)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %v", got)
	}
}

func TestFetch_Missing(t *testing.T) {
	store := NewStore(&stubClient{data: map[string][]byte{}})

	_, err := store.Fetch(context.Background(), addr(1))
	if !errors.Is(err, accounts.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchMany_PreservesOrderAndNils(t *testing.T) {
	a, b, c := addr(1), addr(2), addr(3)
	client := &stubClient{data: map[string][]byte{
		a.String(): {1},
		c.String(): {3},
	}}
	store := NewStore(client)

	got, err := store.FetchMany(context.Background(), []domain.Address{a, b, c})
	if err != nil {
		t.Fatalf("FetchMany failed: %v", err)
	}
	if got[0] == nil || got[1] != nil || got[2] == nil {
		t.Errorf("got %v, want [data nil data]", got)
	}
}

func TestFetchMany_BatchesLargeRequests(t *testing.T) {
	client := &stubClient{data: map[string][]byte{}}
	store := NewStore(client)

	addrs := make([]domain.Address, solana.MaxMultipleAccounts+1)
	for i := range addrs {
		addrs[i][0] = byte(i)
		addrs[i][1] = byte(i >> 8)
	}

	got, err := store.FetchMany(context.Background(), addrs)
	if err != nil {
		t.Fatalf("FetchMany failed: %v", err)
	}
	if len(got) != len(addrs) {
		t.Errorf("got %d entries, want %d", len(got), len(addrs))
	}
	if len(client.batches) != 2 {
		t.Fatalf("client saw %d batches, want 2", len(client.batches))
	}
	if len(client.batches[0]) != solana.MaxMultipleAccounts || len(client.batches[1]) != 1 {
		t.Errorf("batch sizes %d, %d", len(client.batches[0]), len(client.batches[1]))
	}
}

func TestFetchMany_TransportErrorFailsCall(t *testing.T) {
	wantErr := errors.New("rpc down")
	store := NewStore(&stubClient{err: wantErr})

	_, err := store.FetchMany(context.Background(), []domain.Address{addr(1)})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}
