package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// rpcHandler replies to a single JSON-RPC method with a canned result.
func rpcHandler(t *testing.T, wantMethod string, result string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != wantMethod {
			t.Errorf("method %q, want %q", req.Method, wantMethod)
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, result)
	}
}

func TestGetAccountInfo(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4})
	result := fmt.Sprintf(`{"context":{"slot":100},"value":{"lamports":5000,"owner":"11111111111111111111111111111111","data":["%s","base64"],"executable":false,"rentEpoch":361}}`, data)

	server := httptest.NewServer(rpcHandler(t, "getAccountInfo", result))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	info, err := client.GetAccountInfo(context.Background(), "somekey")
	if err != nil {
		t.Fatalf("GetAccountInfo failed: %v", err)
	}
	if info == nil {
		t.Fatal("expected account info, got nil")
	}
	if info.Lamports != 5000 {
		t.Errorf("lamports %d, want 5000", info.Lamports)
	}
	if len(info.Data) != 4 || info.Data[0] != 1 {
		t.Errorf("data %v, want [1 2 3 4]", info.Data)
	}
}

func TestGetAccountInfo_Missing(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, "getAccountInfo", `{"context":{"slot":100},"value":null}`))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	info, err := client.GetAccountInfo(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetAccountInfo failed: %v", err)
	}
	if info != nil {
		t.Errorf("expected nil for missing account, got %+v", info)
	}
}

func TestGetMultipleAccounts(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte{9})
	result := fmt.Sprintf(`{"context":{"slot":100},"value":[{"lamports":1,"owner":"o","data":["%s","base64"],"executable":false,"rentEpoch":0},null]}`, data)

	server := httptest.NewServer(rpcHandler(t, "getMultipleAccounts", result))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	infos, err := client.GetMultipleAccounts(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("GetMultipleAccounts failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d entries, want 2", len(infos))
	}
	if infos[0] == nil || len(infos[0].Data) != 1 {
		t.Errorf("entry 0: %+v", infos[0])
	}
	if infos[1] != nil {
		t.Errorf("missing account must be nil, got %+v", infos[1])
	}
}

func TestGetMultipleAccounts_LimitEnforced(t *testing.T) {
	client := NewHTTPClient("http://unused")
	keys := make([]string, MaxMultipleAccounts+1)
	if _, err := client.GetMultipleAccounts(context.Background(), keys); err == nil {
		t.Error("expected error above the batch limit")
	}
}

func TestGetSlot(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, "getSlot", `246000000`))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot failed: %v", err)
	}
	if slot != 246000000 {
		t.Errorf("slot %d, want 246000000", slot)
	}
}

func TestGetLatestBlockhash(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, "getLatestBlockhash",
		`{"context":{"slot":100},"value":{"blockhash":"testhash","lastValidBlockHeight":200}}`))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	bh, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash failed: %v", err)
	}
	if bh.Blockhash != "testhash" || bh.LastValidBlockHeight != 200 {
		t.Errorf("got %+v", bh)
	}
}

func TestSendTransaction(t *testing.T) {
	var gotParam string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotParam, _ = req.Params[0].(string)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"sig123"}`, req.ID)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	raw := []byte{1, 2, 3}
	sig, err := client.SendTransaction(context.Background(), raw)
	if err != nil {
		t.Fatalf("SendTransaction failed: %v", err)
	}
	if sig != "sig123" {
		t.Errorf("signature %q, want sig123", sig)
	}
	if gotParam != base64.StdEncoding.EncodeToString(raw) {
		t.Errorf("transaction sent as %q, want base64 of raw bytes", gotParam)
	}
}

func TestCall_RPCErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))
	_, err := client.GetSlot(context.Background())
	if err == nil {
		t.Fatal("expected RPC error")
	}
	if calls != 1 {
		t.Errorf("RPC error retried %d times, want 1 call", calls)
	}
}

func TestCall_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":5}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond), WithMaxDelay(2*time.Millisecond))
	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot failed after retries: %v", err)
	}
	if slot != 5 {
		t.Errorf("slot %d, want 5", slot)
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
}

func TestCall_MaxRetriesExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(1), WithRetryDelay(time.Millisecond))
	if _, err := client.GetSlot(context.Background()); err == nil {
		t.Error("expected error after exhausting retries")
	}
}
