package domain

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
)

func TestOwnedAccount(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	h, err := OwnedAccount(priv)
	if err != nil {
		t.Fatalf("OwnedAccount failed: %v", err)
	}
	if !h.CanSign() {
		t.Error("owned account must report signing authority")
	}

	want, _ := AddressFromBytes(pub)
	if h.Address() != want {
		t.Errorf("handle address %s does not match public key %s", h.Address(), want)
	}

	msg := []byte("message")
	sig, err := h.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !ed25519.Verify(pub, msg, sig) {
		t.Error("signature does not verify against the public key")
	}
}

func TestOwnedAccount_InvalidKeySize(t *testing.T) {
	if _, err := OwnedAccount(make([]byte, 32)); err == nil {
		t.Error("expected error for truncated private key")
	}
}

func TestReferencedAccount(t *testing.T) {
	a := addr(5, 0)
	h := ReferencedAccount(a)

	if h.CanSign() {
		t.Error("referenced account must not report signing authority")
	}
	if h.Address() != a {
		t.Errorf("handle address %s, want %s", h.Address(), a)
	}

	_, err := h.Sign([]byte("message"))
	if !errors.Is(err, ErrNoSigningAuthority) {
		t.Errorf("expected ErrNoSigningAuthority, got %v", err)
	}
}
