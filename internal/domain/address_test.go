package domain

import (
	"testing"
)

func addr(first byte, rest byte) Address {
	var a Address
	a[0] = first
	for i := 1; i < len(a); i++ {
		a[i] = rest
	}
	return a
}

func TestAddressBase58RoundTrip(t *testing.T) {
	a := addr(0x11, 0x22)
	decoded, err := AddressFromBase58(a.String())
	if err != nil {
		t.Fatalf("AddressFromBase58 failed: %v", err)
	}
	if decoded != a {
		t.Errorf("round trip changed address: %s vs %s", decoded, a)
	}
}

func TestAddressFromBase58_Invalid(t *testing.T) {
	if _, err := AddressFromBase58("not!base58"); err == nil {
		t.Error("expected error for invalid base58")
	}
	// Valid base58 but wrong length
	if _, err := AddressFromBase58("abc"); err == nil {
		t.Error("expected error for short address")
	}
}

func TestAddressFromBytes_WrongLength(t *testing.T) {
	if _, err := AddressFromBytes(make([]byte, 31)); err == nil {
		t.Error("expected error for 31 bytes")
	}
	if _, err := AddressFromBytes(make([]byte, 33)); err == nil {
		t.Error("expected error for 33 bytes")
	}
}

func TestAddressCompare_RawBytes(t *testing.T) {
	// b sorts before a by raw bytes even though its later bytes are large
	a := addr(0x02, 0x00)
	b := addr(0x01, 0xFF)

	if !b.Less(a) {
		t.Error("0x01... must sort before 0x02...")
	}
	if a.Compare(b) != 1 || b.Compare(a) != -1 || a.Compare(a) != 0 {
		t.Error("Compare must follow bytes.Compare semantics")
	}
}

func TestSortAddresses(t *testing.T) {
	addrs := []Address{addr(3, 0), addr(1, 0), addr(2, 0)}
	SortAddresses(addrs)
	for i := 0; i < len(addrs)-1; i++ {
		if !addrs[i].Less(addrs[i+1]) {
			t.Fatalf("addresses not sorted at position %d", i)
		}
	}
}

func TestAddressIsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero value must report IsZero")
	}
	if addr(1, 0).IsZero() {
		t.Error("non-zero address must not report IsZero")
	}
}
