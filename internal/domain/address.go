package domain

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"
)

// AddressLen is the byte length of a Solana account address.
const AddressLen = 32

// Address identifies a remote account record. It is the raw 32-byte
// public key, not its base58 text form, so that ordering comparisons
// operate on wire bytes.
type Address [AddressLen]byte

// AddressFromBase58 parses a base58-encoded address.
func AddressFromBase58(s string) (Address, error) {
	var a Address
	decoded, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("decode address %q: %w", s, err)
	}
	if len(decoded) != AddressLen {
		return a, fmt.Errorf("address %q: expected %d bytes, got %d", s, AddressLen, len(decoded))
	}
	copy(a[:], decoded)
	return a, nil
}

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("address: expected %d bytes, got %d", AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// String returns the base58 text form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns the raw address bytes.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Compare performs an unsigned lexicographic byte comparison.
// Returns -1, 0 or 1 in the manner of bytes.Compare.
func (a Address) Compare(other Address) int {
	return bytes.Compare(a[:], other[:])
}

// Less reports whether a sorts before other by raw byte value.
func (a Address) Less(other Address) bool {
	return a.Compare(other) < 0
}

// SortAddresses orders addresses ascending by raw byte value in place.
func SortAddresses(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Less(addrs[j])
	})
}
