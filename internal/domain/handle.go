package domain

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

// ErrNoSigningAuthority is returned when a signature is requested from a
// handle that only references an address.
var ErrNoSigningAuthority = errors.New("account handle holds no signing authority")

// AccountHandle names a remote account either by a locally held keypair
// or by address alone. Exactly one of the two variants applies; use
// OwnedAccount or ReferencedAccount to construct.
type AccountHandle struct {
	key  ed25519.PrivateKey
	addr Address
}

// OwnedAccount creates a handle backed by a signing keypair.
func OwnedAccount(key ed25519.PrivateKey) (AccountHandle, error) {
	if len(key) != ed25519.PrivateKeySize {
		return AccountHandle{}, fmt.Errorf("invalid private key size %d", len(key))
	}
	pub := key.Public().(ed25519.PublicKey)
	addr, err := AddressFromBytes(pub)
	if err != nil {
		return AccountHandle{}, err
	}
	return AccountHandle{key: key, addr: addr}, nil
}

// ReferencedAccount creates a handle that names an account by address only.
func ReferencedAccount(addr Address) AccountHandle {
	return AccountHandle{addr: addr}
}

// Address returns the account address for either variant.
func (h AccountHandle) Address() Address {
	return h.addr
}

// CanSign reports whether the handle holds signing authority.
func (h AccountHandle) CanSign() bool {
	return h.key != nil
}

// Sign signs the message with the held keypair.
// Returns ErrNoSigningAuthority for referenced accounts.
func (h AccountHandle) Sign(message []byte) ([]byte, error) {
	if h.key == nil {
		return nil, ErrNoSigningAuthority
	}
	return ed25519.Sign(h.key, message), nil
}
