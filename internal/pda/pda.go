// Package pda derives program-owned addresses from stable seeds.
//
// Derived addresses are computed identically by the on-chain program and by
// every client, which is what lets independent clients locate the same
// records without coordination.
package pda

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"

	"solana-oracle-lab/internal/domain"
)

// Domain-separation seeds. These are bit-exact protocol constants; any
// divergence breaks cross-client address agreement.
const (
	StateSeed      = "SB_STATE_V1"
	LeaseSeed      = "LeaseAccountData"
	PermissionSeed = "PermissionAccountData"
)

// pdaMarker is appended to every derivation preimage per the Solana PDA
// algorithm.
const pdaMarker = "ProgramDerivedAddress"

// ErrDerivationExhausted is returned when no bump in [0, 255] produces an
// off-curve address. Astronomically unlikely, but reported rather than
// looping or panicking.
var ErrDerivationExhausted = errors.New("pda: no valid bump seed found")

// FindProgramAddress derives the first off-curve address for the given
// seeds, searching bump candidates downward from 255. Returns the address
// and the winning bump.
func FindProgramAddress(seeds [][]byte, programID domain.Address) (domain.Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programID.Bytes())
		h.Write([]byte(pdaMarker))

		digest := h.Sum(nil)
		if !isOnCurve(digest) {
			addr, err := domain.AddressFromBytes(digest)
			if err != nil {
				return domain.Address{}, 0, err
			}
			return addr, uint8(bump), nil
		}
	}
	return domain.Address{}, 0, ErrDerivationExhausted
}

// DeriveState derives the program's singleton state account.
func DeriveState(programID domain.Address) (domain.Address, uint8, error) {
	return FindProgramAddress([][]byte{[]byte(StateSeed)}, programID)
}

// DeriveLease derives the lease account funding updates of an aggregator on
// a queue.
func DeriveLease(programID, queue, aggregator domain.Address) (domain.Address, uint8, error) {
	seeds := [][]byte{[]byte(LeaseSeed), queue.Bytes(), aggregator.Bytes()}
	return FindProgramAddress(seeds, programID)
}

// DerivePermission derives the permission account granting grantee access
// under granter, controlled by authority.
func DerivePermission(programID, authority, granter, grantee domain.Address) (domain.Address, uint8, error) {
	seeds := [][]byte{[]byte(PermissionSeed), authority.Bytes(), granter.Bytes(), grantee.Bytes()}
	return FindProgramAddress(seeds, programID)
}

// isOnCurve reports whether the bytes decode to a valid ed25519 point.
// Program-derived addresses must not be valid signing-key points.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
