package solana

import (
	"fmt"

	"github.com/mr-tron/base58"

	"solana-oracle-lab/internal/domain"
)

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	Address  domain.Address
	Signer   bool
	Writable bool
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID domain.Address
	Accounts  []AccountMeta
	Data      []byte
}

// BuildTransaction compiles instructions into a signed, serialized legacy
// transaction. Every handle in signers must hold signing authority; the
// first signer is the fee payer.
func BuildTransaction(instructions []Instruction, signers []domain.AccountHandle, blockhash string) ([]byte, error) {
	if len(signers) == 0 {
		return nil, fmt.Errorf("build transaction: at least one signer required")
	}
	for _, s := range signers {
		if !s.CanSign() {
			return nil, fmt.Errorf("build transaction: signer %s: %w", s.Address(), domain.ErrNoSigningAuthority)
		}
	}

	message, signerOrder, err := compileMessage(instructions, signers, blockhash)
	if err != nil {
		return nil, err
	}

	byAddr := make(map[domain.Address]domain.AccountHandle, len(signers))
	for _, s := range signers {
		byAddr[s.Address()] = s
	}

	// Signature section: compact count then one 64-byte signature per
	// required signer, in message account order.
	out := appendCompactU16(nil, uint16(len(signerOrder)))
	for _, addr := range signerOrder {
		s, ok := byAddr[addr]
		if !ok {
			return nil, fmt.Errorf("no keypair for required signer %s", addr)
		}
		sig, err := s.Sign(message)
		if err != nil {
			return nil, fmt.Errorf("sign transaction: %w", err)
		}
		out = append(out, sig...)
	}
	out = append(out, message...)

	return out, nil
}

// compiledKeys is the deduplicated, ordered account list of a message.
type compiledKeys struct {
	keys    []domain.Address
	indexes map[domain.Address]uint8
	header  messageHeader
}

type messageHeader struct {
	numRequiredSignatures uint8
	numReadonlySigned     uint8
	numReadonlyUnsigned   uint8
}

// compileMessage builds the legacy wire message: header, account keys,
// blockhash, instructions. Account ordering is fixed by the wire format:
// writable signers, readonly signers, writable non-signers, readonly
// non-signers.
func compileMessage(instructions []Instruction, signers []domain.AccountHandle, blockhash string) ([]byte, []domain.Address, error) {
	hashBytes, err := base58.Decode(blockhash)
	if err != nil {
		return nil, nil, fmt.Errorf("decode blockhash: %w", err)
	}
	if len(hashBytes) != 32 {
		return nil, nil, fmt.Errorf("blockhash: expected 32 bytes, got %d", len(hashBytes))
	}

	ck, err := collectKeys(instructions, signers)
	if err != nil {
		return nil, nil, err
	}

	msg := []byte{
		ck.header.numRequiredSignatures,
		ck.header.numReadonlySigned,
		ck.header.numReadonlyUnsigned,
	}

	msg = appendCompactU16(msg, uint16(len(ck.keys)))
	for _, key := range ck.keys {
		msg = append(msg, key.Bytes()...)
	}

	msg = append(msg, hashBytes...)

	msg = appendCompactU16(msg, uint16(len(instructions)))
	for _, ix := range instructions {
		programIndex, ok := ck.indexes[ix.ProgramID]
		if !ok {
			return nil, nil, fmt.Errorf("program %s missing from compiled keys", ix.ProgramID)
		}
		msg = append(msg, programIndex)

		msg = appendCompactU16(msg, uint16(len(ix.Accounts)))
		for _, meta := range ix.Accounts {
			idx, ok := ck.indexes[meta.Address]
			if !ok {
				return nil, nil, fmt.Errorf("account %s missing from compiled keys", meta.Address)
			}
			msg = append(msg, idx)
		}

		msg = appendCompactU16(msg, uint16(len(ix.Data)))
		msg = append(msg, ix.Data...)
	}

	signerOrder := ck.keys[:ck.header.numRequiredSignatures]

	return msg, signerOrder, nil
}

// collectKeys deduplicates accounts across instructions and orders them per
// the wire format. Signer and writable flags merge across duplicate
// references.
func collectKeys(instructions []Instruction, signers []domain.AccountHandle) (*compiledKeys, error) {
	type flags struct {
		signer   bool
		writable bool
	}
	merged := make(map[domain.Address]*flags)
	var order []domain.Address

	touch := func(addr domain.Address, signer, writable bool) {
		f, ok := merged[addr]
		if !ok {
			f = &flags{}
			merged[addr] = f
			order = append(order, addr)
		}
		f.signer = f.signer || signer
		f.writable = f.writable || writable
	}

	// Fee payer is always the first writable signer.
	for i, s := range signers {
		touch(s.Address(), true, i == 0)
	}
	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			touch(meta.Address, meta.Signer, meta.Writable)
		}
		touch(ix.ProgramID, false, false)
	}

	var (
		writableSigned   []domain.Address
		readonlySigned   []domain.Address
		writableUnsigned []domain.Address
		readonlyUnsigned []domain.Address
	)
	for _, addr := range order {
		f := merged[addr]
		switch {
		case f.signer && f.writable:
			writableSigned = append(writableSigned, addr)
		case f.signer:
			readonlySigned = append(readonlySigned, addr)
		case f.writable:
			writableUnsigned = append(writableUnsigned, addr)
		default:
			readonlyUnsigned = append(readonlyUnsigned, addr)
		}
	}

	numSigners := len(writableSigned) + len(readonlySigned)
	if numSigners != len(signers) {
		return nil, fmt.Errorf("instructions require %d signers, %d provided", numSigners, len(signers))
	}

	ck := &compiledKeys{
		indexes: make(map[domain.Address]uint8),
		header: messageHeader{
			numRequiredSignatures: uint8(numSigners),
			numReadonlySigned:     uint8(len(readonlySigned)),
			numReadonlyUnsigned:   uint8(len(readonlyUnsigned)),
		},
	}
	for _, group := range [][]domain.Address{writableSigned, readonlySigned, writableUnsigned, readonlyUnsigned} {
		for _, addr := range group {
			ck.indexes[addr] = uint8(len(ck.keys))
			ck.keys = append(ck.keys, addr)
		}
	}

	if len(ck.keys) > 256 {
		return nil, fmt.Errorf("too many accounts: %d", len(ck.keys))
	}
	return ck, nil
}

// appendCompactU16 appends the compact-u16 (shortvec) encoding of v.
func appendCompactU16(buf []byte, v uint16) []byte {
	for {
		if v < 0x80 {
			return append(buf, byte(v))
		}
		buf = append(buf, byte(v&0x7f)|0x80)
		v >>= 7
	}
}
