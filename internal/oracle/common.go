// Package oracle decodes the on-chain account records of the oracle
// program: aggregators, oracles, queues, leases, cranks and permissions.
//
// Every account starts with an 8-byte discriminator derived from the record
// name. Decoders produce precise structs; reserved on-chain padding is never
// carried into the decoded form.
package oracle

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"solana-oracle-lab/internal/domain"
)

// DiscriminatorLen is the byte length of the account discriminator.
const DiscriminatorLen = 8

// ErrShortBuffer is returned when account data ends before a field.
var ErrShortBuffer = errors.New("oracle: account data truncated")

// Discriminator computes the 8-byte account discriminator for a record name:
// sha256("account:<name>")[:8].
func Discriminator(name string) [DiscriminatorLen]byte {
	var d [DiscriminatorLen]byte
	sum := sha256.Sum256([]byte("account:" + name))
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// RecordName identifies the record type of raw account data by its
// discriminator. The second return is false for unknown discriminators.
func RecordName(buf []byte) (string, bool) {
	if len(buf) < DiscriminatorLen {
		return "", false
	}
	var got [DiscriminatorLen]byte
	copy(got[:], buf[:DiscriminatorLen])
	for _, name := range []string{
		stateName, aggregatorName, oracleName, queueName,
		leaseName, permissionName, crankName,
	} {
		if got == Discriminator(name) {
			return name, true
		}
	}
	return "", false
}

// checkDiscriminator verifies the buffer starts with the discriminator for
// name and returns the remaining bytes.
func checkDiscriminator(buf []byte, name string) ([]byte, error) {
	if len(buf) < DiscriminatorLen {
		return nil, fmt.Errorf("%s: %w", name, ErrShortBuffer)
	}
	want := Discriminator(name)
	var got [DiscriminatorLen]byte
	copy(got[:], buf[:DiscriminatorLen])
	if got != want {
		return nil, fmt.Errorf("%s: discriminator mismatch %x", name, got)
	}
	return buf[DiscriminatorLen:], nil
}

// byteReader walks account data with little-endian field decoding.
type byteReader struct {
	buf []byte
	off int
	err error
}

func newByteReader(buf []byte) *byteReader {
	return &byteReader{buf: buf}
}

func (r *byteReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *byteReader) address() domain.Address {
	b := r.take(domain.AddressLen)
	if r.err != nil {
		return domain.Address{}
	}
	var a domain.Address
	copy(a[:], b)
	return a
}

// name reads a fixed-length zero-padded name field.
func (r *byteReader) name(n int) string {
	b := r.take(n)
	if r.err != nil {
		return ""
	}
	return strings.TrimRight(string(b), "\x00")
}

func (r *byteReader) uint8() uint8 {
	b := r.take(1)
	if r.err != nil {
		return 0
	}
	return b[0]
}

func (r *byteReader) bool() bool {
	return r.uint8() != 0
}

func (r *byteReader) uint32() uint32 {
	b := r.take(4)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *byteReader) uint64() uint64 {
	b := r.take(8)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *byteReader) int64() int64 {
	return int64(r.uint64())
}
