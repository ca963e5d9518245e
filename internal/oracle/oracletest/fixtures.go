// Package oracletest builds wire-encoded oracle account fixtures for tests.
package oracletest

import (
	"encoding/binary"
	"math/big"

	"solana-oracle-lab/internal/domain"
	"solana-oracle-lab/internal/fixedpoint"
	"solana-oracle-lab/internal/oracle"
)

// Addr returns a deterministic test address with every byte set to b.
func Addr(b byte) domain.Address {
	var a domain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

type writer struct {
	buf []byte
}

func newWriter(name string) *writer {
	d := oracle.Discriminator(name)
	return &writer{buf: append([]byte{}, d[:]...)}
}

func (w *writer) name32(s string) {
	b := make([]byte, 32)
	copy(b, s)
	w.buf = append(w.buf, b...)
}

func (w *writer) address(a domain.Address) {
	w.buf = append(w.buf, a.Bytes()...)
}

func (w *writer) uint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) bool(v bool) {
	if v {
		w.uint8(1)
	} else {
		w.uint8(0)
	}
}

func (w *writer) uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) int64(v int64) {
	w.uint64(uint64(v))
}

func (w *writer) decimal(d fixedpoint.Decimal) {
	mantissa := d.Mantissa()
	negative := mantissa.Sign() < 0
	if negative {
		// Two's complement over 128 bits.
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		mantissa = new(big.Int).Add(mod, mantissa)
	}
	be := mantissa.Bytes()
	le := make([]byte, 16)
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	w.buf = append(w.buf, le...)
	w.uint32(d.Scale())
}

// EncodeState encodes a state account.
func EncodeState(s *oracle.StateAccount) []byte {
	w := newWriter("SbState")
	w.address(s.Authority)
	w.address(s.TokenMint)
	w.address(s.TokenVault)
	w.uint8(s.Bump)
	return w.buf
}

// EncodeAggregator encodes an aggregator account.
func EncodeAggregator(a *oracle.AggregatorAccount) []byte {
	w := newWriter("AggregatorAccountData")
	w.name32(a.Name)
	w.address(a.Queue)
	w.uint32(a.OracleRequestBatchSize)
	w.uint32(a.MinOracleResults)
	w.uint32(a.MinUpdateDelaySeconds)
	w.uint32(a.LatestRound.NumSuccess)
	w.uint32(a.LatestRound.NumError)
	w.uint64(a.LatestRound.OpenSlot)
	w.int64(a.LatestRound.OpenTimestamp)
	w.decimal(a.LatestRound.Result)
	w.decimal(a.LatestRound.StdDeviation)
	return w.buf
}

// EncodeOracle encodes an oracle account.
func EncodeOracle(o *oracle.OracleAccount) []byte {
	w := newWriter("OracleAccountData")
	w.name32(o.Name)
	w.address(o.Authority)
	w.address(o.Queue)
	w.address(o.TokenAccount)
	w.int64(o.LastHeartbeat)
	w.uint32(o.NumInUse)
	return w.buf
}

// EncodeQueue encodes an oracle queue account.
func EncodeQueue(q *oracle.QueueAccount) []byte {
	w := newWriter("OracleQueueAccountData")
	w.name32(q.Name)
	w.address(q.Authority)
	w.uint32(q.OracleTimeout)
	w.uint64(q.Reward)
	w.uint64(q.MinStake)
	w.bool(q.SlashingEnabled)
	w.uint32(q.Size)
	return w.buf
}

// EncodeLease encodes a lease account.
func EncodeLease(l *oracle.LeaseAccount) []byte {
	w := newWriter("LeaseAccountData")
	w.address(l.Escrow)
	w.address(l.Queue)
	w.address(l.Aggregator)
	w.address(l.WithdrawAuthority)
	w.bool(l.IsActive)
	return w.buf
}

// EncodePermission encodes a permission account.
func EncodePermission(p *oracle.PermissionAccount) []byte {
	w := newWriter("PermissionAccountData")
	w.address(p.Authority)
	w.address(p.Granter)
	w.address(p.Grantee)
	w.uint32(p.Permissions)
	w.uint8(p.Bump)
	return w.buf
}

// EncodeCrank encodes a crank account.
func EncodeCrank(c *oracle.CrankAccount) []byte {
	w := newWriter("CrankAccountData")
	w.name32(c.Name)
	w.address(c.Queue)
	w.uint32(c.MaxRows)
	w.uint32(uint32(len(c.Rows)))
	for _, row := range c.Rows {
		w.address(row.Aggregator)
		w.int64(row.NextTimestamp)
	}
	return w.buf
}
