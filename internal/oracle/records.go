package oracle

import (
	"fmt"

	"solana-oracle-lab/internal/domain"
)

// Discriminator names for the fixed-layout records.
const (
	stateName      = "SbState"
	oracleName     = "OracleAccountData"
	queueName      = "OracleQueueAccountData"
	leaseName      = "LeaseAccountData"
	permissionName = "PermissionAccountData"
)

// StateAccount is the program's singleton state record, located via the
// "SB_STATE_V1" seed.
type StateAccount struct {
	Authority  domain.Address
	TokenMint  domain.Address
	TokenVault domain.Address
	Bump       uint8
}

// DecodeState parses the singleton state account.
//
// Layout: authority[32] | tokenMint[32] | tokenVault[32] | bump u8
func DecodeState(buf []byte) (*StateAccount, error) {
	body, err := checkDiscriminator(buf, stateName)
	if err != nil {
		return nil, err
	}
	r := newByteReader(body)
	s := &StateAccount{
		Authority:  r.address(),
		TokenMint:  r.address(),
		TokenVault: r.address(),
		Bump:       r.uint8(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", stateName, r.err)
	}
	return s, nil
}

// OracleAccount is a registered oracle worker on a queue.
type OracleAccount struct {
	Name          string
	Authority     domain.Address
	Queue         domain.Address
	TokenAccount  domain.Address
	LastHeartbeat int64 // unix seconds
	NumInUse      uint32
}

// DecodeOracle parses an oracle account.
//
// Layout: name[32] | authority[32] | queue[32] | tokenAccount[32] |
// lastHeartbeat i64 | numInUse u32
func DecodeOracle(buf []byte) (*OracleAccount, error) {
	body, err := checkDiscriminator(buf, oracleName)
	if err != nil {
		return nil, err
	}
	r := newByteReader(body)
	o := &OracleAccount{
		Name:          r.name(32),
		Authority:     r.address(),
		Queue:         r.address(),
		TokenAccount:  r.address(),
		LastHeartbeat: r.int64(),
		NumInUse:      r.uint32(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", oracleName, r.err)
	}
	return o, nil
}

// QueueAccount is an oracle queue: the set of oracles that serve a group of
// feeds, plus its reward and stake policy.
type QueueAccount struct {
	Name            string
	Authority       domain.Address
	OracleTimeout   uint32
	Reward          uint64
	MinStake        uint64
	SlashingEnabled bool
	Size            uint32
}

// DecodeQueue parses an oracle queue account.
//
// Layout: name[32] | authority[32] | oracleTimeout u32 | reward u64 |
// minStake u64 | slashingEnabled u8 | size u32
func DecodeQueue(buf []byte) (*QueueAccount, error) {
	body, err := checkDiscriminator(buf, queueName)
	if err != nil {
		return nil, err
	}
	r := newByteReader(body)
	q := &QueueAccount{
		Name:            r.name(32),
		Authority:       r.address(),
		OracleTimeout:   r.uint32(),
		Reward:          r.uint64(),
		MinStake:        r.uint64(),
		SlashingEnabled: r.bool(),
		Size:            r.uint32(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", queueName, r.err)
	}
	return q, nil
}

// LeaseAccount funds processing of one aggregator on one queue. There is
// exactly one lease per (queue, aggregator) pair; its address is derived,
// never stored.
type LeaseAccount struct {
	Escrow            domain.Address
	Queue             domain.Address
	Aggregator        domain.Address
	WithdrawAuthority domain.Address
	IsActive          bool
}

// DecodeLease parses a lease account.
//
// Layout: escrow[32] | queue[32] | aggregator[32] | withdrawAuthority[32] |
// isActive u8
func DecodeLease(buf []byte) (*LeaseAccount, error) {
	body, err := checkDiscriminator(buf, leaseName)
	if err != nil {
		return nil, err
	}
	r := newByteReader(body)
	l := &LeaseAccount{
		Escrow:            r.address(),
		Queue:             r.address(),
		Aggregator:        r.address(),
		WithdrawAuthority: r.address(),
		IsActive:          r.bool(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", leaseName, r.err)
	}
	return l, nil
}

// Permission bitmask values.
const (
	PermitOracleHeartbeat  uint32 = 1 << 0
	PermitOracleQueueUsage uint32 = 1 << 1
	PermitVrfRequests      uint32 = 1 << 2
)

// PermissionAccount grants a grantee access under a granter, controlled by
// an authority.
type PermissionAccount struct {
	Authority   domain.Address
	Granter     domain.Address
	Grantee     domain.Address
	Permissions uint32
	Bump        uint8
}

// DecodePermission parses a permission account.
//
// Layout: authority[32] | granter[32] | grantee[32] | permissions u32 |
// bump u8
func DecodePermission(buf []byte) (*PermissionAccount, error) {
	body, err := checkDiscriminator(buf, permissionName)
	if err != nil {
		return nil, err
	}
	r := newByteReader(body)
	p := &PermissionAccount{
		Authority:   r.address(),
		Granter:     r.address(),
		Grantee:     r.address(),
		Permissions: r.uint32(),
		Bump:        r.uint8(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", permissionName, r.err)
	}
	return p, nil
}

// Has reports whether the permission bitmask includes perm.
func (p *PermissionAccount) Has(perm uint32) bool {
	return p.Permissions&perm == perm
}
