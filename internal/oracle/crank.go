package oracle

import (
	"fmt"

	"solana-oracle-lab/internal/domain"
)

// crankName is the discriminator name for crank accounts.
const crankName = "CrankAccountData"

// CrankRow is one scheduled work entry: an aggregator and the time its next
// update becomes due.
type CrankRow struct {
	Aggregator    domain.Address
	NextTimestamp int64 // unix seconds
}

// CrankAccount is the bounded work-scheduling structure. Rows are stored
// inline and the whole account is re-read on every pass; there is no
// incremental diff protocol.
type CrankAccount struct {
	Name    string
	Queue   domain.Address
	MaxRows uint32
	Rows    []CrankRow
}

// crankRowLen is the wire size of one row: pubkey[32] + nextTimestamp i64.
const crankRowLen = domain.AddressLen + 8

// DecodeCrank parses a crank account.
//
// Layout: name[32] | queue[32] | maxRows u32 | rowCount u32 |
// rowCount × {aggregator[32] | nextTimestamp i64}
func DecodeCrank(buf []byte) (*CrankAccount, error) {
	body, err := checkDiscriminator(buf, crankName)
	if err != nil {
		return nil, err
	}

	r := newByteReader(body)
	c := &CrankAccount{
		Name:    r.name(32),
		Queue:   r.address(),
		MaxRows: r.uint32(),
	}

	rowCount := r.uint32()
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", crankName, r.err)
	}
	if rowCount > c.MaxRows {
		return nil, fmt.Errorf("%s: row count %d exceeds max rows %d", crankName, rowCount, c.MaxRows)
	}

	c.Rows = make([]CrankRow, 0, rowCount)
	for i := uint32(0); i < rowCount; i++ {
		row := CrankRow{
			Aggregator:    r.address(),
			NextTimestamp: r.int64(),
		}
		if r.err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", crankName, i, r.err)
		}
		c.Rows = append(c.Rows, row)
	}

	return c, nil
}
