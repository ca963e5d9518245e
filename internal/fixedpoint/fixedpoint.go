// Package fixedpoint represents on-chain oracle results exactly.
//
// Oracle values are encoded on chain as an integer mantissa plus a decimal
// scale. Converting through binary floating point would accumulate rounding
// error across repeated reads of the same value, so all conversions go
// through arbitrary-precision decimals.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal is mantissa × 10^-scale.
//
// Equality is structural: two values with the same numeric magnitude but
// different scales are NOT equal, matching the on-chain encoding. Scale
// normalization and arithmetic are intentionally not provided; callers that
// need them must normalize scales themselves.
type Decimal struct {
	mantissa *big.Int
	scale    uint32
}

// New creates a Decimal from an int64 mantissa.
func New(mantissa int64, scale uint32) Decimal {
	return Decimal{mantissa: big.NewInt(mantissa), scale: scale}
}

// NewFromBigInt creates a Decimal from an arbitrary-precision mantissa.
// The mantissa is copied.
func NewFromBigInt(mantissa *big.Int, scale uint32) Decimal {
	return Decimal{mantissa: new(big.Int).Set(mantissa), scale: scale}
}

// Mantissa returns a copy of the mantissa.
func (d Decimal) Mantissa() *big.Int {
	if d.mantissa == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(d.mantissa)
}

// Scale returns the decimal scale.
func (d Decimal) Scale() uint32 {
	return d.scale
}

// Equal reports structural equality: both mantissa and scale must match.
func (d Decimal) Equal(other Decimal) bool {
	if d.scale != other.scale {
		return false
	}
	return d.Mantissa().Cmp(other.Mantissa()) == 0
}

// Value converts to an exact arbitrary-precision decimal.
func (d Decimal) Value() decimal.Decimal {
	return decimal.NewFromBigInt(d.Mantissa(), -int32(d.scale))
}

// String formats the represented value exactly.
func (d Decimal) String() string {
	return d.Value().String()
}

// mantissaLen is the byte length of the on-chain i128 mantissa.
const mantissaLen = 16

// EncodedLen is the byte length of the wire encoding: i128 mantissa
// (little-endian, two's complement) followed by a u32 scale.
const EncodedLen = mantissaLen + 4

// Decode parses the wire encoding of a Decimal.
func Decode(buf []byte) (Decimal, error) {
	if len(buf) < EncodedLen {
		return Decimal{}, fmt.Errorf("fixedpoint: need %d bytes, got %d", EncodedLen, len(buf))
	}

	// Little-endian i128 to big-endian for big.Int.
	be := make([]byte, mantissaLen)
	for i := 0; i < mantissaLen; i++ {
		be[i] = buf[mantissaLen-1-i]
	}

	mantissa := new(big.Int)
	negative := be[0]&0x80 != 0
	if negative {
		// Two's complement: invert, add one, negate.
		for i := range be {
			be[i] = ^be[i]
		}
		mantissa.SetBytes(be)
		mantissa.Add(mantissa, big.NewInt(1))
		mantissa.Neg(mantissa)
	} else {
		mantissa.SetBytes(be)
	}

	scale := uint32(buf[16]) | uint32(buf[17])<<8 | uint32(buf[18])<<16 | uint32(buf[19])<<24

	return Decimal{mantissa: mantissa, scale: scale}, nil
}
