package types

import (
	"errors"
	"math/big"

	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"lukechampine.com/uint128"
)

var (
	ErrAmountOverflow  = errors.New("types: amount exceeds 128 bits")
	ErrAmountUnderflow = errors.New("types: amount subtraction underflows")
)

// Amounts is a pair of 128-bit token amounts (X, Y). It replaces the
// bit-packed 256-bit word of the on-chain representation with a plain
// two-field struct; arithmetic is overflow-checked.
type Amounts struct {
	X uint128.Uint128
	Y uint128.Uint128
}

// AmountsFrom64 builds an Amounts pair from small test-friendly values.
func AmountsFrom64(x, y uint64) Amounts {
	return Amounts{X: uint128.From64(x), Y: uint128.From64(y)}
}

// AmountsFromBig converts two non-negative big.Int values, failing if either
// does not fit into 128 bits.
func AmountsFromBig(x, y *big.Int) (Amounts, error) {
	ux, err := U128FromBig(x)
	if err != nil {
		return Amounts{}, err
	}
	uy, err := U128FromBig(y)
	if err != nil {
		return Amounts{}, err
	}
	return Amounts{X: ux, Y: uy}, nil
}

// U128FromBig converts a non-negative big.Int into a Uint128.
func U128FromBig(b *big.Int) (uint128.Uint128, error) {
	if b.Sign() < 0 || b.BitLen() > 128 {
		return uint128.Zero, ErrAmountOverflow
	}
	lo := new(big.Int).And(b, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return uint128.New(lo, hi), nil
}

// Add returns a + b, failing on 128-bit overflow of either side.
func (a Amounts) Add(b Amounts) (Amounts, error) {
	x := a.X.AddWrap(b.X)
	if x.Cmp(a.X) < 0 {
		return Amounts{}, ErrAmountOverflow
	}
	y := a.Y.AddWrap(b.Y)
	if y.Cmp(a.Y) < 0 {
		return Amounts{}, ErrAmountOverflow
	}
	return Amounts{X: x, Y: y}, nil
}

// Sub returns a - b, failing if either side underflows.
func (a Amounts) Sub(b Amounts) (Amounts, error) {
	if a.X.Cmp(b.X) < 0 || a.Y.Cmp(b.Y) < 0 {
		return Amounts{}, ErrAmountUnderflow
	}
	return Amounts{X: a.X.Sub(b.X), Y: a.Y.Sub(b.Y)}, nil
}

// IsZero reports whether both sides are zero.
func (a Amounts) IsZero() bool { return a.X.IsZero() && a.Y.IsZero() }

// BigX returns the X side as a big.Int.
func (a Amounts) BigX() *big.Int { return a.X.Big() }

// BigY returns the Y side as a big.Int.
func (a Amounts) BigY() *big.Int { return a.Y.Big() }

// Amount returns the side selected by swapForY: the X side when swapping
// X for Y, otherwise the Y side.
func (a Amounts) Amount(swapForY bool) uint128.Uint128 {
	if swapForY {
		return a.X
	}
	return a.Y
}

// WithAmount returns a copy with the side selected by swapForY replaced.
func (a Amounts) WithAmount(swapForY bool, v uint128.Uint128) Amounts {
	if swapForY {
		a.X = v
	} else {
		a.Y = v
	}
	return a
}

// Fits reports whether the pair of big.Int values is representable.
func Fits(x, y *big.Int) bool {
	return x.Sign() >= 0 && y.Sign() >= 0 &&
		x.Cmp(constants.MaxUint128) <= 0 && y.Cmp(constants.MaxUint128) <= 0
}
