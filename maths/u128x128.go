package maths

import (
	"errors"
	"math/big"

	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
)

var (
	ErrPowUnderflow = errors.New("maths: pow result underflows Q128.128")
	ErrLogUnderflow = errors.New("maths: log2 of a non-positive value")
)

// Pow raises a Q128.128 base to an integer exponent, returning a Q128.128
// result. Exponentiation is by squaring; a base above one is inverted first
// so intermediate squarings stay below one and keep full precision, then the
// result is inverted back. A result that rounds to zero is an error: the
// true price left the representable range.
func Pow(base *big.Int, exponent int) (*big.Int, error) {
	if exponent == 0 {
		return new(big.Int).Set(constants.Scale), nil
	}

	invert := false
	absExp := exponent
	if absExp < 0 {
		absExp = -absExp
		invert = true
	}

	squared := new(big.Int).Set(base)
	if base.Cmp(constants.Scale) > 0 {
		// keep the squaring chain below 1.0
		squared.Quo(constants.MaxUint256, squared)
		invert = !invert
	}

	result := new(big.Int).Set(constants.Scale)
	for e := absExp; e > 0; e >>= 1 {
		if e&1 == 1 {
			result.Rsh(result.Mul(result, squared), constants.ScaleOffset)
		}
		squared.Rsh(squared.Mul(squared, squared), constants.ScaleOffset)
	}

	if result.Sign() == 0 {
		return nil, ErrPowUnderflow
	}

	if invert {
		result.Quo(constants.MaxUint256, result)
		if result.Sign() == 0 {
			return nil, ErrPowUnderflow
		}
	}
	return result, nil
}

// Log2 returns the binary logarithm of a positive Q128.128 value as a
// signed Q128.128 big.Int. The integer part comes from the bit length, the
// fractional part from 128 squaring refinement steps.
func Log2(x *big.Int) (*big.Int, error) {
	if x.Sign() <= 0 {
		return nil, ErrLogUnderflow
	}

	sign := 1
	v := new(big.Int).Set(x)
	if v.Cmp(constants.Scale) < 0 {
		sign = -1
		v.Quo(constants.ScaleSquared, v)
		if v.Sign() == 0 {
			return nil, ErrLogUnderflow
		}
	}

	n := uint(v.BitLen() - 1 - constants.ScaleOffset)
	result := new(big.Int).Lsh(big.NewInt(int64(n)), constants.ScaleOffset)

	y := new(big.Int).Rsh(v, n)
	if y.Cmp(constants.Scale) != 0 {
		two := new(big.Int).Lsh(constants.Scale, 1)
		delta := new(big.Int).Lsh(big.NewInt(1), constants.ScaleOffset-1)
		for i := 0; i < constants.ScaleOffset && delta.Sign() != 0; i++ {
			y.Rsh(y.Mul(y, y), constants.ScaleOffset)
			if y.Cmp(two) >= 0 {
				result.Add(result, delta)
				y.Rsh(y, 1)
			}
			delta.Rsh(delta, 1)
		}
	}

	if sign < 0 {
		result.Neg(result)
	}
	return result, nil
}

// DivRound divides num by a positive den, rounding half away from zero
// toward the nearest integer.
func DivRound(num, den *big.Int) *big.Int {
	half := new(big.Int).Set(den)
	if num.Sign() < 0 {
		half.Neg(half)
	}
	return new(big.Int).Quo(
		new(big.Int).Add(new(big.Int).Lsh(num, 1), half),
		new(big.Int).Lsh(den, 1),
	)
}
