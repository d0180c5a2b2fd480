package maths

import (
	"math/big"

	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

// MulDiv computes x * y / denominator with the requested rounding.
func MulDiv(x, y, denominator *big.Int, rounding types.Rounding) *big.Int {
	div, mod := new(big.Int).QuoRem(
		new(big.Int).Mul(x, y),
		denominator,
		new(big.Int))

	if rounding == types.RoundingUp && mod.Sign() != 0 {
		return div.Add(div, big.NewInt(1))
	}

	return div
}

// MulShr computes (x * y) >> offset with the requested rounding. Used to
// price an amount of Y-per-X against a Q128.128 bin price.
func MulShr(x, y *big.Int, offset uint, rounding types.Rounding) *big.Int {
	prod := new(big.Int).Mul(x, y)
	div := new(big.Int).Rsh(prod, offset)

	if rounding == types.RoundingUp {
		rem := new(big.Int).And(prod, mask(offset))
		if rem.Sign() != 0 {
			return div.Add(div, big.NewInt(1))
		}
	}
	return div
}

// ShlDiv computes (x << offset) / denominator with the requested rounding.
// Used to price an amount of X-per-Y against a Q128.128 bin price.
func ShlDiv(x *big.Int, offset uint, denominator *big.Int, rounding types.Rounding) *big.Int {
	div, mod := new(big.Int).QuoRem(
		new(big.Int).Lsh(x, offset),
		denominator,
		new(big.Int))

	if rounding == types.RoundingUp && mod.Sign() != 0 {
		return div.Add(div, big.NewInt(1))
	}
	return div
}

func mask(offset uint) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), offset), big.NewInt(1))
}
