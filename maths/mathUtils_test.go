package maths

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		x, y, d  int64
		rounding types.Rounding
		want     int64
	}{
		{"exact down", 10, 10, 4, types.RoundingDown, 25},
		{"exact up", 10, 10, 4, types.RoundingUp, 25},
		{"truncates down", 10, 10, 3, types.RoundingDown, 33},
		{"rounds up", 10, 10, 3, types.RoundingUp, 34},
		{"zero", 0, 100, 3, types.RoundingUp, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MulDiv(big.NewInt(tt.x), big.NewInt(tt.y), big.NewInt(tt.d), tt.rounding)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestMulDivLargeOperands(t *testing.T) {
	// The product overflows 256 bits; big.Int keeps full width.
	x := new(big.Int).Lsh(big.NewInt(1), 200)
	y := new(big.Int).Lsh(big.NewInt(1), 200)
	d := new(big.Int).Lsh(big.NewInt(1), 144)

	got := MulDiv(x, y, d, types.RoundingDown)
	assert.Equal(t, 0, got.Cmp(new(big.Int).Lsh(big.NewInt(1), 256)))
}

func TestMulShr(t *testing.T) {
	x := big.NewInt(1000)
	price := new(big.Int).Lsh(big.NewInt(3), 127) // 1.5 in Q128.128

	got := MulShr(x, price, 128, types.RoundingDown)
	assert.Equal(t, int64(1500), got.Int64())

	// 1 * 1.5 = 1.5: down gives 1, up gives 2.
	one := big.NewInt(1)
	assert.Equal(t, int64(1), MulShr(one, price, 128, types.RoundingDown).Int64())
	assert.Equal(t, int64(2), MulShr(one, price, 128, types.RoundingUp).Int64())
}

func TestShlDiv(t *testing.T) {
	price := new(big.Int).Lsh(big.NewInt(3), 127) // 1.5 in Q128.128

	// 1500 / 1.5 = 1000 exactly.
	got := ShlDiv(big.NewInt(1500), 128, price, types.RoundingDown)
	assert.Equal(t, int64(1000), got.Int64())

	// 1 / 1.5: down gives 0, up gives 1.
	assert.Equal(t, int64(0), ShlDiv(big.NewInt(1), 128, price, types.RoundingDown).Int64())
	assert.Equal(t, int64(1), ShlDiv(big.NewInt(1), 128, price, types.RoundingUp).Int64())
}

func TestMulShrShlDivRoundTrip(t *testing.T) {
	// Pricing an amount out then back in never under-quotes the input.
	price := new(big.Int).Lsh(big.NewInt(10_025), 128)
	price.Quo(price, big.NewInt(10_000))

	for _, amount := range []int64{1, 7, 999, 123_456_789} {
		out := MulShr(big.NewInt(amount), price, 128, types.RoundingDown)
		back := ShlDiv(out, 128, price, types.RoundingUp)
		assert.LessOrEqual(t, back.Int64(), amount)
	}
}
