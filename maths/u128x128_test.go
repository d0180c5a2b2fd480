package maths

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
)

// scaleFrac returns num/den in Q128.128.
func scaleFrac(num, den int64) *big.Int {
	v := new(big.Int).Lsh(big.NewInt(num), constants.ScaleOffset)
	return v.Quo(v, big.NewInt(den))
}

// assertClose checks |got-want| <= |want| >> bits, i.e. got matches want
// to a relative error of 2^-bits.
func assertClose(t *testing.T, want, got *big.Int, bits uint) {
	t.Helper()
	diff := new(big.Int).Sub(want, got)
	diff.Abs(diff)
	tol := new(big.Int).Rsh(new(big.Int).Abs(want), bits)
	if tol.Sign() == 0 {
		tol.SetInt64(1)
	}
	assert.LessOrEqual(t, diff.Cmp(tol), 0, "want %s, got %s (diff %s)", want, got, diff)
}

func TestPowZeroExponent(t *testing.T) {
	got, err := Pow(scaleFrac(3, 2), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cmp(constants.Scale))
}

func TestPowIdentityBase(t *testing.T) {
	for _, e := range []int{1, 2, 100, -100, 1 << 20} {
		got, err := Pow(new(big.Int).Set(constants.Scale), e)
		require.NoError(t, err)
		assertClose(t, constants.Scale, got, 100)
	}
}

func TestPowSmallExponents(t *testing.T) {
	base := scaleFrac(3, 2) // 1.5

	got, err := Pow(base, 1)
	require.NoError(t, err)
	assertClose(t, base, got, 100)

	got, err = Pow(base, 2)
	require.NoError(t, err)
	assertClose(t, scaleFrac(9, 4), got, 100)

	got, err = Pow(base, 3)
	require.NoError(t, err)
	assertClose(t, scaleFrac(27, 8), got, 100)

	got, err = Pow(base, -1)
	require.NoError(t, err)
	assertClose(t, scaleFrac(2, 3), got, 100)
}

func TestPowNegatedExponentsMultiplyToOne(t *testing.T) {
	base := scaleFrac(10_001, 10_000)
	for _, e := range []int{1, 10, 1_000, 100_000} {
		up, err := Pow(base, e)
		require.NoError(t, err)
		down, err := Pow(base, -e)
		require.NoError(t, err)

		prod := new(big.Int).Rsh(new(big.Int).Mul(up, down), constants.ScaleOffset)
		assertClose(t, constants.Scale, prod, 60)
	}
}

func TestPowUnderflow(t *testing.T) {
	// 0.5^200 is far below the smallest representable Q128.128 value.
	_, err := Pow(scaleFrac(1, 2), 200)
	assert.ErrorIs(t, err, ErrPowUnderflow)
}

func TestLog2PowersOfTwo(t *testing.T) {
	tests := []struct {
		x    *big.Int
		want int64
	}{
		{new(big.Int).Set(constants.Scale), 0},
		{new(big.Int).Lsh(constants.Scale, 1), 1},
		{new(big.Int).Lsh(constants.Scale, 2), 2},
		{new(big.Int).Lsh(constants.Scale, 100), 100},
		{new(big.Int).Rsh(constants.Scale, 1), -1},
		{new(big.Int).Rsh(constants.Scale, 64), -64},
	}
	for _, tt := range tests {
		got, err := Log2(tt.x)
		require.NoError(t, err)

		want := new(big.Int).Lsh(big.NewInt(tt.want), constants.ScaleOffset)
		if tt.want < 0 {
			want = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(-tt.want), constants.ScaleOffset))
		}
		assertClose(t, want, got, 100)
	}
}

func TestLog2OfThreeHalves(t *testing.T) {
	got, err := Log2(scaleFrac(3, 2))
	require.NoError(t, err)

	// log2(1.5) = 0.58496250072115618...
	want := new(big.Int).Lsh(big.NewInt(58_496_250_072_115_618), constants.ScaleOffset)
	want.Quo(want, new(big.Int).SetUint64(100_000_000_000_000_000))
	assertClose(t, want, got, 50)
}

func TestLog2Monotonic(t *testing.T) {
	prev, err := Log2(scaleFrac(1, 3))
	require.NoError(t, err)
	for _, frac := range [][2]int64{{1, 2}, {9, 10}, {1, 1}, {10_001, 10_000}, {3, 2}, {7, 2}, {1000, 1}} {
		cur, err := Log2(scaleFrac(frac[0], frac[1]))
		require.NoError(t, err)
		assert.Equal(t, 1, cur.Cmp(prev), "log2(%d/%d)", frac[0], frac[1])
		prev = cur
	}
}

func TestLog2NonPositive(t *testing.T) {
	_, err := Log2(big.NewInt(0))
	assert.ErrorIs(t, err, ErrLogUnderflow)

	_, err = Log2(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrLogUnderflow)
}

func TestPowLog2RoundTrip(t *testing.T) {
	base := scaleFrac(10_025, 10_000) // a 25 bps step
	logBase, err := Log2(base)
	require.NoError(t, err)

	for _, e := range []int64{1, 37, 5_000} {
		p, err := Pow(base, int(e))
		require.NoError(t, err)
		logP, err := Log2(p)
		require.NoError(t, err)

		want := new(big.Int).Mul(logBase, big.NewInt(e))
		assertClose(t, want, logP, 40)
	}
}

func TestDivRound(t *testing.T) {
	assert.Equal(t, int64(2), DivRound(big.NewInt(3), big.NewInt(2)).Int64())
	assert.Equal(t, int64(-2), DivRound(big.NewInt(-3), big.NewInt(2)).Int64())
	assert.Equal(t, int64(1), DivRound(big.NewInt(4), big.NewInt(3)).Int64())
	assert.Equal(t, int64(2), DivRound(big.NewInt(5), big.NewInt(3)).Int64())
	assert.Equal(t, int64(-1), DivRound(big.NewInt(-4), big.NewInt(3)).Int64())
	assert.Equal(t, int64(-2), DivRound(big.NewInt(-5), big.NewInt(3)).Int64())
	assert.Equal(t, int64(0), DivRound(big.NewInt(0), big.NewInt(7)).Int64())
}
