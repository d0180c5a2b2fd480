package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestU128FromBig(t *testing.T) {
	v, err := U128FromBig(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(42), v)

	// A value crossing the 64-bit boundary keeps both halves.
	b := new(big.Int).Lsh(big.NewInt(3), 64)
	b.Add(b, big.NewInt(7))
	v, err = U128FromBig(b)
	require.NoError(t, err)
	assert.Equal(t, uint128.New(7, 3), v)

	_, err = U128FromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = U128FromBig(new(big.Int).Lsh(big.NewInt(1), 128))
	assert.ErrorIs(t, err, ErrAmountOverflow)

	v, err = U128FromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, uint128.Max, v)
}

func TestAmountsAddSub(t *testing.T) {
	a := AmountsFrom64(100, 200)
	b := AmountsFrom64(1, 2)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, AmountsFrom64(101, 202), sum)

	diff, err := sum.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, a, diff)

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrAmountUnderflow)

	top := Amounts{X: uint128.Max}
	_, err = top.Add(AmountsFrom64(1, 0))
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestAmountsSideSelection(t *testing.T) {
	a := AmountsFrom64(10, 20)

	assert.Equal(t, uint128.From64(10), a.Amount(true))
	assert.Equal(t, uint128.From64(20), a.Amount(false))

	assert.Equal(t, AmountsFrom64(99, 20), a.WithAmount(true, uint128.From64(99)))
	assert.Equal(t, AmountsFrom64(10, 99), a.WithAmount(false, uint128.From64(99)))
}

func TestAmountsRoundTripBig(t *testing.T) {
	a := AmountsFrom64(123, 456)
	back, err := AmountsFromBig(a.BigX(), a.BigY())
	require.NoError(t, err)
	assert.Equal(t, a, back)

	assert.True(t, Amounts{}.IsZero())
	assert.False(t, a.IsZero())
}
