package helpers

import (
	"errors"
	"math/big"

	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/maths"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
	"lukechampine.com/uint128"
)

var (
	ErrSwapOverflows      = errors.New("helpers: swap amount exceeds 128 bits")
	ErrLiquidityOverflows = errors.New("helpers: bin liquidity exceeds 256 bits")
)

// GetLiquidity values a pair of amounts at a Q128.128 bin price:
//
//	L = price * x + (y << 128)
//
// The result is the bin's worth, in Y units, as a Q128.128 value.
func GetLiquidity(amounts types.Amounts, price *big.Int) *big.Int {
	liquidity := new(big.Int).Mul(price, amounts.BigX())
	return liquidity.Add(liquidity, new(big.Int).Lsh(amounts.BigY(), constants.ScaleOffset))
}

// GetMaxAmountIn returns the input needed to drain the bin's out-side
// reserve at the bin price, before fees, rounding up.
func GetMaxAmountIn(binReserves types.Amounts, price *big.Int, swapForY bool) *big.Int {
	if swapForY {
		// X needed to buy all Y: y << 128 / price
		return maths.ShlDiv(binReserves.BigY(), constants.ScaleOffset, price, types.RoundingUp)
	}
	// Y needed to buy all X: x * price >> 128
	return maths.MulShr(binReserves.BigX(), price, constants.ScaleOffset, types.RoundingUp)
}

// GetAmountsInBin consumes as much of amountsInLeft as the bin can absorb
// at its local price. It returns the input taken (fee included), the output
// produced, and the fee, all on their respective sides of an Amounts pair.
// The bin is fully drained when the input covers its whole out-side reserve.
func GetAmountsInBin(
	binReserves types.Amounts,
	feeNumerator *big.Int,
	binStep uint16,
	swapForY bool,
	activeID uint32,
	amountsInLeft types.Amounts,
) (amountsInWithFees, amountsOutOfBin, totalFees types.Amounts, err error) {

	price, err := GetPriceFromID(activeID, binStep)
	if err != nil {
		return types.Amounts{}, types.Amounts{}, types.Amounts{}, err
	}

	binReserveOut := binReserves.Amount(!swapForY)
	if binReserveOut.IsZero() {
		return types.Amounts{}, types.Amounts{}, types.Amounts{}, nil
	}

	maxAmountIn := GetMaxAmountIn(binReserves, price, swapForY)
	maxFee := GetFeeAmount(maxAmountIn, feeNumerator)
	maxAmountInWithFee := new(big.Int).Add(maxAmountIn, maxFee)

	amountIn := amountsInLeft.Amount(swapForY).Big()

	var amountInWithFee, fee, amountOut *big.Int
	if amountIn.Cmp(maxAmountInWithFee) >= 0 {
		// drain the bin
		amountInWithFee, fee, amountOut = maxAmountInWithFee, maxFee, binReserveOut.Big()
	} else {
		fee = GetFeeAmountFrom(amountIn, feeNumerator)
		netIn := new(big.Int).Sub(amountIn, fee)

		if swapForY {
			amountOut = maths.MulShr(netIn, price, constants.ScaleOffset, types.RoundingDown)
		} else {
			amountOut = maths.ShlDiv(netIn, constants.ScaleOffset, price, types.RoundingDown)
		}
		amountInWithFee = amountIn

		if amountOut.Cmp(binReserveOut.Big()) > 0 {
			amountOut = binReserveOut.Big()
		}
	}

	inU, err := types.U128FromBig(amountInWithFee)
	if err != nil {
		return types.Amounts{}, types.Amounts{}, types.Amounts{}, ErrSwapOverflows
	}
	feeU, err := types.U128FromBig(fee)
	if err != nil {
		return types.Amounts{}, types.Amounts{}, types.Amounts{}, ErrSwapOverflows
	}
	outU, err := types.U128FromBig(amountOut)
	if err != nil {
		return types.Amounts{}, types.Amounts{}, types.Amounts{}, ErrSwapOverflows
	}

	amountsInWithFees = types.Amounts{}.WithAmount(swapForY, inU)
	totalFees = types.Amounts{}.WithAmount(swapForY, feeU)
	amountsOutOfBin = types.Amounts{}.WithAmount(!swapForY, outU)
	return amountsInWithFees, amountsOutOfBin, totalFees, nil
}

// GetSharesAndEffectiveAmounts converts a deposit into bin shares. An empty
// bin mints shares equal to the deposit's liquidity; a funded bin mints
// pro-rata against its existing liquidity, rounding down so rounding dust
// accrues to the bin's current holders.
func GetSharesAndEffectiveAmounts(
	binReserves, amountsIn types.Amounts,
	price *big.Int,
	totalSupply *big.Int,
) (*big.Int, types.Amounts, error) {

	userLiquidity := GetLiquidity(amountsIn, price)
	if userLiquidity.Cmp(constants.MaxUint256) > 0 {
		return nil, types.Amounts{}, ErrLiquidityOverflows
	}

	binLiquidity := GetLiquidity(binReserves, price)
	if binLiquidity.Sign() == 0 || totalSupply.Sign() == 0 {
		return userLiquidity, amountsIn, nil
	}

	shares := maths.MulDiv(userLiquidity, totalSupply, binLiquidity, types.RoundingDown)
	return shares, amountsIn, nil
}

// GetAmountOutOfBin is the burn-side inverse of mint: the holder's pro-rata
// slice of both reserves, rounded down.
func GetAmountOutOfBin(binReserves types.Amounts, shares, totalSupply *big.Int) (types.Amounts, error) {
	if totalSupply.Sign() == 0 {
		return types.Amounts{}, nil
	}
	outX := maths.MulDiv(binReserves.BigX(), shares, totalSupply, types.RoundingDown)
	outY := maths.MulDiv(binReserves.BigY(), shares, totalSupply, types.RoundingDown)
	return types.AmountsFromBig(outX, outY)
}

// CompositionWithinTolerance checks a deposit's X:Y composition against the
// active bin's current composition. Compositions are compared as the Y
// fraction of total liquidity, cross-multiplied to stay in integers:
//
//	| Ly_in * L_bin - Ly_bin * L_in |  <=  tolerance * L_in * L_bin / 10_000
//
// An empty bin accepts any composition (the deposit defines it).
func CompositionWithinTolerance(binReserves, amountsIn types.Amounts, price *big.Int, toleranceBps uint16) bool {
	if binReserves.IsZero() {
		return true
	}

	binLiquidity := GetLiquidity(binReserves, price)
	inLiquidity := GetLiquidity(amountsIn, price)
	if inLiquidity.Sign() == 0 {
		return true
	}

	binY := new(big.Int).Lsh(binReserves.BigY(), constants.ScaleOffset)
	inY := new(big.Int).Lsh(amountsIn.BigY(), constants.ScaleOffset)

	diff := new(big.Int).Sub(
		new(big.Int).Mul(inY, binLiquidity),
		new(big.Int).Mul(binY, inLiquidity),
	)
	diff.Abs(diff)

	allowed := new(big.Int).Mul(inLiquidity, binLiquidity)
	allowed.Mul(allowed, new(big.Int).SetUint64(uint64(toleranceBps)))
	allowed.Quo(allowed, big.NewInt(constants.BasisPointMax))

	return diff.Cmp(allowed) <= 0
}

// BinIsEmpty reports whether the bin holds nothing on the side that a swap
// in the given direction would consume.
func BinIsEmpty(binReserves types.Amounts, swapForY bool) bool {
	return binReserves.Amount(!swapForY).IsZero()
}

// OneSided builds an Amounts pair holding a single side.
func OneSided(v uint128.Uint128, isX bool) types.Amounts {
	if isX {
		return types.Amounts{X: v}
	}
	return types.Amounts{Y: v}
}
