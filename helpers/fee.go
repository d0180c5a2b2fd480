package helpers

import (
	"errors"
	"math/big"

	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/maths"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

var (
	ErrInvalidStaticFeeParameters = errors.New("helpers: invalid static fee parameters")
	ErrMaxTotalFeeExceeded        = errors.New("helpers: worst-case total fee exceeds the protocol maximum")
)

// GetBaseFeeNumerator returns the flat fee component in FeePrecision units.
//
//	baseFee = binStep * baseFactor * 10
func GetBaseFeeNumerator(binStep, baseFactor uint16) *big.Int {
	return new(big.Int).SetUint64(uint64(binStep) * uint64(baseFactor) * 10)
}

// GetVariableFeeNumerator returns the volatility-driven fee component in
// FeePrecision units, quadratic in (volatilityAccumulator * binStep) and
// scaled by variableFeeControl, rounded up.
func GetVariableFeeNumerator(volatilityAccumulator uint32, binStep uint16, variableFeeControl uint32) *big.Int {
	if variableFeeControl == 0 {
		return big.NewInt(0)
	}

	prod := new(big.Int).Mul(
		new(big.Int).SetUint64(uint64(volatilityAccumulator)),
		new(big.Int).SetUint64(uint64(binStep)),
	)
	vFee := new(big.Int).Mul(
		new(big.Int).Mul(prod, prod),
		new(big.Int).SetUint64(uint64(variableFeeControl)),
	)

	return new(big.Int).Quo(
		new(big.Int).Add(vFee, big.NewInt(99_999_999_999)),
		big.NewInt(100_000_000_000),
	)
}

// GetTotalFeeNumerator returns base + variable fee, capped at MaxFeeRate.
// A validated configuration never reaches the cap; it stands as a guard
// only.
func GetTotalFeeNumerator(p types.StaticFeeParameters, volatilityAccumulator uint32) *big.Int {
	total := new(big.Int).Add(
		GetBaseFeeNumerator(p.BinStep, p.BaseFactor),
		GetVariableFeeNumerator(volatilityAccumulator, p.BinStep, p.VariableFeeControl),
	)
	if total.Cmp(big.NewInt(constants.MaxFeeRate)) > 0 {
		return big.NewInt(constants.MaxFeeRate)
	}
	return total
}

// ValidateStaticFeeParameters rejects configurations whose fee could ever
// exceed the protocol maximum, so the trade path never re-checks them.
func ValidateStaticFeeParameters(p types.StaticFeeParameters) error {
	if p.BinStep < constants.MinBinStep || p.BinStep > constants.MaxBinStep {
		return ErrInvalidBinStep
	}
	if p.FilterPeriod >= p.DecayPeriod {
		return ErrInvalidStaticFeeParameters
	}
	if p.ReductionFactor > constants.BasisPointMax {
		return ErrInvalidStaticFeeParameters
	}
	if p.ProtocolShare > constants.MaxProtocolShare {
		return ErrInvalidStaticFeeParameters
	}
	if p.BaseFactor == 0 && p.VariableFeeControl == 0 {
		return ErrInvalidStaticFeeParameters
	}

	worstCase := new(big.Int).Add(
		GetBaseFeeNumerator(p.BinStep, p.BaseFactor),
		GetVariableFeeNumerator(p.MaxVolatilityAccumulator, p.BinStep, p.VariableFeeControl),
	)
	if worstCase.Cmp(big.NewInt(constants.MaxFeeRate)) > 0 {
		return ErrMaxTotalFeeExceeded
	}
	return nil
}

// GetFeeAmountFrom extracts the fee from an amount that already includes
// it, rounding up.
func GetFeeAmountFrom(amountWithFees, feeNumerator *big.Int) *big.Int {
	return maths.MulDiv(
		amountWithFees,
		feeNumerator,
		constants.FeePrecisionBig,
		types.RoundingUp,
	)
}

// GetFeeAmount returns the fee to add on top of a net amount, rounding up:
//
//	fee = amount * rate / (1 - rate)
func GetFeeAmount(amount, feeNumerator *big.Int) *big.Int {
	denominator := new(big.Int).Sub(constants.FeePrecisionBig, feeNumerator)
	return maths.MulDiv(amount, feeNumerator, denominator, types.RoundingUp)
}

// GetProtocolFeeAmount carves the protocol's share out of a total fee,
// rounding down so liquidity providers keep the remainder.
func GetProtocolFeeAmount(totalFee *big.Int, protocolShare uint16) *big.Int {
	return maths.MulDiv(
		totalFee,
		new(big.Int).SetUint64(uint64(protocolShare)),
		big.NewInt(constants.BasisPointMax),
		types.RoundingDown,
	)
}

// GetFlashLoanFees returns the fees owed on a flash-loan of the given
// amounts at the pair's flash-loan rate, each rounded up.
func GetFlashLoanFees(amounts types.Amounts, flashLoanFee uint64) (types.Amounts, error) {
	rate := new(big.Int).SetUint64(flashLoanFee)
	feeX := maths.MulDiv(amounts.BigX(), rate, constants.FeePrecisionBig, types.RoundingUp)
	feeY := maths.MulDiv(amounts.BigY(), rate, constants.FeePrecisionBig, types.RoundingUp)
	return types.AmountsFromBig(feeX, feeY)
}
