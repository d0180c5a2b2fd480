package constants

import "math/big"

const (
	// ScaleOffset is the number of fractional bits in a Q128.128 value.
	ScaleOffset = 128

	// BasisPointMax is the number of basis points in 100%.
	BasisPointMax = 10_000

	// Precision is the fixed-point unit for liquidity distributions.
	Precision = 1_000_000_000_000_000_000

	// FeePrecision is the denominator of every fee rate.
	FeePrecision = 1_000_000_000
	// MaxFeeRate caps the total swap fee at 10% of FeePrecision.
	MaxFeeRate = 100_000_000

	// RealIDShift is the bin id whose price is exactly 1.0.
	RealIDShift = 1 << 23

	// MinBinID and MaxBinID bound the 24-bit id space.
	MinBinID = 0
	MaxBinID = (1 << 24) - 1

	MinBinStep = 1
	MaxBinStep = 200

	// MaxProtocolShare caps the protocol's cut of the total fee, in bps.
	MaxProtocolShare = 2_500

	// OracleMaxSize bounds IncreaseOracleLength.
	OracleMaxSize = 65_535
)

// These are big.Int values, initialized once.
var (
	// Scale is 1.0 in Q128.128.
	//  Scale = new(big.Int).Lsh(big.NewInt(1), constants.ScaleOffset)
	Scale = new(big.Int).Lsh(big.NewInt(1), ScaleOffset)

	// ScaleSquared is Scale * Scale, the square of the Q128.128 one.
	ScaleSquared = new(big.Int).Lsh(big.NewInt(1), 2*ScaleOffset)

	// MaxUint128 is the largest value a bin reserve may hold.
	MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	// MaxUint256 bounds intermediate Q128.128 products.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// PrecisionBig
	//  PrecisionBig = big.NewInt(constants.Precision)
	PrecisionBig = big.NewInt(Precision)

	// FeePrecisionBig
	//  FeePrecisionBig = big.NewInt(constants.FeePrecision)
	FeePrecisionBig = big.NewInt(FeePrecision)
)
