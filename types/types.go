package types

import (
	"lukechampine.com/uint128"
)

// StaticFeeParameters is the immutable-per-configuration half of the fee
// model. All rates are checked at configuration time, never at trade time.
type StaticFeeParameters struct {
	// BinStep is the price increment between adjacent bins, in bps.
	BinStep uint16
	// BaseFactor scales the flat component of the swap fee.
	BaseFactor uint16
	// FilterPeriod is the minimum age, in seconds, before references move.
	FilterPeriod uint16
	// DecayPeriod is the age, in seconds, past which volatility resets.
	DecayPeriod uint16
	// ReductionFactor decays the volatility reference, in bps.
	ReductionFactor uint16
	// VariableFeeControl scales the quadratic volatility component.
	VariableFeeControl uint32
	// ProtocolShare is the protocol's cut of the total fee, in bps.
	ProtocolShare uint16
	// MaxVolatilityAccumulator caps the volatility accumulator.
	MaxVolatilityAccumulator uint32
}

// VariableFeeParameters is the per-swap mutable half of the fee model.
type VariableFeeParameters struct {
	VolatilityAccumulator uint32
	VolatilityReference   uint32
	IDReference           uint32
	TimeOfLastUpdate      uint64
}

// OracleParameters describes the oracle ring buffer.
type OracleParameters struct {
	// SampleLifetime is the minimum age, in seconds, between stored samples.
	SampleLifetime uint64
	Size           uint16
	ActiveSize     uint16
	LastUpdated    uint64
	FirstTimestamp uint64
}

// OracleSample is a time-accumulated snapshot; each counter is the sum of
// value x elapsedSeconds since the pair's first sample.
type OracleSample struct {
	Timestamp            uint64
	CumulativeID         uint64
	CumulativeVolatility uint64
	CumulativeBinCrossed uint64
}

// LiquidityConfig describes one bin of a mint call. Distributions are
// fractions of the amounts received, in constants.Precision units; across
// one call each side must sum to at most Precision.
type LiquidityConfig struct {
	ID            uint32
	DistributionX uint64
	DistributionY uint64
}

// SwapOutQuote is the result of quoting an exact-input swap.
type SwapOutQuote struct {
	// AmountInLeft is input the populated bins could not absorb.
	AmountInLeft uint128.Uint128
	AmountOut    uint128.Uint128
	Fee          uint128.Uint128
}

// SwapInQuote is the result of quoting an exact-output swap.
type SwapInQuote struct {
	AmountIn uint128.Uint128
	// AmountOutLeft is output the populated bins could not produce.
	AmountOutLeft uint128.Uint128
	Fee           uint128.Uint128
}
