package liquiditybook

import (
	"math/big"

	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/helpers"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

// feeState is the path-dependent half of the fee model. It is a value type:
// quote paths work on copies and the mutating paths commit the copy back
// only once the whole operation has succeeded.
type feeState struct {
	types.VariableFeeParameters
}

// updateReferences moves the id reference to the current active id and
// decays the volatility reference, depending on how long the pair has been
// quiet. Called once per mutating swap, before the bin walk.
func (s *feeState) updateReferences(sfp types.StaticFeeParameters, activeID uint32, now uint64) {
	dt := now - s.TimeOfLastUpdate

	if dt >= uint64(sfp.FilterPeriod) {
		s.IDReference = activeID
		if dt < uint64(sfp.DecayPeriod) {
			s.VolatilityReference = uint32(
				uint64(s.VolatilityAccumulator) * uint64(sfp.ReductionFactor) / constants.BasisPointMax,
			)
		} else {
			s.VolatilityReference = 0
		}
	}

	s.TimeOfLastUpdate = now
}

// updateVolatilityAccumulator raises the accumulator with the distance the
// active id has moved from its reference, capped at the configured maximum.
// Called for every bin the swap touches.
func (s *feeState) updateVolatilityAccumulator(sfp types.StaticFeeParameters, activeID uint32) {
	delta := uint64(activeID) - uint64(s.IDReference)
	if activeID < s.IDReference {
		delta = uint64(s.IDReference) - uint64(activeID)
	}

	acc := uint64(s.VolatilityReference) + delta*constants.BasisPointMax
	if acc > uint64(sfp.MaxVolatilityAccumulator) {
		acc = uint64(sfp.MaxVolatilityAccumulator)
	}
	s.VolatilityAccumulator = uint32(acc)
}

// totalFee returns the current total fee numerator in FeePrecision units.
func (s *feeState) totalFee(sfp types.StaticFeeParameters) *big.Int {
	return helpers.GetTotalFeeNumerator(sfp, s.VolatilityAccumulator)
}
