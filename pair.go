// Package liquiditybook implements a discretized-liquidity market maker:
// pair liquidity is partitioned into price bins on a geometric grid, trades
// walk the populated bins from the active one, and a volatility-driven fee
// accrues to the bins that serve them. The engine is single-writer and
// fully atomic per call: every mutating operation stages its deltas locally
// and commits only after all checks pass.
package liquiditybook

import (
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/traderjoe-xyz/joe-v2-sub000/bintree"
	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/helpers"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

// PairConfig is the immutable construction-time configuration of a pair.
// Fee parameters may later be replaced through SetStaticFeeParameters by
// the governance address; everything else is fixed for the pair's lifetime.
type PairConfig struct {
	FeeParameters types.StaticFeeParameters
	// ActiveID is the starting bin id, which encodes the starting price.
	ActiveID uint32
	// FlashLoanFee is the flash-loan rate in FeePrecision units.
	FlashLoanFee uint64
	// CompositionTolerance is the slack, in bps, allowed between a deposit's
	// X:Y composition and the active bin's current composition.
	CompositionTolerance uint16
	// FeeRecipient may collect accrued protocol fees.
	FeeRecipient common.Address
	// Governance may replace fee parameters and force volatility decay.
	Governance common.Address
}

// Pair is one trading pair's pricing, matching, fee and oracle engine.
type Pair struct {
	sfp                  types.StaticFeeParameters
	flashLoanFee         uint64
	compositionTolerance uint16
	feeRecipient         common.Address
	governance           common.Address

	vault  TokenVault
	shares ShareLedger
	hooks  Hooks
	log    zerolog.Logger
	now    func() uint64

	// busy is the single-writer guard; every mutating operation must win
	// the flag or fail with ErrReentrantCall. A flag rather than a mutex so
	// a flash-loan callback calling back in fails fast instead of
	// deadlocking.
	busy atomic.Bool

	activeID     uint32
	bins         map[uint32]types.Amounts
	tree         *bintree.Tree
	reserves     types.Amounts
	protocolFees types.Amounts
	fee          feeState
	oracle       oracle
}

// NewPair validates the configuration and builds an empty pair.
func NewPair(cfg PairConfig, vault TokenVault, shares ShareLedger, opts ...Option) (*Pair, error) {
	if vault == nil || shares == nil {
		return nil, ErrInvalidConfig
	}
	if err := helpers.ValidateStaticFeeParameters(cfg.FeeParameters); err != nil {
		return nil, err
	}
	if cfg.ActiveID > constants.MaxBinID ||
		cfg.FlashLoanFee > constants.MaxFeeRate ||
		cfg.CompositionTolerance > constants.BasisPointMax {
		return nil, ErrInvalidConfig
	}

	p := &Pair{
		sfp:                  cfg.FeeParameters,
		flashLoanFee:         cfg.FlashLoanFee,
		compositionTolerance: cfg.CompositionTolerance,
		feeRecipient:         cfg.FeeRecipient,
		governance:           cfg.Governance,
		vault:                vault,
		shares:               shares,
		hooks:                NoopHooks{},
		log:                  zerolog.Nop(),
		now:                  defaultClock,
		activeID:             cfg.ActiveID,
		bins:                 make(map[uint32]types.Amounts),
		tree:                 bintree.New(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.fee.IDReference = cfg.ActiveID
	p.fee.TimeOfLastUpdate = p.now()
	return p, nil
}

func (p *Pair) acquire() error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (p *Pair) release() { p.busy.Store(false) }

// GetActiveID returns the bin id defining the current spot price.
func (p *Pair) GetActiveID() uint32 { return p.activeID }

// GetBinStep returns the pair's price increment in bps.
func (p *Pair) GetBinStep() uint16 { return p.sfp.BinStep }

// GetBin returns a bin's reserves; an unpopulated id is all zero.
func (p *Pair) GetBin(id uint32) types.Amounts { return p.bins[id] }

// GetReserves returns the pair's aggregate reserves, protocol fees excluded.
func (p *Pair) GetReserves() types.Amounts { return p.reserves }

// GetProtocolFees returns the accrued, uncollected protocol fees.
func (p *Pair) GetProtocolFees() types.Amounts { return p.protocolFees }

// GetStaticFeeParameters returns the current fee configuration.
func (p *Pair) GetStaticFeeParameters() types.StaticFeeParameters { return p.sfp }

// GetVariableFeeParameters returns the volatility state.
func (p *Pair) GetVariableFeeParameters() types.VariableFeeParameters {
	return p.fee.VariableFeeParameters
}

// GetBaseFee returns the flat fee numerator in FeePrecision units.
func (p *Pair) GetBaseFee() *big.Int {
	return helpers.GetBaseFeeNumerator(p.sfp.BinStep, p.sfp.BaseFactor)
}

// GetVariableFee returns the volatility fee numerator at the current
// accumulator, in FeePrecision units.
func (p *Pair) GetVariableFee() *big.Int {
	return helpers.GetVariableFeeNumerator(p.fee.VolatilityAccumulator, p.sfp.BinStep, p.sfp.VariableFeeControl)
}

// GetPriceFromID converts a bin id to its Q128.128 price on this pair's
// grid.
func (p *Pair) GetPriceFromID(id uint32) (*big.Int, error) {
	return helpers.GetPriceFromID(id, p.sfp.BinStep)
}

// GetIDFromPrice converts a Q128.128 price to the nearest bin id on this
// pair's grid.
func (p *Pair) GetIDFromPrice(price *big.Int) (uint32, error) {
	return helpers.GetIDFromPrice(price, p.sfp.BinStep)
}

// GetNextNonEmptyBin returns the closest populated bin beyond id in swap
// order: below id when swapping X for Y, above otherwise. When none exists
// ok is false and the returned id is the exhausted end of the id space.
func (p *Pair) GetNextNonEmptyBin(swapForY bool, id uint32) (uint32, bool) {
	if swapForY {
		if next, ok := p.tree.NextBelow(id); ok {
			return next, true
		}
		return constants.MinBinID, false
	}
	if next, ok := p.tree.NextAbove(id); ok {
		return next, true
	}
	return constants.MaxBinID, false
}

// CollectProtocolFees transfers the accrued protocol fees to the fee
// recipient. Only the fee recipient may call it.
func (p *Pair) CollectProtocolFees(caller common.Address) (types.Amounts, error) {
	if caller != p.feeRecipient {
		return types.Amounts{}, ErrUnauthorized
	}
	if err := p.acquire(); err != nil {
		return types.Amounts{}, err
	}
	defer p.release()

	collected := p.protocolFees
	if collected.IsZero() {
		return types.Amounts{}, nil
	}

	if !collected.X.IsZero() {
		if err := p.vault.TransferX(p.feeRecipient, collected.X); err != nil {
			return types.Amounts{}, err
		}
	}
	if !collected.Y.IsZero() {
		if err := p.vault.TransferY(p.feeRecipient, collected.Y); err != nil {
			return types.Amounts{}, err
		}
	}
	p.protocolFees = types.Amounts{}

	p.log.Debug().
		Str("feeX", collected.X.String()).
		Str("feeY", collected.Y.String()).
		Msg("protocol fees collected")
	return collected, nil
}

// SetStaticFeeParameters replaces the fee configuration. Only governance
// may call it; the bin step is immutable and the new worst-case fee is
// validated the same way as at construction.
func (p *Pair) SetStaticFeeParameters(caller common.Address, sfp types.StaticFeeParameters) error {
	if caller != p.governance {
		return ErrUnauthorized
	}
	if sfp.BinStep != p.sfp.BinStep {
		return helpers.ErrInvalidStaticFeeParameters
	}
	if err := helpers.ValidateStaticFeeParameters(sfp); err != nil {
		return err
	}
	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	p.sfp = sfp
	p.log.Debug().Msg("static fee parameters updated")
	return nil
}

// ForceDecay decays the volatility reference by the reduction factor,
// cooling the variable fee without waiting for the decay period. Only
// governance may call it.
func (p *Pair) ForceDecay(caller common.Address) error {
	if caller != p.governance {
		return ErrUnauthorized
	}
	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	p.fee.VolatilityReference = uint32(
		uint64(p.fee.VolatilityReference) * uint64(p.sfp.ReductionFactor) / constants.BasisPointMax,
	)
	return nil
}

// amountsReceived measures the balance increase the caller produced before
// invoking the operation: vault balances minus everything the pair has
// booked.
func (p *Pair) amountsReceived() (types.Amounts, error) {
	balX, err := p.vault.BalanceX()
	if err != nil {
		return types.Amounts{}, err
	}
	balY, err := p.vault.BalanceY()
	if err != nil {
		return types.Amounts{}, err
	}

	booked, err := p.reserves.Add(p.protocolFees)
	if err != nil {
		return types.Amounts{}, err
	}
	return types.Amounts{X: balX, Y: balY}.Sub(booked)
}

// setBin commits a bin's new reserves, maintaining the populated-bin index.
func (p *Pair) setBin(id uint32, reserves types.Amounts) {
	if reserves.IsZero() {
		delete(p.bins, id)
		p.tree.Remove(id)
		return
	}
	if _, ok := p.bins[id]; !ok {
		p.tree.Add(id)
	}
	p.bins[id] = reserves
}
