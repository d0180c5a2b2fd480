package liquiditybook

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/helpers"
	"github.com/traderjoe-xyz/joe-v2-sub000/maths"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
	"lukechampine.com/uint128"
)

// SwapResult reports a committed swap.
type SwapResult struct {
	// AmountsIn is the input consumed, fees included.
	AmountsIn  types.Amounts
	AmountsOut types.Amounts
	TotalFees  types.Amounts
	// ActiveID is the active bin after the walk.
	ActiveID uint32
}

type binChange struct {
	id       uint32
	reserves types.Amounts
}

// Swap trades whatever input the caller transferred to the vault since the
// pair's last booking, walking bins from the active one. swapForY selects
// the direction: true sells X for Y (prices fall, ids walk down), false the
// reverse. The produced output is transferred to `to`.
//
// The whole walk is staged before anything is committed: on any error the
// pair state is untouched.
func (p *Pair) Swap(swapForY bool, to common.Address) (SwapResult, error) {
	if err := p.acquire(); err != nil {
		return SwapResult{}, err
	}
	defer p.release()

	received, err := p.amountsReceived()
	if err != nil {
		return SwapResult{}, err
	}
	amountsIn := helpers.OneSided(received.Amount(swapForY), swapForY)
	if amountsIn.IsZero() {
		return SwapResult{}, ErrInsufficientAmounts
	}

	if err := p.hooks.BeforeSwap(to, swapForY, amountsIn); err != nil {
		return SwapResult{}, fmt.Errorf("before-swap hook: %w", err)
	}

	fee := p.fee
	fee.updateReferences(p.sfp, p.activeID, p.now())

	var (
		id           = p.activeID
		amountsLeft  = amountsIn
		amountsOut   types.Amounts
		totalFees    types.Amounts
		protocolFees types.Amounts
		changes      []binChange
		binsCrossed  uint64
	)

	for {
		bin := p.bins[id]
		if !helpers.BinIsEmpty(bin, swapForY) {
			fee.updateVolatilityAccumulator(p.sfp, id)

			in, out, fees, err := helpers.GetAmountsInBin(
				bin, fee.totalFee(p.sfp), p.sfp.BinStep, swapForY, id, amountsLeft)
			if err != nil {
				return SwapResult{}, err
			}

			if !in.IsZero() {
				if amountsLeft, err = amountsLeft.Sub(in); err != nil {
					return SwapResult{}, err
				}
				if amountsOut, err = amountsOut.Add(out); err != nil {
					return SwapResult{}, helpers.ErrSwapOverflows
				}
				if totalFees, err = totalFees.Add(fees); err != nil {
					return SwapResult{}, helpers.ErrSwapOverflows
				}

				pf, err := types.U128FromBig(helpers.GetProtocolFeeAmount(
					fees.Amount(swapForY).Big(), p.sfp.ProtocolShare))
				if err != nil {
					return SwapResult{}, helpers.ErrSwapOverflows
				}
				pFees := helpers.OneSided(pf, swapForY)
				if protocolFees, err = protocolFees.Add(pFees); err != nil {
					return SwapResult{}, helpers.ErrSwapOverflows
				}

				// the bin keeps the input minus the protocol's cut, so the
				// LP share of the fee compounds into bin value
				binIn, err := in.Sub(pFees)
				if err != nil {
					return SwapResult{}, err
				}
				newBin, err := bin.Add(binIn)
				if err != nil {
					return SwapResult{}, ErrBinReserveOverflows
				}
				if newBin, err = newBin.Sub(out); err != nil {
					return SwapResult{}, err
				}
				changes = append(changes, binChange{id: id, reserves: newBin})
			}
		}

		if amountsLeft.IsZero() {
			break
		}
		next, ok := p.GetNextNonEmptyBin(swapForY, id)
		if !ok {
			return SwapResult{}, ErrOutOfLiquidity
		}
		binsCrossed++
		id = next
	}

	if amountsOut.IsZero() {
		return SwapResult{}, ErrInsufficientAmountOut
	}

	// the after-hook sees the staged result; a failure here still leaves
	// the pair untouched
	if err := p.hooks.AfterSwap(to, swapForY, amountsOut); err != nil {
		return SwapResult{}, fmt.Errorf("after-swap hook: %w", err)
	}

	// commit
	for _, c := range changes {
		p.setBin(c.id, c.reserves)
	}
	netIn, err := amountsIn.Sub(protocolFees)
	if err != nil {
		return SwapResult{}, err
	}
	if p.reserves, err = p.reserves.Add(netIn); err != nil {
		return SwapResult{}, ErrBinReserveOverflows
	}
	if p.reserves, err = p.reserves.Sub(amountsOut); err != nil {
		return SwapResult{}, err
	}
	if p.protocolFees, err = p.protocolFees.Add(protocolFees); err != nil {
		return SwapResult{}, ErrBinReserveOverflows
	}
	p.activeID = id
	p.fee = fee
	p.updateOracle(binsCrossed)

	out := amountsOut.Amount(!swapForY)
	if swapForY {
		err = p.vault.TransferY(to, out)
	} else {
		err = p.vault.TransferX(to, out)
	}
	if err != nil {
		return SwapResult{}, fmt.Errorf("transfer out: %w", err)
	}

	p.log.Debug().
		Bool("swapForY", swapForY).
		Str("amountIn", amountsIn.Amount(swapForY).String()).
		Str("amountOut", out.String()).
		Uint32("activeId", id).
		Msg("swap")

	return SwapResult{
		AmountsIn:  amountsIn,
		AmountsOut: amountsOut,
		TotalFees:  totalFees,
		ActiveID:   id,
	}, nil
}

// GetSwapOut quotes an exact-input swap without touching state. Input the
// populated bins cannot absorb is reported back rather than failing.
func (p *Pair) GetSwapOut(amountIn uint128.Uint128, swapForY bool) (types.SwapOutQuote, error) {
	fee := p.fee
	fee.updateReferences(p.sfp, p.activeID, p.now())

	var (
		id          = p.activeID
		amountsLeft = helpers.OneSided(amountIn, swapForY)
		amountsOut  types.Amounts
		totalFees   types.Amounts
	)

	for !amountsLeft.IsZero() {
		bin := p.bins[id]
		if !helpers.BinIsEmpty(bin, swapForY) {
			fee.updateVolatilityAccumulator(p.sfp, id)

			in, out, fees, err := helpers.GetAmountsInBin(
				bin, fee.totalFee(p.sfp), p.sfp.BinStep, swapForY, id, amountsLeft)
			if err != nil {
				return types.SwapOutQuote{}, err
			}
			if !in.IsZero() {
				if amountsLeft, err = amountsLeft.Sub(in); err != nil {
					return types.SwapOutQuote{}, err
				}
				if amountsOut, err = amountsOut.Add(out); err != nil {
					return types.SwapOutQuote{}, helpers.ErrSwapOverflows
				}
				if totalFees, err = totalFees.Add(fees); err != nil {
					return types.SwapOutQuote{}, helpers.ErrSwapOverflows
				}
			}
		}

		next, ok := p.GetNextNonEmptyBin(swapForY, id)
		if !ok {
			break
		}
		id = next
	}

	return types.SwapOutQuote{
		AmountInLeft: amountsLeft.Amount(swapForY),
		AmountOut:    amountsOut.Amount(!swapForY),
		Fee:          totalFees.Amount(swapForY),
	}, nil
}

// GetSwapIn quotes the input needed for an exact output without touching
// state. Output the populated bins cannot produce is reported back rather
// than failing.
func (p *Pair) GetSwapIn(amountOut uint128.Uint128, swapForY bool) (types.SwapInQuote, error) {
	fee := p.fee
	fee.updateReferences(p.sfp, p.activeID, p.now())

	// totals are accumulated in big.Int: required inputs across bins can
	// exceed 128 bits even when every per-bin amount fits
	var (
		id            = p.activeID
		amountOutLeft = amountOut
		amountInBig   = new(big.Int)
		feeTotalBig   = new(big.Int)
	)

	for !amountOutLeft.IsZero() {
		bin := p.bins[id]
		if !helpers.BinIsEmpty(bin, swapForY) {
			fee.updateVolatilityAccumulator(p.sfp, id)

			price, err := helpers.GetPriceFromID(id, p.sfp.BinStep)
			if err != nil {
				return types.SwapInQuote{}, err
			}

			reserveOut := bin.Amount(!swapForY)
			outOfBin := reserveOut
			if amountOutLeft.Cmp(reserveOut) < 0 {
				outOfBin = amountOutLeft
			}

			var needed *big.Int
			if swapForY {
				needed = maths.ShlDiv(outOfBin.Big(), constants.ScaleOffset, price, types.RoundingUp)
			} else {
				needed = maths.MulShr(outOfBin.Big(), price, constants.ScaleOffset, types.RoundingUp)
			}
			feeAmount := helpers.GetFeeAmount(needed, fee.totalFee(p.sfp))

			amountInBig.Add(amountInBig, needed)
			amountInBig.Add(amountInBig, feeAmount)
			feeTotalBig.Add(feeTotalBig, feeAmount)
			amountOutLeft = amountOutLeft.Sub(outOfBin)
		}

		if amountOutLeft.IsZero() {
			break
		}
		next, ok := p.GetNextNonEmptyBin(swapForY, id)
		if !ok {
			break
		}
		id = next
	}

	amountIn, err := types.U128FromBig(amountInBig)
	if err != nil {
		return types.SwapInQuote{}, helpers.ErrSwapOverflows
	}
	feeTotal, err := types.U128FromBig(feeTotalBig)
	if err != nil {
		return types.SwapInQuote{}, helpers.ErrSwapOverflows
	}

	return types.SwapInQuote{
		AmountIn:      amountIn,
		AmountOutLeft: amountOutLeft,
		Fee:           feeTotal,
	}, nil
}
