package liquiditybook

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/helpers"
	"github.com/traderjoe-xyz/joe-v2-sub000/maths"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

// MintResult reports a committed mint.
type MintResult struct {
	// AmountsReceived is the balance increase the caller produced.
	AmountsReceived types.Amounts
	// AmountsUsed is the part allocated into bins; the rest was refunded.
	AmountsUsed types.Amounts
	// Shares holds the shares minted per config entry.
	Shares []*big.Int
}

// BurnResult reports a committed burn.
type BurnResult struct {
	// AmountsOut is the total withdrawn and transferred to the recipient.
	AmountsOut types.Amounts
	// PerBin holds the withdrawal from each config entry.
	PerBin []types.Amounts
}

// Mint allocates the amounts the caller transferred to the vault across the
// given bins, minting bin shares to `to`. Each config's distribution is a
// Precision-scaled fraction of the received amounts; across the call each
// side must sum to at most Precision. Funds left unallocated are refunded
// to refundTo.
//
// The active bin accepts both tokens but its deposit composition must match
// the bin's current composition within the pair's tolerance; bins above the
// active one accept only X, bins below only Y.
func (p *Pair) Mint(to common.Address, configs []types.LiquidityConfig, refundTo common.Address) (MintResult, error) {
	if len(configs) == 0 {
		return MintResult{}, ErrInvalidInput
	}

	var sumX, sumY uint64
	for _, c := range configs {
		if c.ID > constants.MaxBinID ||
			c.DistributionX > constants.Precision || c.DistributionY > constants.Precision {
			return MintResult{}, ErrInvalidInput
		}
		sumX += c.DistributionX
		sumY += c.DistributionY
		if sumX > constants.Precision || sumY > constants.Precision {
			return MintResult{}, ErrInvalidDistribution
		}
	}

	if err := p.acquire(); err != nil {
		return MintResult{}, err
	}
	defer p.release()

	received, err := p.amountsReceived()
	if err != nil {
		return MintResult{}, err
	}
	if received.IsZero() {
		return MintResult{}, ErrInsufficientAmounts
	}

	if err := p.hooks.BeforeMint(to, configs, received); err != nil {
		return MintResult{}, fmt.Errorf("before-mint hook: %w", err)
	}

	var (
		changes    = make([]binChange, 0, len(configs))
		shares     = make([]*big.Int, 0, len(configs))
		totalUsed  types.Amounts
		staged     = make(map[uint32]types.Amounts, len(configs))
		stagedShrs = make(map[uint32]*big.Int, len(configs))
	)

	binOf := func(id uint32) types.Amounts {
		if b, ok := staged[id]; ok {
			return b
		}
		return p.bins[id]
	}
	supplyOf := func(id uint32) *big.Int {
		supply := new(big.Int).Set(p.shares.TotalSupply(id))
		if s, ok := stagedShrs[id]; ok {
			supply.Add(supply, s)
		}
		return supply
	}

	for _, c := range configs {
		amountX := maths.MulDiv(received.BigX(),
			new(big.Int).SetUint64(c.DistributionX), constants.PrecisionBig, types.RoundingDown)
		amountY := maths.MulDiv(received.BigY(),
			new(big.Int).SetUint64(c.DistributionY), constants.PrecisionBig, types.RoundingDown)
		amountsToBin, err := types.AmountsFromBig(amountX, amountY)
		if err != nil {
			return MintResult{}, ErrBinReserveOverflows
		}
		if amountsToBin.IsZero() {
			return MintResult{}, ErrZeroShares
		}

		price, err := helpers.GetPriceFromID(c.ID, p.sfp.BinStep)
		if err != nil {
			return MintResult{}, err
		}
		bin := binOf(c.ID)

		switch {
		case c.ID > p.activeID:
			if !amountsToBin.Y.IsZero() {
				return MintResult{}, &CompositionFactorFlawedError{ID: c.ID}
			}
		case c.ID < p.activeID:
			if !amountsToBin.X.IsZero() {
				return MintResult{}, &CompositionFactorFlawedError{ID: c.ID}
			}
		default:
			if !helpers.CompositionWithinTolerance(bin, amountsToBin, price, p.compositionTolerance) {
				return MintResult{}, &CompositionFactorFlawedError{ID: c.ID}
			}
		}

		minted, effective, err := helpers.GetSharesAndEffectiveAmounts(
			bin, amountsToBin, price, supplyOf(c.ID))
		if err != nil {
			return MintResult{}, err
		}
		if minted.Sign() == 0 {
			return MintResult{}, &InsufficientLiquidityMintedError{ID: c.ID}
		}

		newBin, err := bin.Add(effective)
		if err != nil {
			return MintResult{}, ErrBinReserveOverflows
		}
		if totalUsed, err = totalUsed.Add(effective); err != nil {
			return MintResult{}, ErrBinReserveOverflows
		}

		staged[c.ID] = newBin
		if s, ok := stagedShrs[c.ID]; ok {
			s.Add(s, minted)
		} else {
			stagedShrs[c.ID] = new(big.Int).Set(minted)
		}
		changes = append(changes, binChange{id: c.ID, reserves: newBin})
		shares = append(shares, minted)
	}

	// the after-hook sees the staged result; a failure here still leaves
	// the pair untouched
	if err := p.hooks.AfterMint(to, configs, totalUsed); err != nil {
		return MintResult{}, fmt.Errorf("after-mint hook: %w", err)
	}

	// commit
	for _, c := range changes {
		p.setBin(c.id, c.reserves)
	}
	if p.reserves, err = p.reserves.Add(totalUsed); err != nil {
		return MintResult{}, ErrBinReserveOverflows
	}
	for i, c := range configs {
		if err := p.shares.Mint(to, c.ID, shares[i]); err != nil {
			return MintResult{}, fmt.Errorf("share ledger mint: %w", err)
		}
	}

	refund, err := received.Sub(totalUsed)
	if err != nil {
		return MintResult{}, err
	}
	if !refund.X.IsZero() {
		if err := p.vault.TransferX(refundTo, refund.X); err != nil {
			return MintResult{}, fmt.Errorf("refund: %w", err)
		}
	}
	if !refund.Y.IsZero() {
		if err := p.vault.TransferY(refundTo, refund.Y); err != nil {
			return MintResult{}, fmt.Errorf("refund: %w", err)
		}
	}

	p.log.Debug().
		Int("bins", len(configs)).
		Str("usedX", totalUsed.X.String()).
		Str("usedY", totalUsed.Y.String()).
		Msg("mint")

	return MintResult{
		AmountsReceived: received,
		AmountsUsed:     totalUsed,
		Shares:          shares,
	}, nil
}

// Burn is the inverse of Mint: it burns the given shares of each bin from
// `from` and transfers the pro-rata reserves to `to`. Withdrawals round
// down; when a bin's last shares are burned, the rounding dust left behind
// is routed into the collectable protocol fees rather than stranded.
func (p *Pair) Burn(from, to common.Address, ids []uint32, sharesToBurn []*big.Int) (BurnResult, error) {
	if len(ids) == 0 || len(ids) != len(sharesToBurn) {
		return BurnResult{}, ErrInvalidInput
	}

	if err := p.acquire(); err != nil {
		return BurnResult{}, err
	}
	defer p.release()

	if err := p.hooks.BeforeBurn(from, to, ids, sharesToBurn); err != nil {
		return BurnResult{}, fmt.Errorf("before-burn hook: %w", err)
	}

	var (
		changes   = make([]binChange, 0, len(ids))
		perBin    = make([]types.Amounts, 0, len(ids))
		totalOut  types.Amounts
		dustTotal types.Amounts
		staged    = make(map[uint32]types.Amounts, len(ids))
		burned    = make(map[uint32]*big.Int, len(ids))
	)

	for i, id := range ids {
		shares := sharesToBurn[i]
		if shares == nil || shares.Sign() <= 0 {
			return BurnResult{}, ErrZeroShares
		}

		balance := p.shares.BalanceOf(from, id)
		if prior := burned[id]; prior != nil {
			balance = new(big.Int).Sub(balance, prior)
		}
		if balance.Cmp(shares) < 0 {
			return BurnResult{}, ErrInsufficientShares
		}

		supply := new(big.Int).Set(p.shares.TotalSupply(id))
		if prior := burned[id]; prior != nil {
			supply.Sub(supply, prior)
		}

		bin := p.bins[id]
		if b, ok := staged[id]; ok {
			bin = b
		}

		out, err := helpers.GetAmountOutOfBin(bin, shares, supply)
		if err != nil {
			return BurnResult{}, err
		}
		if out.IsZero() {
			return BurnResult{}, ErrZeroAmountsOut
		}

		newBin, err := bin.Sub(out)
		if err != nil {
			return BurnResult{}, err
		}

		// last holder out: sweep the rounding dust into protocol fees
		if supply.Cmp(shares) == 0 && !newBin.IsZero() {
			if dustTotal, err = dustTotal.Add(newBin); err != nil {
				return BurnResult{}, ErrBinReserveOverflows
			}
			newBin = types.Amounts{}
		}

		if totalOut, err = totalOut.Add(out); err != nil {
			return BurnResult{}, ErrBinReserveOverflows
		}

		staged[id] = newBin
		if prior := burned[id]; prior != nil {
			prior.Add(prior, shares)
		} else {
			burned[id] = new(big.Int).Set(shares)
		}
		changes = append(changes, binChange{id: id, reserves: newBin})
		perBin = append(perBin, out)
	}

	// the after-hook sees the staged result; a failure here still leaves
	// the pair untouched
	if err := p.hooks.AfterBurn(from, to, ids, sharesToBurn); err != nil {
		return BurnResult{}, fmt.Errorf("after-burn hook: %w", err)
	}

	// commit
	for _, c := range changes {
		p.setBin(c.id, c.reserves)
	}
	withdrawn, err := totalOut.Add(dustTotal)
	if err != nil {
		return BurnResult{}, ErrBinReserveOverflows
	}
	if p.reserves, err = p.reserves.Sub(withdrawn); err != nil {
		return BurnResult{}, err
	}
	if p.protocolFees, err = p.protocolFees.Add(dustTotal); err != nil {
		return BurnResult{}, ErrBinReserveOverflows
	}
	for i, id := range ids {
		if err := p.shares.Burn(from, id, sharesToBurn[i]); err != nil {
			return BurnResult{}, fmt.Errorf("share ledger burn: %w", err)
		}
	}

	if !totalOut.X.IsZero() {
		if err := p.vault.TransferX(to, totalOut.X); err != nil {
			return BurnResult{}, fmt.Errorf("transfer out: %w", err)
		}
	}
	if !totalOut.Y.IsZero() {
		if err := p.vault.TransferY(to, totalOut.Y); err != nil {
			return BurnResult{}, fmt.Errorf("transfer out: %w", err)
		}
	}

	p.log.Debug().
		Int("bins", len(ids)).
		Str("outX", totalOut.X.String()).
		Str("outY", totalOut.Y.String()).
		Msg("burn")

	return BurnResult{AmountsOut: totalOut, PerBin: perBin}, nil
}
