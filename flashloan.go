package liquiditybook

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/traderjoe-xyz/joe-v2-sub000/helpers"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

// CallbackSuccess is the sentinel a flash-loan borrower must return for the
// loan to settle.
var CallbackSuccess = [32]byte(crypto.Keccak256([]byte("LBPair.onFlashLoan")))

// FlashLoan lends the requested amounts to `to`, invokes the borrower
// callback, and requires the vault to end up holding at least the borrowed
// amounts plus fees. The protocol keeps its share of the fee plus any
// over-repayment; the rest of the fee compounds into the active bin, where
// it accrues to that bin's liquidity providers. The guard taken for the
// call's duration makes any nested call fail with ErrReentrantCall.
func (p *Pair) FlashLoan(to common.Address, borrower FlashBorrower, amounts types.Amounts, data []byte) error {
	if amounts.IsZero() {
		return ErrZeroBorrowAmount
	}
	if borrower == nil {
		return ErrInvalidInput
	}

	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	if err := p.hooks.BeforeFlashLoan(to, amounts); err != nil {
		return fmt.Errorf("before-flash-loan hook: %w", err)
	}

	fees, err := helpers.GetFlashLoanFees(amounts, p.flashLoanFee)
	if err != nil {
		return err
	}

	before, err := p.vaultBalances()
	if err != nil {
		return err
	}

	if !amounts.X.IsZero() {
		if err := p.vault.TransferX(to, amounts.X); err != nil {
			return fmt.Errorf("lend: %w", err)
		}
	}
	if !amounts.Y.IsZero() {
		if err := p.vault.TransferY(to, amounts.Y); err != nil {
			return fmt.Errorf("lend: %w", err)
		}
	}

	ret, err := borrower.OnFlashLoan(p.activeID, amounts, fees, data)
	if err != nil || ret != CallbackSuccess {
		return ErrFlashLoanCallbackFailed
	}

	after, err := p.vaultBalances()
	if err != nil {
		return err
	}

	owed, err := before.Add(fees)
	if err != nil {
		return ErrBinReserveOverflows
	}
	paid, err := after.Sub(owed)
	if err != nil {
		return ErrFlashLoanInsufficientAmount
	}

	// paid now holds the over-repayment; the protocol keeps it together
	// with its share of the fee
	protocolFees := types.Amounts{}
	for _, side := range []bool{true, false} {
		pf, err := types.U128FromBig(helpers.GetProtocolFeeAmount(
			fees.Amount(side).Big(), p.sfp.ProtocolShare))
		if err != nil {
			return ErrBinReserveOverflows
		}
		protocolFees = protocolFees.WithAmount(side, pf)
	}
	if protocolFees, err = protocolFees.Add(paid); err != nil {
		return ErrBinReserveOverflows
	}

	lpFees, err := fees.Sub(types.Amounts{
		X: protocolFees.X.Sub(paid.X),
		Y: protocolFees.Y.Sub(paid.Y),
	})
	if err != nil {
		return err
	}

	// the LP share lands in the active bin when it has holders, otherwise
	// the protocol keeps it rather than stranding value in an unowned bin
	var (
		newBin       types.Amounts
		newReserves  types.Amounts
		creditActive = p.shares.TotalSupply(p.activeID).Sign() > 0
	)
	if creditActive {
		if newBin, err = p.bins[p.activeID].Add(lpFees); err != nil {
			return ErrBinReserveOverflows
		}
		if newReserves, err = p.reserves.Add(lpFees); err != nil {
			return ErrBinReserveOverflows
		}
	} else if protocolFees, err = protocolFees.Add(lpFees); err != nil {
		return ErrBinReserveOverflows
	}
	newProtocolFees, err := p.protocolFees.Add(protocolFees)
	if err != nil {
		return ErrBinReserveOverflows
	}

	// the after-hook sees the staged result; a failure here still leaves
	// the booking untouched
	if err := p.hooks.AfterFlashLoan(to, fees); err != nil {
		return fmt.Errorf("after-flash-loan hook: %w", err)
	}

	if creditActive {
		p.setBin(p.activeID, newBin)
		p.reserves = newReserves
	}
	p.protocolFees = newProtocolFees

	p.log.Debug().
		Str("amountX", amounts.X.String()).
		Str("amountY", amounts.Y.String()).
		Str("feeX", fees.X.String()).
		Str("feeY", fees.Y.String()).
		Msg("flash loan")
	return nil
}

func (p *Pair) vaultBalances() (types.Amounts, error) {
	x, err := p.vault.BalanceX()
	if err != nil {
		return types.Amounts{}, err
	}
	y, err := p.vault.BalanceY()
	if err != nil {
		return types.Amounts{}, err
	}
	return types.Amounts{X: x, Y: y}, nil
}
