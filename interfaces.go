package liquiditybook

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
	"lukechampine.com/uint128"
)

// TokenVault moves the pair's two underlying assets and reports the pair's
// own balances. Swap and mint are amount-in-implicit: the input is whatever
// balance increase the caller produced before invoking the operation, so the
// engine reads balances through this interface rather than taking amounts
// as arguments.
type TokenVault interface {
	BalanceX() (uint128.Uint128, error)
	BalanceY() (uint128.Uint128, error)
	TransferX(to common.Address, amount uint128.Uint128) error
	TransferY(to common.Address, amount uint128.Uint128) error
}

// ShareLedger is the fungible-share bookkeeping collaborator. The engine
// only mints and burns; transfers between owners are outside its concern.
type ShareLedger interface {
	Mint(owner common.Address, id uint32, shares *big.Int) error
	Burn(owner common.Address, id uint32, shares *big.Int) error
	BalanceOf(owner common.Address, id uint32) *big.Int
	TotalSupply(id uint32) *big.Int
}

// FlashBorrower receives a flash loan. OnFlashLoan must leave the vault
// holding at least the borrowed amounts plus fees and return
// CallbackSuccess, or the whole call is rolled back.
type FlashBorrower interface {
	OnFlashLoan(activeID uint32, amounts, fees types.Amounts, data []byte) ([32]byte, error)
}

// Hooks is an optional extension interface invoked around every mutating
// operation. Before-hooks run on the validated input, after-hooks on the
// staged result; any hook error aborts the operation with no state change.
// NoopHooks is the absent-hook implementation.
type Hooks interface {
	BeforeSwap(to common.Address, swapForY bool, amountsIn types.Amounts) error
	AfterSwap(to common.Address, swapForY bool, amountsOut types.Amounts) error
	BeforeMint(to common.Address, configs []types.LiquidityConfig, amountsReceived types.Amounts) error
	AfterMint(to common.Address, configs []types.LiquidityConfig, amountsIn types.Amounts) error
	BeforeBurn(from, to common.Address, ids []uint32, shares []*big.Int) error
	AfterBurn(from, to common.Address, ids []uint32, shares []*big.Int) error
	BeforeFlashLoan(to common.Address, amounts types.Amounts) error
	AfterFlashLoan(to common.Address, fees types.Amounts) error
}

// NoopHooks satisfies Hooks by doing nothing.
type NoopHooks struct{}

func (NoopHooks) BeforeSwap(common.Address, bool, types.Amounts) error { return nil }
func (NoopHooks) AfterSwap(common.Address, bool, types.Amounts) error  { return nil }
func (NoopHooks) BeforeMint(common.Address, []types.LiquidityConfig, types.Amounts) error {
	return nil
}
func (NoopHooks) AfterMint(common.Address, []types.LiquidityConfig, types.Amounts) error {
	return nil
}
func (NoopHooks) BeforeBurn(common.Address, common.Address, []uint32, []*big.Int) error { return nil }
func (NoopHooks) AfterBurn(common.Address, common.Address, []uint32, []*big.Int) error  { return nil }
func (NoopHooks) BeforeFlashLoan(common.Address, types.Amounts) error                   { return nil }
func (NoopHooks) AfterFlashLoan(common.Address, types.Amounts) error                    { return nil }
