package liquiditybook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lb "github.com/traderjoe-xyz/joe-v2-sub000"
	testUtils "github.com/traderjoe-xyz/joe-v2-sub000/internal/test/utils"
	"github.com/traderjoe-xyz/joe-v2-sub000/types"
)

// testBorrower repays into the vault from inside the callback. shortfall
// trims the repayment, extra pads it, ret overrides the returned sentinel.
type testBorrower struct {
	vault     *testUtils.Vault
	shortfall uint64
	extra     uint64
	ret       *[32]byte
	fail      bool
	onCall    func(activeID uint32, amounts, fees types.Amounts)
}

func (b *testBorrower) OnFlashLoan(activeID uint32, amounts, fees types.Amounts, data []byte) ([32]byte, error) {
	if b.onCall != nil {
		b.onCall(activeID, amounts, fees)
	}
	if b.fail {
		return [32]byte{}, assert.AnError
	}

	repayX := amounts.X.Add(fees.X)
	repayY := amounts.Y.Add(fees.Y).Add64(b.extra).Sub64(b.shortfall)
	if !repayX.IsZero() {
		b.vault.CreditX(repayX)
	}
	if !repayY.IsZero() {
		b.vault.CreditY(repayY)
	}

	if b.ret != nil {
		return *b.ret, nil
	}
	return lb.CallbackSuccess, nil
}

func TestFlashLoanAfterHookAbort(t *testing.T) {
	hooks := &recordingHooks{}
	f := newFixture(t, defaultConfig(), lb.WithHooks(hooks))
	active := f.pair.GetActiveID()
	f.mintSimple(t, alice, active, 0, 1_000_000)

	binBefore := f.pair.GetBin(active)

	hooks.failAfter = true
	borrower := &testBorrower{vault: f.vault}
	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	require.Error(t, err)

	// The borrower repaid, but none of it was booked as fees or reserves.
	assert.True(t, f.pair.GetProtocolFees().IsZero())
	assert.Equal(t, binBefore, f.pair.GetBin(active))
	assert.Equal(t, binBefore, f.pair.GetReserves())
}

func TestFlashLoanRepayExact(t *testing.T) {
	f := newFixture(t, defaultConfig())
	active := f.pair.GetActiveID()
	f.mintSimple(t, alice, active, 0, 1_000_000)

	binBefore := f.pair.GetBin(active)

	var seen types.Amounts
	borrower := &testBorrower{
		vault: f.vault,
		onCall: func(id uint32, amounts, fees types.Amounts) {
			assert.Equal(t, active, id)
			assert.Equal(t, u128(100_000), amounts.Y)
			seen = fees
		},
	}

	// 0.08% flash-loan fee on 100_000 Y: 80.
	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	require.NoError(t, err)
	assert.Equal(t, u128(80), seen.Y)

	// The protocol keeps 10% of the fee, the active bin compounds the rest.
	assert.Equal(t, u128(8), f.pair.GetProtocolFees().Y)
	assert.Equal(t, binBefore.Y.Add64(72), f.pair.GetBin(active).Y)
	assert.Equal(t, u128(100_000), f.vault.Received(bob).Y)
	f.assertBooked(t)
}

func TestFlashLoanUnderpay(t *testing.T) {
	f := newFixture(t, defaultConfig())
	active := f.pair.GetActiveID()
	f.mintSimple(t, alice, active, 0, 1_000_000)

	binBefore := f.pair.GetBin(active)
	borrower := &testBorrower{vault: f.vault, shortfall: 1}

	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	assert.ErrorIs(t, err, lb.ErrFlashLoanInsufficientAmount)

	// No fee was booked.
	assert.Equal(t, binBefore, f.pair.GetBin(active))
	assert.True(t, f.pair.GetProtocolFees().IsZero())
}

func TestFlashLoanOverpay(t *testing.T) {
	f := newFixture(t, defaultConfig())
	active := f.pair.GetActiveID()
	f.mintSimple(t, alice, active, 0, 1_000_000)

	borrower := &testBorrower{vault: f.vault, extra: 500}

	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	require.NoError(t, err)

	// The over-repayment lands in the protocol's books, not in limbo.
	assert.Equal(t, u128(508), f.pair.GetProtocolFees().Y)
	f.assertBooked(t)
}

func TestFlashLoanWrongSentinel(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.mintSimple(t, alice, f.pair.GetActiveID(), 0, 1_000_000)

	wrong := [32]byte{1}
	borrower := &testBorrower{vault: f.vault, ret: &wrong}

	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	assert.ErrorIs(t, err, lb.ErrFlashLoanCallbackFailed)
}

func TestFlashLoanCallbackError(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.mintSimple(t, alice, f.pair.GetActiveID(), 0, 1_000_000)

	borrower := &testBorrower{vault: f.vault, fail: true}

	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	assert.ErrorIs(t, err, lb.ErrFlashLoanCallbackFailed)
}

func TestFlashLoanValidation(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.mintSimple(t, alice, f.pair.GetActiveID(), 0, 1_000_000)

	err := f.pair.FlashLoan(bob, &testBorrower{vault: f.vault}, types.Amounts{}, nil)
	assert.ErrorIs(t, err, lb.ErrZeroBorrowAmount)

	err = f.pair.FlashLoan(bob, nil, types.AmountsFrom64(0, 1_000), nil)
	assert.ErrorIs(t, err, lb.ErrInvalidInput)
}

func TestFlashLoanBothSides(t *testing.T) {
	f := newFixture(t, defaultConfig())
	active := f.pair.GetActiveID()
	f.mintSimple(t, alice, active, 500_000, 500_000)

	borrower := &testBorrower{vault: f.vault}
	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(250_000, 250_000), nil)
	require.NoError(t, err)

	// 0.08% per side: fee 200 each; 10% to the protocol.
	assert.Equal(t, types.AmountsFrom64(20, 20), f.pair.GetProtocolFees())
	bin := f.pair.GetBin(active)
	assert.Equal(t, u128(500_180), bin.X)
	assert.Equal(t, u128(500_180), bin.Y)
	f.assertBooked(t)
}

func TestFlashLoanWithoutActiveBinHolders(t *testing.T) {
	f := newFixture(t, defaultConfig())

	// Liquidity sits below the active bin, so the active bin has no share
	// supply; the whole fee goes to the protocol.
	f.mintSimple(t, alice, f.pair.GetActiveID()-5, 0, 1_000_000)

	borrower := &testBorrower{vault: f.vault}
	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	require.NoError(t, err)

	assert.Equal(t, u128(80), f.pair.GetProtocolFees().Y)
	assert.True(t, f.pair.GetBin(f.pair.GetActiveID()).IsZero())
	f.assertBooked(t)
}

func TestFlashLoanReentrancyBlocked(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.mintSimple(t, alice, f.pair.GetActiveID(), 0, 1_000_000)

	var inner error
	borrower := &testBorrower{vault: f.vault}
	borrower.onCall = func(uint32, types.Amounts, types.Amounts) {
		inner = f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 1_000), nil)
	}

	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 100_000), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, inner, lb.ErrReentrantCall)
}

func TestFlashLoanBorrowMoreThanVault(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.mintSimple(t, alice, f.pair.GetActiveID(), 0, 1_000)

	borrower := &testBorrower{vault: f.vault}
	err := f.pair.FlashLoan(bob, borrower, types.AmountsFrom64(0, 10_000), nil)
	assert.Error(t, err)
}
