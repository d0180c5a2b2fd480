package liquiditybook

import (
	"errors"
	"fmt"
)

// Configuration errors, rejected when a pair is built or reconfigured.
var (
	ErrInvalidConfig = errors.New("liquiditybook: invalid pair configuration")
)

// Input errors, rejected before any state is read or written.
var (
	ErrInsufficientAmounts = errors.New("liquiditybook: no input amount detected")
	ErrZeroBorrowAmount    = errors.New("liquiditybook: flash loan of zero amounts")
	ErrInvalidInput        = errors.New("liquiditybook: empty or mismatched arguments")
	ErrZeroShares          = errors.New("liquiditybook: zero shares requested")
	ErrInsufficientShares  = errors.New("liquiditybook: burn exceeds share balance")
	ErrUnauthorized        = errors.New("liquiditybook: caller not authorized")
	ErrInvalidDistribution = errors.New("liquiditybook: distributions exceed precision")
	ErrOracleInvalidLength = errors.New("liquiditybook: oracle length may only grow")
	ErrOracleMaxSize       = errors.New("liquiditybook: oracle length exceeds protocol maximum")
)

// Invariant-guard errors, detected mid-computation; the call aborts with no
// partial effect.
var (
	ErrBinReserveOverflows   = errors.New("liquiditybook: bin reserve exceeds 128 bits")
	ErrOutOfLiquidity        = errors.New("liquiditybook: ran out of populated bins")
	ErrInsufficientAmountOut = errors.New("liquiditybook: swap produced no output")
	ErrZeroAmountsOut        = errors.New("liquiditybook: burn yields nothing")
	ErrCompositionFactor     = errors.New("liquiditybook: deposit composition incompatible with bin")
	ErrLiquidityMinted       = errors.New("liquiditybook: mint produces zero shares")
)

// External-callback errors, surfaced verbatim.
var (
	ErrFlashLoanCallbackFailed     = errors.New("liquiditybook: flash loan callback failed")
	ErrFlashLoanInsufficientAmount = errors.New("liquiditybook: flash loan not repaid with fee")
	ErrReentrantCall               = errors.New("liquiditybook: reentrant call")
)

// CompositionFactorFlawedError names the bin whose deposit composition was
// rejected. errors.Is(err, ErrCompositionFactor) matches it.
type CompositionFactorFlawedError struct {
	ID uint32
}

func (e *CompositionFactorFlawedError) Error() string {
	return fmt.Sprintf("liquiditybook: composition factor flawed for bin %d", e.ID)
}

func (e *CompositionFactorFlawedError) Unwrap() error { return ErrCompositionFactor }

// InsufficientLiquidityMintedError names the bin whose deposit rounded to
// zero shares. errors.Is(err, ErrLiquidityMinted) matches it.
type InsufficientLiquidityMintedError struct {
	ID uint32
}

func (e *InsufficientLiquidityMintedError) Error() string {
	return fmt.Sprintf("liquiditybook: insufficient liquidity minted for bin %d", e.ID)
}

func (e *InsufficientLiquidityMintedError) Unwrap() error { return ErrLiquidityMinted }
