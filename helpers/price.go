package helpers

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/traderjoe-xyz/joe-v2-sub000/constants"
	"github.com/traderjoe-xyz/joe-v2-sub000/maths"
)

var (
	ErrInvalidBinStep   = errors.New("helpers: bin step out of bounds")
	ErrInvalidBinID     = errors.New("helpers: bin id out of bounds")
	ErrPriceOutOfRange  = errors.New("helpers: price out of representable range")
	ErrNonPositivePrice = errors.New("helpers: price must be positive")
)

// GetBase returns (1 + binStep/10_000) in Q128.128.
func GetBase(binStep uint16) *big.Int {
	return new(big.Int).Add(
		constants.Scale,
		new(big.Int).Quo(
			new(big.Int).Lsh(new(big.Int).SetUint64(uint64(binStep)), constants.ScaleOffset),
			big.NewInt(constants.BasisPointMax),
		),
	)
}

// GetPriceFromID returns the Q128.128 price of a bin:
//
//	price = (1 + binStep/10_000) ^ (id - 2^23)
//
// id 2^23 is price 1.0 exactly.
func GetPriceFromID(id uint32, binStep uint16) (*big.Int, error) {
	if binStep < constants.MinBinStep || binStep > constants.MaxBinStep {
		return nil, ErrInvalidBinStep
	}
	if id > constants.MaxBinID {
		return nil, ErrInvalidBinID
	}

	price, err := maths.Pow(GetBase(binStep), int(id)-constants.RealIDShift)
	if err != nil {
		return nil, fmt.Errorf("%w: id %d, bin step %d", ErrPriceOutOfRange, id, binStep)
	}
	return price, nil
}

// GetIDFromPrice returns the id whose bin price is nearest to the given
// Q128.128 price. GetIDFromPrice(GetPriceFromID(id)) is within one id of id.
func GetIDFromPrice(price *big.Int, binStep uint16) (uint32, error) {
	if binStep < constants.MinBinStep || binStep > constants.MaxBinStep {
		return 0, ErrInvalidBinStep
	}
	if price == nil || price.Sign() <= 0 {
		return 0, ErrNonPositivePrice
	}

	logPrice, err := maths.Log2(price)
	if err != nil {
		return 0, ErrNonPositivePrice
	}
	logBase, err := maths.Log2(GetBase(binStep))
	if err != nil {
		return 0, ErrInvalidBinStep
	}

	delta := maths.DivRound(logPrice, logBase)
	id := new(big.Int).Add(delta, big.NewInt(constants.RealIDShift))
	if id.Sign() < 0 || id.Cmp(big.NewInt(constants.MaxBinID)) > 0 {
		return 0, fmt.Errorf("%w: price maps outside the id space", ErrPriceOutOfRange)
	}
	return uint32(id.Uint64()), nil
}

// PriceToDecimal converts a Q128.128 price into a human-readable decimal,
// adjusting for the two tokens' display decimals.
func PriceToDecimal(price *big.Int, decimalsX, decimalsY int32) decimal.Decimal {
	return decimal.NewFromBigInt(price, 0).
		DivRound(decimal.NewFromBigInt(constants.Scale, 0), 36).
		Shift(decimalsX - decimalsY)
}

// DecimalToPrice converts a human-readable decimal price into Q128.128.
func DecimalToPrice(d decimal.Decimal, decimalsX, decimalsY int32) (*big.Int, error) {
	if d.Sign() <= 0 {
		return nil, ErrNonPositivePrice
	}
	scaled := d.Shift(decimalsY - decimalsX).Mul(decimal.NewFromBigInt(constants.Scale, 0))
	price := scaled.BigInt()
	if price.Sign() <= 0 || price.Cmp(constants.MaxUint256) > 0 {
		return nil, ErrPriceOutOfRange
	}
	return price, nil
}
