package pool

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// priceDigits is the division precision for sqrtPriceX96 conversions.
// Squaring a 160-bit fixed-point value loses the fractional tail at the
// default precision, which flips the sign of small price moves.
const priceDigits = 50

var q96 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 96), 0)

// SqrtPriceX96ToSqrtPrice converts the pool's fixed-point encoding to
// sqrt(price): encoded / 2^96.
func SqrtPriceX96ToSqrtPrice(sqrtPriceX96 *big.Int) decimal.Decimal {
	if sqrtPriceX96 == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(sqrtPriceX96, 0).DivRound(q96, priceDigits)
}

// SqrtPriceX96ToPrice converts the fixed-point encoding to the price of
// token0 in units of token1: (encoded / 2^96)^2.
func SqrtPriceX96ToPrice(sqrtPriceX96 *big.Int) decimal.Decimal {
	sqrtPrice := SqrtPriceX96ToSqrtPrice(sqrtPriceX96)
	return sqrtPrice.Mul(sqrtPrice)
}

// TickToSqrtPrice returns sqrt(1.0001^tick). Float64 is enough here: the
// result is monotonic in the tick and never feeds a sign comparison.
func TickToSqrtPrice(tick int32) decimal.Decimal {
	return decimal.NewFromFloat(math.Pow(1.0001, float64(tick)/2))
}
