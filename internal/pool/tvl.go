package pool

import (
	"github.com/shopspring/decimal"

	"poolScope/internal/model"
)

// TVLResult holds the token totals implied by a band table.
type TVLResult struct {
	Token0 decimal.Decimal
	Token1 decimal.Decimal
}

// AggregateTVL converts each band's active liquidity into token amounts at
// the given sqrt price and sums across the table. The price is clamped into
// each band's sqrt-price range: bands entirely above the price hold only
// token0, bands entirely below hold only token1.
func AggregateTVL(bands []model.Band, sqrtPrice decimal.Decimal) TVLResult {
	total := TVLResult{Token0: decimal.Zero, Token1: decimal.Zero}

	for _, band := range bands {
		if band.Liquidity.Sign() <= 0 {
			continue
		}

		low := TickToSqrtPrice(band.TickLower)
		high := TickToSqrtPrice(band.TickUpper)

		total.Token0 = total.Token0.Add(token0Amount(band.Liquidity, sqrtPrice, low, high))
		total.Token1 = total.Token1.Add(token1Amount(band.Liquidity, sqrtPrice, low, high))
	}

	return total
}

// token0Amount is L * (high - sp) / (sp * high) with sp clamped into
// [low, high]. At or above the upper bound the position is all token1.
func token0Amount(liquidity, sqrtPrice, low, high decimal.Decimal) decimal.Decimal {
	sp := clampSqrtPrice(sqrtPrice, low, high)
	if sp.Cmp(high) >= 0 {
		return decimal.Zero
	}
	denom := sp.Mul(high)
	if denom.Sign() == 0 {
		return decimal.Zero
	}
	return liquidity.Mul(high.Sub(sp)).DivRound(denom, priceDigits)
}

// token1Amount is L * (sp - low) with sp clamped into [low, high]. At or
// below the lower bound the position is all token0.
func token1Amount(liquidity, sqrtPrice, low, high decimal.Decimal) decimal.Decimal {
	sp := clampSqrtPrice(sqrtPrice, low, high)
	if sp.Cmp(low) <= 0 {
		return decimal.Zero
	}
	return liquidity.Mul(sp.Sub(low))
}

func clampSqrtPrice(sp, low, high decimal.Decimal) decimal.Decimal {
	if sp.Cmp(low) < 0 {
		return low
	}
	if sp.Cmp(high) > 0 {
		return high
	}
	return sp
}
