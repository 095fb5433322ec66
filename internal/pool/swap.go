package pool

import (
	"errors"

	"github.com/shopspring/decimal"

	"poolScope/internal/model"
)

// ErrNoCoveringBand is returned when the starting tick falls outside every
// band in the table, which leaves the simulator without a price anchor.
var ErrNoCoveringBand = errors.New("no band covers the starting tick")

// SwapResult is the outcome of one simulated swap over a band table.
type SwapResult struct {
	SpotPrice        decimal.Decimal
	FinalPrice       decimal.Decimal
	FinalSqrtPrice   decimal.Decimal
	AmountIn         decimal.Decimal
	AmountOut        decimal.Decimal
	SlippagePct      decimal.Decimal
	GrossSlippagePct decimal.Decimal
	PartialFill      bool
}

// SimulateSwap walks the band table in the trade direction, consuming the
// input amount band by band with the closed-form concentrated-liquidity
// relations, and reports the final price and slippage. Bands must be sorted
// by TickLower; the table is never mutated. When the known bands cannot
// absorb the full amount the simulation stops early with a partial fill,
// which undercounts the impact of very large trades.
//
// feePips is the pool fee in parts per million. It does not enter the walk;
// GrossSlippagePct subtracts it from the measured impact afterward and
// floors at zero, matching the reporting convention of the measurement this
// reproduces.
func SimulateSwap(bands []model.Band, snapshot model.PoolSnapshot, amountIn decimal.Decimal, zeroForOne bool, feePips uint32) (SwapResult, error) {
	spotSqrt := SqrtPriceX96ToSqrtPrice(snapshot.SqrtPriceX96)
	spotPrice := spotSqrt.Mul(spotSqrt)

	result := SwapResult{
		SpotPrice:      spotPrice,
		FinalPrice:     spotPrice,
		FinalSqrtPrice: spotSqrt,
		AmountIn:       amountIn,
		AmountOut:      decimal.Zero,
	}

	if amountIn.Sign() <= 0 {
		result.SlippagePct = decimal.Zero
		result.GrossSlippagePct = decimal.Zero
		return result, nil
	}

	start := -1
	for i, band := range bands {
		if band.Contains(snapshot.Tick) {
			start = i
			break
		}
	}
	if start < 0 {
		return SwapResult{}, ErrNoCoveringBand
	}

	sqrtP := spotSqrt
	remaining := amountIn
	amountOut := decimal.Zero
	partial := false

	for i := start; ; {
		band := bands[i]
		liquidity := band.Liquidity

		var target decimal.Decimal
		if zeroForOne {
			target = TickToSqrtPrice(band.TickLower)
		} else {
			target = TickToSqrtPrice(band.TickUpper)
		}

		capacity := bandCapacity(liquidity, sqrtP, target, zeroForOne)

		if remaining.Cmp(capacity) <= 0 && liquidity.Sign() > 0 {
			next := solveWithinBand(liquidity, sqrtP, remaining, zeroForOne)
			amountOut = amountOut.Add(outputAmount(liquidity, sqrtP, next, zeroForOne))
			sqrtP = next
			remaining = decimal.Zero
			break
		}

		// Consume the whole band and step over its far boundary.
		remaining = remaining.Sub(capacity)
		amountOut = amountOut.Add(outputAmount(liquidity, sqrtP, target, zeroForOne))
		sqrtP = target

		if zeroForOne {
			i--
		} else {
			i++
		}
		if i < 0 || i >= len(bands) {
			partial = true
			break
		}
	}

	finalPrice := sqrtP.Mul(sqrtP)

	slippage := decimal.Zero
	if spotPrice.Sign() > 0 {
		slippage = spotPrice.Sub(finalPrice).Abs().
			DivRound(spotPrice, priceDigits).
			Mul(decimal.NewFromInt(100))
	}

	// feePips/1e6 expressed in percent is feePips/1e4.
	feePct := decimal.NewFromInt(int64(feePips)).DivRound(decimal.NewFromInt(10_000), priceDigits)
	gross := slippage.Sub(feePct)
	if gross.Sign() < 0 {
		gross = decimal.Zero
	}

	result.FinalPrice = finalPrice
	result.FinalSqrtPrice = sqrtP
	result.AmountOut = amountOut
	result.SlippagePct = slippage
	result.GrossSlippagePct = gross
	result.PartialFill = partial
	return result, nil
}

// bandCapacity is the input-token amount a band can absorb before the price
// reaches target. Zero liquidity or a degenerate boundary absorbs nothing.
func bandCapacity(liquidity, sqrtP, target decimal.Decimal, zeroForOne bool) decimal.Decimal {
	if liquidity.Sign() <= 0 {
		return decimal.Zero
	}

	var capacity decimal.Decimal
	if zeroForOne {
		// dx = L * (sqrtP - target) / (sqrtP * target)
		denom := sqrtP.Mul(target)
		if denom.Sign() == 0 {
			return decimal.Zero
		}
		capacity = liquidity.Mul(sqrtP.Sub(target)).DivRound(denom, priceDigits)
	} else {
		// dy = L * (target - sqrtP)
		capacity = liquidity.Mul(target.Sub(sqrtP))
	}

	if capacity.Sign() < 0 {
		return decimal.Zero
	}
	return capacity
}

// solveWithinBand computes the sqrt price after absorbing amount inside a
// single band, assuming the band has capacity for it.
func solveWithinBand(liquidity, sqrtP, amount decimal.Decimal, zeroForOne bool) decimal.Decimal {
	if zeroForOne {
		// 1/next = 1/sqrtP + amount/L  =>  next = L*sqrtP / (L + amount*sqrtP)
		denom := liquidity.Add(amount.Mul(sqrtP))
		if denom.Sign() == 0 {
			return sqrtP
		}
		return liquidity.Mul(sqrtP).DivRound(denom, priceDigits)
	}
	// next = sqrtP + amount/L
	return sqrtP.Add(amount.DivRound(liquidity, priceDigits))
}

// outputAmount is the other token released while the price moves from
// sqrtStart to sqrtEnd within one band.
func outputAmount(liquidity, sqrtStart, sqrtEnd decimal.Decimal, zeroForOne bool) decimal.Decimal {
	if liquidity.Sign() <= 0 {
		return decimal.Zero
	}
	if zeroForOne {
		// dy = L * (sqrtStart - sqrtEnd)
		out := liquidity.Mul(sqrtStart.Sub(sqrtEnd))
		if out.Sign() < 0 {
			return decimal.Zero
		}
		return out
	}
	// dx = L * (sqrtEnd - sqrtStart) / (sqrtStart * sqrtEnd)
	denom := sqrtStart.Mul(sqrtEnd)
	if denom.Sign() == 0 {
		return decimal.Zero
	}
	out := liquidity.Mul(sqrtEnd.Sub(sqrtStart)).DivRound(denom, priceDigits)
	if out.Sign() < 0 {
		return decimal.Zero
	}
	return out
}
