package pool

import (
	"sort"

	"github.com/shopspring/decimal"

	"poolScope/internal/model"
)

// ReconstructBands rebuilds the piecewise-constant active-liquidity curve
// around the snapshot tick. Ticks must be sorted ascending and carry their
// signed net-liquidity deltas. The walk starts from the pool's current
// liquidity, adds each delta crossing upward and subtracts it crossing
// downward, so the curve tiles the observed tick range contiguously.
//
// An empty tick set yields an empty band table: no concentrated structure is
// observable, which is a caller condition rather than an error.
func ReconstructBands(snapshot model.PoolSnapshot, ticks []model.TickInfo, tickSpacing int32) []model.Band {
	if len(ticks) == 0 || tickSpacing <= 0 {
		return []model.Band{}
	}

	currentLiquidity := decimal.Zero
	if snapshot.Liquidity != nil {
		currentLiquidity = decimal.NewFromBigInt(snapshot.Liquidity, 0)
	}

	netByTick := make(map[int32]decimal.Decimal, len(ticks))
	for _, t := range ticks {
		if t.LiquidityNet != nil {
			netByTick[t.Tick] = decimal.NewFromBigInt(t.LiquidityNet, 0)
		} else {
			netByTick[t.Tick] = decimal.Zero
		}
	}

	baseTick := floorDiv(snapshot.Tick, tickSpacing) * tickSpacing

	// Ticks equal to the current tick belong to the downward walk so the
	// upward walk never processes the current tick twice.
	above := make([]int32, 0, len(ticks))
	below := make([]int32, 0, len(ticks))
	for _, t := range ticks {
		if t.Tick > snapshot.Tick {
			above = append(above, t.Tick)
		} else {
			below = append(below, t.Tick)
		}
	}
	sort.Slice(above, func(i, j int) bool { return above[i] < above[j] })
	sort.Slice(below, func(i, j int) bool { return below[i] > below[j] })

	bands := make([]model.Band, 0, len(ticks)+2)

	// Upward walk: the active range runs from the base tick to the first
	// initialized tick above, then each crossing applies its net delta.
	if len(above) > 0 {
		bands = append(bands, model.Band{
			TickLower: baseTick,
			TickUpper: above[0],
			Liquidity: currentLiquidity,
		})

		running := currentLiquidity
		for i, tick := range above {
			running = running.Add(netByTick[tick])
			upper := tick + tickSpacing
			if i+1 < len(above) {
				upper = above[i+1]
			}
			bands = append(bands, model.Band{
				TickLower: tick,
				TickUpper: upper,
				Liquidity: clampLiquidity(running),
			})
		}
	}

	// Bridge band: the gap between the highest below-tick and the base tick
	// carries the unmodified current liquidity. Only correct when no crossing
	// sits inside the gap; an approximation kept from the reconstruction
	// procedure this mirrors.
	if len(below) > 0 && below[0] < baseTick {
		bands = append(bands, model.Band{
			TickLower: below[0],
			TickUpper: baseTick,
			Liquidity: currentLiquidity,
		})
	}

	// Downward walk: each crossing removes the delta it added on the way up.
	running := currentLiquidity
	for i, tick := range below {
		running = running.Sub(netByTick[tick])
		lower := tick - tickSpacing
		if i+1 < len(below) {
			lower = below[i+1]
		}
		bands = append(bands, model.Band{
			TickLower: lower,
			TickUpper: tick,
			Liquidity: clampLiquidity(running),
		})
	}

	sort.Slice(bands, func(i, j int) bool { return bands[i].TickLower < bands[j].TickLower })
	return bands
}

// clampLiquidity floors negative accumulations at zero. A negative running
// sum means the scanned bitmap range missed deltas, not that the pool holds
// negative liquidity.
func clampLiquidity(l decimal.Decimal) decimal.Decimal {
	if l.Sign() < 0 {
		return decimal.Zero
	}
	return l
}
