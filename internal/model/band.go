package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Band is a half-open tick interval [TickLower, TickUpper) over which the
// pool's active liquidity is constant. Bands produced by the reconstructor
// are contiguous, non-overlapping, and sorted by TickLower.
type Band struct {
	TickLower int32           `json:"tick_lower"`
	TickUpper int32           `json:"tick_upper"`
	Liquidity decimal.Decimal `json:"active_liquidity"`
}

// Contains reports whether the tick falls inside the band.
func (b Band) Contains(tick int32) bool {
	return tick >= b.TickLower && tick < b.TickUpper
}

// TickInfo is the on-chain liquidity data attached to one initialized tick.
type TickInfo struct {
	Tick           int32    `json:"tick"`
	LiquidityGross *big.Int `json:"liquidity_gross"`
	LiquidityNet   *big.Int `json:"liquidity_net"`
}

// PoolSnapshot is the pool's live reference point, captured from slot0 and
// liquidity at a single pinned block.
type PoolSnapshot struct {
	SqrtPriceX96 *big.Int `json:"sqrt_price_x96"`
	Tick         int32    `json:"tick"`
	Liquidity    *big.Int `json:"liquidity"`
	BlockNumber  uint64   `json:"block_number"`
	BlockTime    uint64   `json:"block_time"`
}
