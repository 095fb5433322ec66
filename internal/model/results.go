package model

import "github.com/shopspring/decimal"

// BandSnapshotRecord is the JSONL/DB representation of one reconstructed band.
type BandSnapshotRecord struct {
	ChainID     uint64          `json:"chain_id"`
	PoolAddress string          `json:"pool_address"`
	BlockNumber uint64          `json:"block_number"`
	BlockTime   uint64          `json:"block_time"`
	TickLower   int32           `json:"tick_lower"`
	TickUpper   int32           `json:"tick_upper"`
	Liquidity   decimal.Decimal `json:"active_liquidity"`
}

// SlippageResult is the outcome of one simulated swap.
type SlippageResult struct {
	ChainID          uint64          `json:"chain_id"`
	PoolAddress      string          `json:"pool_address"`
	BlockNumber      uint64          `json:"block_number"`
	ZeroForOne       bool            `json:"zero_for_one"`
	AmountIn         decimal.Decimal `json:"amount_in"`
	AmountOut        decimal.Decimal `json:"amount_out"`
	SpotPrice        decimal.Decimal `json:"spot_price"`
	FinalPrice       decimal.Decimal `json:"final_price"`
	SlippagePct      decimal.Decimal `json:"slippage_pct"`
	GrossSlippagePct decimal.Decimal `json:"gross_slippage_pct"`
	PartialFill      bool            `json:"partial_fill"`
}

// TVLSnapshot is the token amounts implied by the band table at one block.
type TVLSnapshot struct {
	ChainID     uint64          `json:"chain_id"`
	PoolAddress string          `json:"pool_address"`
	BlockNumber uint64          `json:"block_number"`
	BlockTime   uint64          `json:"block_time"`
	Token0      decimal.Decimal `json:"token0_total"`
	Token1      decimal.Decimal `json:"token1_total"`
	BandCount   int             `json:"band_count"`
}
