package pool

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"poolScope/internal/model"
)

// x96FromTick builds the fixed-point encoding for the sqrt price at a tick.
func x96FromTick(tick int32) *big.Int {
	scaled := TickToSqrtPrice(tick).Mul(decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 96), 0))
	return scaled.BigInt()
}

func bandTable(liquidity int64, ranges ...[2]int32) []model.Band {
	bands := make([]model.Band, 0, len(ranges))
	for _, r := range ranges {
		bands = append(bands, model.Band{
			TickLower: r[0],
			TickUpper: r[1],
			Liquidity: decimal.NewFromInt(liquidity),
		})
	}
	return bands
}

func TestSimulateSwapZeroAmount(t *testing.T) {
	bands := bandTable(1_000_000, [2]int32{0, 60})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(30), Tick: 30, Liquidity: big.NewInt(1_000_000)}

	result, err := SimulateSwap(bands, snapshot, decimal.Zero, true, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.FinalPrice.Equal(result.SpotPrice) {
		t.Fatalf("zero trade moved the price: %s -> %s", result.SpotPrice, result.FinalPrice)
	}
	if !result.SlippagePct.IsZero() || !result.GrossSlippagePct.IsZero() {
		t.Fatalf("zero trade produced slippage: %s / %s", result.SlippagePct, result.GrossSlippagePct)
	}
}

func TestSimulateSwapNoCoveringBand(t *testing.T) {
	bands := bandTable(1_000_000, [2]int32{0, 60})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(500), Tick: 500, Liquidity: big.NewInt(1_000_000)}

	_, err := SimulateSwap(bands, snapshot, decimal.NewFromInt(10), true, 0)
	if !errors.Is(err, ErrNoCoveringBand) {
		t.Fatalf("expected ErrNoCoveringBand, got %v", err)
	}
}

func TestSimulateSwapToken0InMovesPriceDown(t *testing.T) {
	bands := bandTable(1_000_000, [2]int32{0, 60})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(30), Tick: 30, Liquidity: big.NewInt(1_000_000)}

	result, err := SimulateSwap(bands, snapshot, decimal.NewFromInt(1000), true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalSqrtPrice.Cmp(SqrtPriceX96ToSqrtPrice(snapshot.SqrtPriceX96)) >= 0 {
		t.Fatalf("token0 sell should move sqrt price down: %s -> %s",
			result.SpotPrice, result.FinalSqrtPrice)
	}
	if result.SlippagePct.Sign() <= 0 {
		t.Fatalf("expected positive slippage, got %s", result.SlippagePct)
	}
	if result.AmountOut.Sign() <= 0 {
		t.Fatalf("expected positive output amount, got %s", result.AmountOut)
	}
}

func TestSimulateSwapToken1InMovesPriceUp(t *testing.T) {
	bands := bandTable(1_000_000, [2]int32{0, 60})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(30), Tick: 30, Liquidity: big.NewInt(1_000_000)}

	result, err := SimulateSwap(bands, snapshot, decimal.NewFromInt(1000), false, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalPrice.Cmp(result.SpotPrice) <= 0 {
		t.Fatalf("token1 buy should move price up: %s -> %s", result.SpotPrice, result.FinalPrice)
	}
	if result.SlippagePct.Sign() <= 0 {
		t.Fatalf("expected positive slippage, got %s", result.SlippagePct)
	}
}

func TestSimulateSwapMonotonicInTradeSize(t *testing.T) {
	bands := bandTable(10_000_000, [2]int32{0, 60})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(30), Tick: 30, Liquidity: big.NewInt(10_000_000)}

	prevSlippage := decimal.Zero
	prevFinal := decimal.Decimal{}
	for i, amount := range []int64{10, 100, 1000, 5000} {
		result, err := SimulateSwap(bands, snapshot, decimal.NewFromInt(amount), true, 0)
		if err != nil {
			t.Fatalf("amount %d: %v", amount, err)
		}
		if result.PartialFill {
			t.Fatalf("amount %d should fit in the starting band", amount)
		}
		if result.SlippagePct.Cmp(prevSlippage) <= 0 {
			t.Fatalf("slippage not increasing at amount %d: %s <= %s", amount, result.SlippagePct, prevSlippage)
		}
		if i > 0 && result.FinalPrice.Cmp(prevFinal) >= 0 {
			t.Fatalf("final price not decreasing at amount %d", amount)
		}
		prevSlippage = result.SlippagePct
		prevFinal = result.FinalPrice
	}
}

func TestSimulateSwapCrossesBands(t *testing.T) {
	bands := bandTable(1_000, [2]int32{0, 60}, [2]int32{60, 120})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(30), Tick: 30, Liquidity: big.NewInt(1_000)}

	// The starting band absorbs about L * (high - sp) of token1; trade well
	// past that so the walk must advance into [60, 120).
	result, err := SimulateSwap(bands, snapshot, decimal.NewFromInt(4), false, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PartialFill {
		t.Fatalf("trade should fit in two bands")
	}

	upperBound := TickToSqrtPrice(60)
	if result.FinalSqrtPrice.Cmp(upperBound) <= 0 {
		t.Fatalf("walk never crossed the first boundary: %s <= %s", result.FinalSqrtPrice, upperBound)
	}
}

func TestSimulateSwapPartialFill(t *testing.T) {
	bands := bandTable(1_000, [2]int32{0, 60})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(30), Tick: 30, Liquidity: big.NewInt(1_000)}

	result, err := SimulateSwap(bands, snapshot, decimal.NewFromInt(1_000_000), true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.PartialFill {
		t.Fatalf("expected partial fill for a trade beyond known liquidity")
	}

	// Price stops at the far boundary of the last known band.
	lowerBound := TickToSqrtPrice(0)
	if !result.FinalSqrtPrice.Equal(lowerBound) {
		t.Fatalf("final sqrt price = %s, want boundary %s", result.FinalSqrtPrice, lowerBound)
	}
}

func TestSimulateSwapFeeFloorsGrossAtZero(t *testing.T) {
	bands := bandTable(100_000_000_000, [2]int32{0, 60})
	snapshot := model.PoolSnapshot{SqrtPriceX96: x96FromTick(30), Tick: 30, Liquidity: big.NewInt(100_000_000_000)}

	// A tiny trade against deep liquidity: measured impact is far below the
	// 0.3% fee, so the fee-adjusted figure floors at zero.
	result, err := SimulateSwap(bands, snapshot, decimal.NewFromInt(1), true, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SlippagePct.Sign() <= 0 {
		t.Fatalf("expected positive raw slippage, got %s", result.SlippagePct)
	}
	if !result.GrossSlippagePct.IsZero() {
		t.Fatalf("expected gross slippage floored at zero, got %s", result.GrossSlippagePct)
	}
}
