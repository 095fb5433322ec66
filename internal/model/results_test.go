package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSlippageResultJSONRoundTrip(t *testing.T) {
	original := SlippageResult{
		ChainID:          56,
		PoolAddress:      "0x1111111111111111111111111111111111111111",
		BlockNumber:      36000000,
		ZeroForOne:       true,
		AmountIn:         decimal.RequireFromString("1000"),
		AmountOut:        decimal.RequireFromString("998.5"),
		SpotPrice:        decimal.RequireFromString("1.0001"),
		FinalPrice:       decimal.RequireFromString("0.9999"),
		SlippagePct:      decimal.RequireFromString("0.02"),
		GrossSlippagePct: decimal.RequireFromString("0"),
		PartialFill:      false,
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded SlippageResult
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.ChainID != original.ChainID || decoded.PoolAddress != original.PoolAddress {
		t.Fatalf("identity mismatch: %+v", decoded)
	}
	if decoded.ZeroForOne != original.ZeroForOne || decoded.PartialFill != original.PartialFill {
		t.Fatalf("flags mismatch: %+v", decoded)
	}
	if !decoded.AmountIn.Equal(original.AmountIn) || !decoded.AmountOut.Equal(original.AmountOut) {
		t.Fatalf("amounts mismatch: %+v", decoded)
	}
	if !decoded.SlippagePct.Equal(original.SlippagePct) || !decoded.GrossSlippagePct.Equal(original.GrossSlippagePct) {
		t.Fatalf("slippage mismatch: %+v", decoded)
	}
}
