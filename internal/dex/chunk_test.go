package dex

import (
	"math"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poolScope/internal/chain"
)

func TestWordPositions(t *testing.T) {
	got := WordPositions(3, 2)
	want := []int16{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("positions mismatch: %v != %v", got, want)
	}
}

func TestWordPositionsZeroRadius(t *testing.T) {
	got := WordPositions(-7, 0)
	want := []int16{-7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("positions mismatch: %v != %v", got, want)
	}
}

func TestWordPositionsClamped(t *testing.T) {
	got := WordPositions(math.MaxInt16-1, 3)
	want := []int16{math.MaxInt16 - 4, math.MaxInt16 - 3, math.MaxInt16 - 2, math.MaxInt16 - 1, math.MaxInt16}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("positions mismatch: %v != %v", got, want)
	}

	got = WordPositions(math.MinInt16+1, 3)
	want = []int16{math.MinInt16, math.MinInt16 + 1, math.MinInt16 + 2, math.MinInt16 + 3, math.MinInt16 + 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("positions mismatch: %v != %v", got, want)
	}
}

func TestSplitCalls(t *testing.T) {
	calls := make([]chain.Call, 5)
	for i := range calls {
		calls[i] = chain.Call{To: common.Address{byte(i)}}
	}

	chunks, err := SplitCalls(calls, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("chunk count mismatch: %d != 3", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[1]) != 2 || len(chunks[2]) != 1 {
		t.Fatalf("chunk sizes mismatch: %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[2][0].To != calls[4].To {
		t.Fatalf("last chunk lost order: %v != %v", chunks[2][0].To, calls[4].To)
	}
}

func TestSplitCallsEmpty(t *testing.T) {
	chunks, err := SplitCalls(nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitCallsInvalid(t *testing.T) {
	if _, err := SplitCalls(make([]chain.Call, 3), 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}
