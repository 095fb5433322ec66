package pool

import (
	"math/big"
	"reflect"
	"testing"
)

func TestInitializedTicksSingleBit(t *testing.T) {
	words := map[int16]*big.Int{
		0: new(big.Int).Lsh(big.NewInt(1), 5),
	}

	got := InitializedTicks(words, 60)
	want := []int32{300}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ticks mismatch: %v != %v", got, want)
	}
}

func TestInitializedTicksZeroWords(t *testing.T) {
	words := map[int16]*big.Int{
		-2: big.NewInt(0),
		-1: nil,
		0:  big.NewInt(0),
		1:  big.NewInt(0),
	}

	got := InitializedTicks(words, 10)
	if len(got) != 0 {
		t.Fatalf("expected no ticks, got %v", got)
	}
}

func TestInitializedTicksNegativeWordSorted(t *testing.T) {
	// Bit 255 of word -1 is the tick just below word 0.
	words := map[int16]*big.Int{
		-1: new(big.Int).Lsh(big.NewInt(1), 255),
		0:  big.NewInt(0b1001), // bits 0 and 3
	}

	got := InitializedTicks(words, 10)
	want := []int32{-10, 0, 30}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ticks mismatch: %v != %v", got, want)
	}
}

func TestWordPosition(t *testing.T) {
	cases := []struct {
		tick        int32
		tickSpacing int32
		want        int16
	}{
		{tick: 0, tickSpacing: 60, want: 0},
		{tick: 300, tickSpacing: 60, want: 0},
		{tick: 60 * 256, tickSpacing: 60, want: 1},
		{tick: -60, tickSpacing: 60, want: -1},
		{tick: -60 * 256, tickSpacing: 60, want: -1},
		{tick: -60*256 - 60, tickSpacing: 60, want: -2},
	}

	for _, tc := range cases {
		if got := WordPosition(tc.tick, tc.tickSpacing); got != tc.want {
			t.Fatalf("WordPosition(%d, %d) = %d, want %d", tc.tick, tc.tickSpacing, got, tc.want)
		}
	}
}
