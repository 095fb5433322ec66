package pool

import (
	"math/big"
	"sort"
)

// wordBits is the number of ticks tracked per bitmap word.
const wordBits = 256

// InitializedTicks expands a sparse tick bitmap into the ascending list of
// initialized tick indices. Bit b of the word at position w marks tick
// (w*256 + b) * tickSpacing. Zero or nil words carry no ticks and word
// positions missing from the map are treated as absent, so the result is a
// truncation of the true set when the scanned range is too narrow.
func InitializedTicks(words map[int16]*big.Int, tickSpacing int32) []int32 {
	ticks := make([]int32, 0)
	for wordPos, word := range words {
		if word == nil || word.Sign() == 0 {
			continue
		}
		for bit := 0; bit < wordBits; bit++ {
			if word.Bit(bit) == 1 {
				ticks = append(ticks, (int32(wordPos)*wordBits+int32(bit))*tickSpacing)
			}
		}
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	return ticks
}

// WordPosition returns the bitmap word position holding the given tick.
func WordPosition(tick int32, tickSpacing int32) int16 {
	compressed := floorDiv(tick, tickSpacing)
	return int16(floorDiv(compressed, wordBits))
}

// floorDiv divides rounding toward negative infinity, matching the pool
// contract's compressed-tick arithmetic for negative ticks.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
