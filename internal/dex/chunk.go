package dex

import (
	"fmt"
	"math"

	"poolScope/internal/chain"
)

// WordPositions returns the inclusive word-position scan range centered on
// the given word, clamped to the int16 domain of the bitmap index.
func WordPositions(center int16, radius int) []int16 {
	if radius < 0 {
		radius = 0
	}

	low := int(center) - radius
	high := int(center) + radius
	if low < math.MinInt16 {
		low = math.MinInt16
	}
	if high > math.MaxInt16 {
		high = math.MaxInt16
	}

	positions := make([]int16, 0, high-low+1)
	for pos := low; pos <= high; pos++ {
		positions = append(positions, int16(pos))
	}
	return positions
}

// SplitCalls splits a call list into batches of size batchSize.
func SplitCalls(calls []chain.Call, batchSize int) ([][]chain.Call, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}

	chunks := make([][]chain.Call, 0, (len(calls)+batchSize-1)/batchSize)
	for start := 0; start < len(calls); start += batchSize {
		end := start + batchSize
		if end > len(calls) {
			end = len(calls)
		}
		chunks = append(chunks, calls[start:end])
	}
	return chunks, nil
}
