// Package indicator provides pure transforms over ordered price series.
// Every function is deterministic, never mutates its input, and omits
// leading entries that the window cannot cover rather than zero-filling.
package indicator

import "github.com/quantrail/quantrail/internal/core"

// SMA calculates Simple Moving Average.
// Returns a slice of length len(prices) - window + 1, aligned so the
// first value covers prices[0:window].
func SMA(prices []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, core.ErrInvalidConfig
	}
	if len(prices) < window {
		return nil, core.ErrInsufficientData
	}

	result := make([]float64, 0, len(prices)-window+1)

	var sum float64
	for i := 0; i < window; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(window))

	// Rolling calculation
	for i := window; i < len(prices); i++ {
		sum = sum - prices[i-window] + prices[i]
		result = append(result, sum/float64(window))
	}

	return result, nil
}

// EMA calculates Exponential Moving Average with k = 2/(span+1),
// seeded with the simple average of the first span values.
// Returns a slice of length len(prices) - span + 1.
func EMA(prices []float64, span int) ([]float64, error) {
	if span < 1 {
		return nil, core.ErrInvalidConfig
	}
	if len(prices) < span {
		return nil, core.ErrInsufficientData
	}

	result := make([]float64, 0, len(prices)-span+1)
	k := 2.0 / float64(span+1)

	var sum float64
	for i := 0; i < span; i++ {
		sum += prices[i]
	}
	ema := sum / float64(span)
	result = append(result, ema)

	for i := span; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1-k)
		result = append(result, ema)
	}

	return result, nil
}
