package indicator

import (
	"math"

	"github.com/quantrail/quantrail/internal/core"
)

// Returns calculates period-over-period percentage returns.
// Returns a slice of length len(prices) - 1.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	result := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			result[i-1] = 0
			continue
		}
		result[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return result
}

// Volatility calculates the rolling sample standard deviation of returns.
// Returns a slice of length len(returns) - window + 1.
func Volatility(returns []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, core.ErrInvalidConfig
	}
	if len(returns) < window {
		return nil, core.ErrInsufficientData
	}

	result := make([]float64, 0, len(returns)-window+1)
	for i := window; i <= len(returns); i++ {
		result = append(result, StdDev(returns[i-window:i]))
	}
	return result, nil
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation, or 0 when fewer than
// two values are supplied.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
