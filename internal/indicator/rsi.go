package indicator

import "github.com/quantrail/quantrail/internal/core"

// RSI calculates Wilder's Relative Strength Index on a 0-100 scale.
// The average gain/loss is seeded with the simple mean of the first
// window price changes and smoothed with Wilder's recurrence after that.
// Returns a slice of length len(prices) - window.
func RSI(prices []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, core.ErrInvalidConfig
	}
	if len(prices) < window+1 {
		return nil, core.ErrInsufficientData
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	result := make([]float64, 0, len(prices)-window)
	result = append(result, rsiValue(avgGain, avgLoss))

	w := float64(window)
	for i := window + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(w-1) + gain) / w
		avgLoss = (avgLoss*(w-1) + loss) / w
		result = append(result, rsiValue(avgGain, avgLoss))
	}

	return result, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // flat series, no directional pressure
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
