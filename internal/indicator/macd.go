package indicator

import "github.com/quantrail/quantrail/internal/core"

// MACDResult holds the three MACD components. MACD is aligned to the
// slow EMA (first value covers prices[0:slow]); Signal and Hist start
// signal-1 entries later.
type MACDResult struct {
	MACD   []float64
	Signal []float64
	Hist   []float64
}

// MACD calculates Moving Average Convergence Divergence: the fast EMA
// minus the slow EMA, an EMA-smoothed signal line, and the histogram
// (macd - signal).
func MACD(prices []float64, fast, slow, signal int) (MACDResult, error) {
	if fast < 1 || slow < 1 || signal < 1 || fast >= slow {
		return MACDResult{}, core.ErrInvalidConfig
	}
	if len(prices) < slow+signal-1 {
		return MACDResult{}, core.ErrInsufficientData
	}

	fastEMA, err := EMA(prices, fast)
	if err != nil {
		return MACDResult{}, err
	}
	slowEMA, err := EMA(prices, slow)
	if err != nil {
		return MACDResult{}, err
	}

	// Fast EMA starts earlier; drop its head to align with the slow EMA.
	offset := len(fastEMA) - len(slowEMA)
	macd := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macd[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine, err := EMA(macd, signal)
	if err != nil {
		return MACDResult{}, err
	}

	hist := make([]float64, len(signalLine))
	for i := range signalLine {
		hist[i] = macd[i+signal-1] - signalLine[i]
	}

	return MACDResult{MACD: macd, Signal: signalLine, Hist: hist}, nil
}
