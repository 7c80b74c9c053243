package indicator

import (
	"math"

	"github.com/quantrail/quantrail/internal/core"
)

// ATR calculates the Average True Range as a rolling mean of true range.
// The first bar's true range is its high-low span (no previous close).
// Returns a slice of length len(bars) - window + 1.
func ATR(bars []core.Bar, window int) ([]float64, error) {
	if window < 1 {
		return nil, core.ErrInvalidConfig
	}
	if len(bars) < window {
		return nil, core.ErrInsufficientData
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		highLow := bars[i].High - bars[i].Low
		highClose := math.Abs(bars[i].High - bars[i-1].Close)
		lowClose := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	return SMA(tr, window)
}
