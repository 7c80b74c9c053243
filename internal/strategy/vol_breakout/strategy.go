package vol_breakout

import (
	"fmt"
	"math"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/indicator"
	"github.com/quantrail/quantrail/internal/strategy"
)

// VolBreakout signals when the last close moves further than a multiple
// of the average true range, scaled by how far past the threshold it went.
type VolBreakout struct {
	atrWindow  int
	multiplier float64
}

// New creates a new volatility breakout strategy
func New(atrWindow int, multiplier float64) *VolBreakout {
	return &VolBreakout{atrWindow: atrWindow, multiplier: multiplier}
}

func (v *VolBreakout) Name() string {
	return "volatility_breakout"
}

func (v *VolBreakout) Description() string {
	return fmt.Sprintf("ATR(%d) breakout at %.1fx", v.atrWindow, v.multiplier)
}

func (v *VolBreakout) RequiredBars() int {
	return v.atrWindow + 2
}

func (v *VolBreakout) Active() bool {
	return true
}

func (v *VolBreakout) Init(cfg strategy.Config) error {
	if window, ok := cfg.Params["atr_window"].(int); ok {
		v.atrWindow = window
	}
	if mult, ok := cfg.Params["multiplier"].(float64); ok {
		v.multiplier = mult
	}
	if v.atrWindow < 1 || v.multiplier <= 0 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("atr window %d, multiplier %f", v.atrWindow, v.multiplier))
	}
	return nil
}

func (v *VolBreakout) Signal(ctx strategy.Context) (float64, error) {
	if len(ctx.Bars) < v.RequiredBars() {
		return 0, nil
	}

	atr, err := indicator.ATR(ctx.Bars, v.atrWindow)
	if err != nil {
		return 0, nil
	}

	threshold := atr[len(atr)-1] * v.multiplier
	if threshold <= 0 {
		return 0, nil
	}

	last := ctx.Bars[len(ctx.Bars)-1].Close
	prev := ctx.Bars[len(ctx.Bars)-2].Close
	diff := last - prev
	if math.Abs(diff) < threshold {
		return 0, nil
	}

	score := math.Abs(diff) / threshold
	if diff < 0 {
		score = -score
	}
	if score > 2.5 {
		score = 2.5
	}
	if score < -2.5 {
		score = -2.5
	}
	return score, nil
}
