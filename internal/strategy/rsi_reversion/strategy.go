package rsi_reversion

import (
	"fmt"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/indicator"
	"github.com/quantrail/quantrail/internal/strategy"
)

// RSIReversion maps the relative strength index to a centered contrarian
// signal: oversold (RSI < 30) is a strong buy, overbought (RSI > 70) a
// strong sell.
type RSIReversion struct {
	period int
}

// New creates a new RSI mean reversion strategy
func New(period int) *RSIReversion {
	return &RSIReversion{period: period}
}

func (r *RSIReversion) Name() string {
	return "rsi_mean_reversion"
}

func (r *RSIReversion) Description() string {
	return fmt.Sprintf("RSI Mean Reversion (period %d)", r.period)
}

func (r *RSIReversion) RequiredBars() int {
	return r.period + 1
}

func (r *RSIReversion) Active() bool {
	return true
}

func (r *RSIReversion) Init(cfg strategy.Config) error {
	if period, ok := cfg.Params["period"].(int); ok {
		r.period = period
	}
	if r.period < 2 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("rsi period %d", r.period))
	}
	return nil
}

func (r *RSIReversion) Signal(ctx strategy.Context) (float64, error) {
	if len(ctx.Bars) < r.period+1 {
		return 0, nil
	}

	rsi, err := indicator.RSI(ctx.Bars.Closes(), r.period)
	if err != nil {
		return 0, nil
	}

	current := rsi[len(rsi)-1]

	// (50-rsi)/20: RSI 30 -> +1, RSI 70 -> -1
	return (50 - current) / 20, nil
}
