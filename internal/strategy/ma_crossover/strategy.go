package ma_crossover

import (
	"fmt"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/indicator"
	"github.com/quantrail/quantrail/internal/strategy"
)

// MACrossover signals on the spread between a short and a long simple
// moving average, scaled by the long average.
type MACrossover struct {
	shortWindow int
	longWindow  int
}

// New creates a new MA crossover strategy
func New(shortWindow, longWindow int) *MACrossover {
	return &MACrossover{
		shortWindow: shortWindow,
		longWindow:  longWindow,
	}
}

func (m *MACrossover) Name() string {
	return "ma_crossover"
}

func (m *MACrossover) Description() string {
	return fmt.Sprintf("MA Crossover (%d/%d)", m.shortWindow, m.longWindow)
}

func (m *MACrossover) RequiredBars() int {
	return m.longWindow
}

func (m *MACrossover) Active() bool {
	return true
}

func (m *MACrossover) Init(cfg strategy.Config) error {
	if short, ok := cfg.Params["short_window"].(int); ok {
		m.shortWindow = short
	}
	if long, ok := cfg.Params["long_window"].(int); ok {
		m.longWindow = long
	}
	if m.shortWindow < 1 || m.longWindow <= m.shortWindow {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("ma_crossover windows %d/%d", m.shortWindow, m.longWindow))
	}
	return nil
}

func (m *MACrossover) Signal(ctx strategy.Context) (float64, error) {
	if len(ctx.Bars) < m.longWindow {
		return 0, nil // short history: abstain, don't fail
	}

	closes := ctx.Bars.Closes()

	shortMA, err := indicator.SMA(closes, m.shortWindow)
	if err != nil {
		return 0, nil
	}
	longMA, err := indicator.SMA(closes, m.longWindow)
	if err != nil {
		return 0, nil
	}

	short := shortMA[len(shortMA)-1]
	long := longMA[len(longMA)-1]
	if long == 0 {
		return 0, nil
	}

	return (short - long) / long, nil
}
