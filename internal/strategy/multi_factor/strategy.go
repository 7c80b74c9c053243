package multi_factor

import (
	"fmt"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/strategy"
)

const (
	momentumWeight = 0.7
	valueWeight    = 0.3
	momentumScale  = 10 // puts a ~5% half-year return on the same footing as the value score
)

// MultiFactor blends a 6-month momentum factor with an inverted P/E
// value factor. The value factor is dropped (and momentum takes full
// weight) when no fundamentals are supplied.
type MultiFactor struct {
	momentumWindow int
}

// New creates a new multi-factor strategy
func New(momentumWindow int) *MultiFactor {
	return &MultiFactor{momentumWindow: momentumWindow}
}

func (m *MultiFactor) Name() string {
	return "multi_factor"
}

func (m *MultiFactor) Description() string {
	return fmt.Sprintf("Multi-Factor momentum+value (%d periods)", m.momentumWindow)
}

func (m *MultiFactor) RequiredBars() int {
	return m.momentumWindow
}

func (m *MultiFactor) Active() bool {
	return true
}

func (m *MultiFactor) Init(cfg strategy.Config) error {
	if window, ok := cfg.Params["momentum_window"].(int); ok {
		m.momentumWindow = window
	}
	if m.momentumWindow < 2 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("momentum window %d", m.momentumWindow))
	}
	return nil
}

func (m *MultiFactor) Signal(ctx strategy.Context) (float64, error) {
	if len(ctx.Bars) < m.momentumWindow {
		return 0, nil
	}

	closes := ctx.Bars.Closes()
	base := closes[len(closes)-m.momentumWindow]
	if base == 0 {
		return 0, nil
	}
	momentum := (closes[len(closes)-1] - base) / base

	value, hasValue := valueScore(ctx.Fundamentals)
	if !hasValue {
		return momentum * momentumScale, nil
	}

	return momentumWeight*momentum*momentumScale + valueWeight*value, nil
}

// valueScore inverts and normalizes a P/E ratio: P/E 10 -> +1, 30 -> -1.
func valueScore(fundamentals map[string]float64) (float64, bool) {
	pe, ok := fundamentals["pe_ratio"]
	if !ok || pe <= 0 {
		return 0, false
	}

	score := (30 - pe) / 20
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score, true
}
