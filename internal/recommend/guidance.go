package recommend

import (
	"math"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/indicator"
)

const (
	atrWindow    = 14
	stopMultiple = 1.5
	tpMultiple   = 3.0
)

// positionGuidance derives ATR-based stop/target levels and a size
// sketch for non-HOLD recommendations. Returns nil when the ATR cannot
// be computed or the recommendation is HOLD; advisory only, nothing
// here places orders.
func positionGuidance(bars core.Series, action core.Action, riskPct, equity float64) *core.PositionGuidance {
	if action == core.ActionHold {
		return nil
	}

	last, ok := bars.Last()
	if !ok || last.Close <= 0 {
		return nil
	}

	atr, err := indicator.ATR(bars, atrWindow)
	if err != nil {
		return nil
	}
	a := atr[len(atr)-1]
	if a <= 0 {
		return nil
	}

	price := last.Close
	var stop, target float64
	if action == core.ActionBuy {
		stop = math.Max(price-a*stopMultiple, 0)
		target = price + a*tpMultiple
	} else {
		stop = price + a*stopMultiple
		target = math.Max(price-a*tpMultiple, 0)
	}

	stopDistance := math.Abs(price - stop)
	if stopDistance <= 0 {
		return nil
	}

	return &core.PositionGuidance{
		RiskPct:         riskPct,
		RecommendedSize: equity * (riskPct / 100) / stopDistance,
		StopLoss:        stop,
		TakeProfit:      target,
	}
}
