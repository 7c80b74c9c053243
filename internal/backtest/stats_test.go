package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curveOf(equities ...float64) []EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := make([]EquityPoint, len(equities))
	for i, e := range equities {
		curve[i] = EquityPoint{Date: base.AddDate(0, 0, i), Equity: e}
	}
	return curve
}

func TestCalculateStats_TotalAndAnnualized(t *testing.T) {
	curve := curveOf(100, 105, 110.25)
	stats := CalculateStats(curve, 0, []int{0})

	assert.InDelta(t, 0.1025, stats.TotalReturn, 1e-12)

	// Two daily periods compound to the annual rate raised by 252/2.
	years := 2.0 / 252
	wantAnnualized := math.Pow(1.1025, 1/years) - 1
	assert.InDelta(t, wantAnnualized, stats.AnnualizedReturn, 1e-9)
}

func TestCalculateStats_ShortCurve(t *testing.T) {
	assert.Equal(t, Stats{}, CalculateStats(curveOf(100), 0, nil))
	assert.Equal(t, Stats{}, CalculateStats(nil, 0, nil))
}

func TestCalculateStats_Sharpe(t *testing.T) {
	// A net-losing curve must produce a negative ratio at a zero
	// risk-free rate.
	curve := curveOf(100, 102, 98)
	stats := CalculateStats(curve, 0, []int{0})
	assert.Less(t, stats.SharpeRatio, 0.0)
	assert.Greater(t, stats.Volatility, 0.0)

	// Zero variance degrades the ratio to 0 rather than dividing by zero.
	flat := curveOf(100, 100, 100)
	assert.Zero(t, CalculateStats(flat, 0, []int{0}).SharpeRatio)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name  string
		curve []EquityPoint
		want  float64
	}{
		{"peak then trough", curveOf(100, 110, 90, 95), 20.0 / 110},
		{"monotone rise", curveOf(100, 110, 120), 0},
		{"full wipeout", curveOf(100, 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, maxDrawdown(tt.curve), 1e-12)
		})
	}
}

func TestWinRate(t *testing.T) {
	// Rebalances at 0 and 2 split the curve into two intervals plus no
	// trailing segment; both intervals end higher.
	curve := curveOf(100, 110, 105, 115)
	assert.InDelta(t, 1.0, winRate(curve, []int{0, 2}), 1e-12)

	// First interval wins, trailing segment loses.
	losing := curveOf(100, 120, 110)
	assert.InDelta(t, 0.5, winRate(losing, []int{0, 1}), 1e-12)

	// Single rebalance at the start: the whole run is one interval.
	single := curveOf(100, 90, 95)
	assert.InDelta(t, 0.0, winRate(single, []int{0}), 1e-12)

	assert.Zero(t, winRate(curve, nil))
}

func TestCalculateStats_WinRateWired(t *testing.T) {
	curve := curveOf(100, 90, 95, 120)
	stats := CalculateStats(curve, 0, []int{0, 2})
	require.InDelta(t, 0.5, stats.WinRate, 1e-12)
}
