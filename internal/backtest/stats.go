package backtest

import (
	"math"

	"github.com/quantrail/quantrail/internal/indicator"
)

const periodsPerYear = 252

// CalculateStats computes performance statistics from an equity curve.
// rebalanceIdx marks the curve indices at which the portfolio was
// rebalanced; the win rate counts intervals between consecutive marks
// (plus the trailing segment) that ended higher than they started.
func CalculateStats(curve []EquityPoint, riskFreeRate float64, rebalanceIdx []int) Stats {
	if len(curve) < 2 {
		return Stats{}
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	first, last := curve[0].Equity, curve[len(curve)-1].Equity
	totalReturn := 0.0
	if first != 0 {
		totalReturn = last/first - 1
	}

	years := float64(len(returns)) / periodsPerYear
	annualized := totalReturn
	if years > 0 && totalReturn > -1 {
		annualized = math.Pow(1+totalReturn, 1/years) - 1
	}

	std := indicator.StdDev(returns)
	sharpe := 0.0
	if std > 0 {
		excess := indicator.Mean(returns) - riskFreeRate/periodsPerYear
		sharpe = excess / std * math.Sqrt(periodsPerYear)
	}

	return Stats{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualized,
		SharpeRatio:      sharpe,
		MaxDrawdown:      maxDrawdown(curve),
		Volatility:       std * math.Sqrt(periodsPerYear),
		WinRate:          winRate(curve, rebalanceIdx),
	}
}

// maxDrawdown finds the largest peak-to-trough decline as a positive
// fraction of the peak.
func maxDrawdown(curve []EquityPoint) float64 {
	var maxDD, peak float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// winRate is the fraction of rebalance intervals with positive
// portfolio return.
func winRate(curve []EquityPoint, rebalanceIdx []int) float64 {
	if len(rebalanceIdx) == 0 {
		return 0
	}

	marks := make([]int, 0, len(rebalanceIdx)+1)
	marks = append(marks, rebalanceIdx...)
	if last := marks[len(marks)-1]; last < len(curve)-1 {
		marks = append(marks, len(curve)-1)
	}
	if len(marks) < 2 {
		return 0
	}

	wins, intervals := 0, 0
	for i := 1; i < len(marks); i++ {
		from, to := curve[marks[i-1]].Equity, curve[marks[i]].Equity
		intervals++
		if to > from {
			wins++
		}
	}
	return float64(wins) / float64(intervals)
}
