package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/indicator"
	"go.uber.org/zap"
)

const summaryWindowDays = 90

// Summary describes the equally weighted portfolio implied by a batch
// of recommendations over a trailing 90-day window.
type Summary struct {
	EquityCurve []SummaryPoint
	Allocation  map[string]float64 // ticker -> weight

	TotalReturn float64
	SharpeRatio float64
	MaxDrawdown float64
	Volatility  float64 // annualized

	Wins    int // periods with positive portfolio return
	Losses  int
	WinRate float64
}

// SummaryPoint is one normalized equity observation, starting from 1.
type SummaryPoint struct {
	Date   time.Time
	Equity float64
}

// Summary replays an equally weighted portfolio of the recommended
// tickers over the trailing window and summarizes its performance.
// Tickers without usable history stay in the allocation but contribute
// zero return, like an uninvested sleeve.
func (r *Recommender) Summary(ctx context.Context, recs []core.Recommendation, assetType core.AssetType) (*Summary, error) {
	s := &Summary{Allocation: make(map[string]float64, len(recs))}
	if len(recs) == 0 {
		return s, nil
	}

	weight := 1.0 / float64(len(recs))
	end := time.Now()
	start := end.AddDate(0, 0, -summaryWindowDays)

	perTicker := make(map[string]map[time.Time]float64)
	dates := make(map[time.Time]struct{})
	for _, rec := range recs {
		s.Allocation[rec.Ticker] = weight

		bars, err := r.provider.FetchHistory(ctx, rec.Ticker, assetType, start, end)
		if err != nil {
			r.logger.Warn("summary skipping ticker",
				zap.String("ticker", rec.Ticker), zap.Error(err))
			continue
		}
		if len(bars) < 2 {
			continue
		}

		rets := make(map[time.Time]float64, len(bars)-1)
		for i := 1; i < len(bars); i++ {
			if prev := bars[i-1].Close; prev != 0 {
				rets[bars[i].Date] = bars[i].Close/prev - 1
			}
			dates[bars[i].Date] = struct{}{}
		}
		perTicker[rec.Ticker] = rets
	}
	if len(dates) == 0 {
		return s, nil
	}

	timeline := make([]time.Time, 0, len(dates))
	for d := range dates {
		timeline = append(timeline, d)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Before(timeline[j]) })

	equity := 1.0
	curve := make([]SummaryPoint, 0, len(timeline))
	rets := make([]float64, 0, len(timeline))
	for _, d := range timeline {
		var sum float64
		for _, tr := range perTicker {
			sum += tr[d] // a ticker without this date contributes zero
		}
		ret := sum / float64(len(perTicker))

		equity *= 1 + ret
		curve = append(curve, SummaryPoint{Date: d, Equity: equity})
		rets = append(rets, ret)
		if ret > 0 {
			s.Wins++
		} else if ret < 0 {
			s.Losses++
		}
	}

	s.EquityCurve = curve
	s.TotalReturn = equity - 1
	std := indicator.StdDev(rets)
	if std > 0 {
		s.SharpeRatio = indicator.Mean(rets) / std * math.Sqrt(periodsPerYear)
	}
	s.Volatility = std * math.Sqrt(periodsPerYear)
	s.MaxDrawdown = summaryDrawdown(curve)
	if total := s.Wins + s.Losses; total > 0 {
		s.WinRate = float64(s.Wins) / float64(total)
	}
	return s, nil
}

func summaryDrawdown(curve []SummaryPoint) float64 {
	var peak, maxDD float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if dd := (peak - p.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
