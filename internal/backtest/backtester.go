package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/recommend"
	"github.com/quantrail/quantrail/internal/strategy"
	"go.uber.org/zap"
)

// residualShares below this threshold are treated as a closed position
const residualShares = 1e-9

// Backtester replays the recommender's decision process over a
// historical window. Each run gets a fresh recommender (isolated signal
// history) and its own portfolio state, so runs are independent and may
// execute concurrently.
type Backtester struct {
	provider recommend.PriceProvider
	engine   *strategy.Engine
	opts     recommend.Options
	logger   *zap.Logger
}

// New creates a Backtester. opts carries the recommender configuration
// every run derives from; cfg.Strategies narrows the weight set per run.
func New(provider recommend.PriceProvider, engine *strategy.Engine, opts recommend.Options, logger *zap.Logger) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{
		provider: provider,
		engine:   engine,
		opts:     opts,
		logger:   logger,
	}
}

// Run executes one backtest. It either fully completes or fails up
// front; no partial results are returned.
func (b *Backtester) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := b.opts
	opts.Weights = runWeights(b.opts.Weights, cfg.Strategies)
	rec, err := recommend.New(b.provider, b.engine, opts, b.logger)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()

	series, err := b.fetchUniverse(ctx, cfg, rec)
	if err != nil {
		return nil, err
	}

	timeline := buildTimeline(series, cfg.Start, cfg.End)
	if len(timeline) == 0 {
		return nil, core.WrapError(core.ErrBacktestFailed,
			fmt.Errorf("no trading periods between %s and %s",
				cfg.Start.Format("2006-01-02"), cfg.End.Format("2006-01-02")))
	}

	r := &run{
		cfg:       cfg,
		rec:       rec,
		series:    series,
		cash:      cfg.InitialCapital,
		positions: make(map[string]float64),
		lastPrice: make(map[string]float64),
		cursor:    make(map[string]int),
		logger:    b.logger,
	}

	for i, date := range timeline {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r.markPrices(date)

		if i%cfg.RebalancePeriod == 0 {
			r.rebalance(ctx, date)
			r.rebalanceIdx = append(r.rebalanceIdx, i)
		}

		r.curve = append(r.curve, EquityPoint{Date: date, Equity: r.equity()})
	}

	return &Result{
		RunID:       uuid.NewString(),
		Status:      StatusCompleted,
		Config:      cfg,
		EquityCurve: r.curve,
		Trades:      r.trades,
		Stats:       CalculateStats(r.curve, cfg.RiskFreeRate, r.rebalanceIdx),
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
	}, nil
}

// runWeights narrows the configured weights to the requested strategy
// set. Strategies requested without a configured weight default to 1.
func runWeights(configured map[string]float64, requested []string) map[string]float64 {
	if len(requested) == 0 {
		return configured
	}
	weights := make(map[string]float64, len(requested))
	for _, name := range requested {
		if w, ok := configured[name]; ok {
			weights[name] = w
		} else {
			weights[name] = 1
		}
	}
	return weights
}

// fetchUniverse loads price history for every ticker, including enough
// warmup before the window for the most demanding strategy. Tickers
// with no usable history are dropped; an empty universe fails the run.
func (b *Backtester) fetchUniverse(ctx context.Context, cfg Config, rec *recommend.Recommender) (map[string]core.Series, error) {
	warmupDays := b.engine.MaxRequiredBars(rec.Strategies()) * 2
	if warmupDays < 90 {
		warmupDays = 90
	}
	fetchStart := cfg.Start.AddDate(0, 0, -warmupDays)

	series := make(map[string]core.Series, len(cfg.Tickers))
	for _, ticker := range cfg.Tickers {
		bars, err := b.provider.FetchHistory(ctx, ticker, cfg.AssetType, fetchStart, cfg.End)
		if err != nil || len(bars) == 0 {
			b.logger.Warn("dropping ticker without history",
				zap.String("ticker", ticker), zap.Error(err))
			continue
		}
		if err := bars.Validate(); err != nil {
			return nil, core.WrapError(core.ErrBacktestFailed, fmt.Errorf("ticker %s: %w", ticker, err))
		}
		series[ticker] = bars
	}

	if len(series) == 0 {
		return nil, core.WrapError(core.ErrBacktestFailed,
			fmt.Errorf("none of %d tickers has usable history", len(cfg.Tickers)))
	}
	return series, nil
}

// buildTimeline merges the bar dates of all tickers inside the window
// into one sorted, deduplicated sequence of trading periods.
func buildTimeline(series map[string]core.Series, start, end time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, bars := range series {
		for _, bar := range bars {
			if bar.Date.Before(start) || bar.Date.After(end) {
				continue
			}
			seen[bar.Date] = struct{}{}
		}
	}

	timeline := make([]time.Time, 0, len(seen))
	for d := range seen {
		timeline = append(timeline, d)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Before(timeline[j]) })
	return timeline
}

// run holds the mutable state of a single backtest.
type run struct {
	cfg    Config
	rec    *recommend.Recommender
	series map[string]core.Series
	logger *zap.Logger

	cash      float64
	positions map[string]float64 // ticker -> shares
	lastPrice map[string]float64
	cursor    map[string]int

	curve        []EquityPoint
	trades       []Trade
	rebalanceIdx []int
}

// markPrices advances each ticker's cursor up to date and records the
// latest known close. Gapped tickers keep their previous mark.
func (r *run) markPrices(date time.Time) {
	for ticker, bars := range r.series {
		i := r.cursor[ticker]
		for i < len(bars) && !bars[i].Date.After(date) {
			r.lastPrice[ticker] = bars[i].Close
			i++
		}
		r.cursor[ticker] = i
	}
}

func (r *run) equity() float64 {
	total := r.cash
	for ticker, shares := range r.positions {
		total += shares * r.lastPrice[ticker]
	}
	return total
}

// rebalance recomputes recommendations with data strictly before date
// (no lookahead), selects the top-N BUY-ranked instruments, and adjusts
// holdings toward the target weights with proportional costs.
func (r *run) rebalance(ctx context.Context, date time.Time) {
	selected := r.selectBuys(ctx, date)

	targets := targetWeights(selected, r.cfg.Weighting)
	costRate := r.cfg.Commission + r.cfg.Slippage
	total := r.equity()

	// Close positions that no longer qualify, in deterministic order
	held := make([]string, 0, len(r.positions))
	for ticker := range r.positions {
		if _, keep := targets[ticker]; !keep {
			held = append(held, ticker)
		}
	}
	sort.Strings(held)
	for _, ticker := range held {
		r.sell(date, ticker, r.positions[ticker], costRate)
	}

	// Adjust toward targets in rank order
	for _, sel := range selected {
		price := r.lastPrice[sel.Ticker]
		if price <= 0 {
			continue
		}
		target := total * targets[sel.Ticker]
		current := r.positions[sel.Ticker] * price
		delta := target - current

		switch {
		case delta < -residualShares*price:
			r.sell(date, sel.Ticker, -delta/price, costRate)
		case delta > residualShares*price:
			spend := delta
			if spend > r.cash {
				spend = r.cash
			}
			if spend <= 0 {
				continue
			}
			r.buy(date, sel.Ticker, spend, price, costRate)
		}
	}
}

// selectBuys evaluates the universe as of date and returns the top-N
// BUY recommendations, ranked by score with ticker tiebreak.
func (r *run) selectBuys(ctx context.Context, date time.Time) []core.Recommendation {
	tickers := make([]string, 0, len(r.series))
	for ticker := range r.series {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	recs := make([]core.Recommendation, 0, len(tickers))
	for _, ticker := range tickers {
		history := r.series[ticker].Before(date)
		evaluated := r.rec.Evaluate(ctx, ticker, r.cfg.AssetType, history, nil)
		if evaluated.InsufficientData || evaluated.Recommendation != core.ActionBuy {
			continue
		}
		recs = append(recs, evaluated)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Ticker < recs[j].Ticker
	})

	if len(recs) > r.cfg.TopN {
		recs = recs[:r.cfg.TopN]
	}
	return recs
}

func (r *run) sell(date time.Time, ticker string, shares float64, costRate float64) {
	price := r.lastPrice[ticker]
	if price <= 0 || shares <= 0 {
		return
	}
	proceeds := shares * price
	net := proceeds * (1 - costRate)
	r.cash += net
	r.positions[ticker] -= shares
	if r.positions[ticker] < residualShares {
		delete(r.positions, ticker)
	}
	r.trades = append(r.trades, Trade{
		Date: date, Ticker: ticker, Action: core.ActionSell,
		Price: price, Quantity: shares, Value: net,
	})
}

func (r *run) buy(date time.Time, ticker string, spend, price, costRate float64) {
	effective := price * (1 + costRate)
	shares := spend / effective
	if shares <= 0 {
		return
	}
	r.cash -= spend
	r.positions[ticker] += shares
	r.trades = append(r.trades, Trade{
		Date: date, Ticker: ticker, Action: core.ActionBuy,
		Price: price, Quantity: shares, Value: spend,
	})
}

// targetWeights spreads 100% of equity across the selection, either
// equally or proportionally to score. Degenerate score sums fall back
// to equal weighting.
func targetWeights(selected []core.Recommendation, weighting Weighting) map[string]float64 {
	targets := make(map[string]float64, len(selected))
	if len(selected) == 0 {
		return targets
	}

	if weighting == WeightScore {
		var sum float64
		for _, rec := range selected {
			if rec.Score > 0 {
				sum += rec.Score
			}
		}
		if sum > 0 {
			for _, rec := range selected {
				if rec.Score > 0 {
					targets[rec.Ticker] = rec.Score / sum
				}
			}
			return targets
		}
	}

	for _, rec := range selected {
		targets[rec.Ticker] = 1 / float64(len(selected))
	}
	return targets
}
