package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/indicator"
	"github.com/quantrail/quantrail/internal/strategy"
	"go.uber.org/zap"
)

// RankBy selects the ordering of a recommendation batch.
type RankBy string

const (
	RankByScore     RankBy = "score"     // descending signed score
	RankByMagnitude RankBy = "magnitude" // descending |score|
)

const (
	defaultLookback   = 60
	defaultVolWindow  = 20
	defaultMinHistory = 50
	periodsPerYear    = 252
	zClip             = 3
	maxWorkers        = 8
)

// Options configures a Recommender. Zero values fall back to documented
// defaults, except Weights which is required.
type Options struct {
	// Weights maps strategy name to a non-negative aggregation weight.
	// At least one strategy must carry a non-zero weight.
	Weights map[string]float64

	BuyThreshold     float64 // default 0.5
	SellThreshold    float64 // default -0.5
	VolatilityFactor float64 // default 0.5
	Lookback         int     // signal history capacity, default 60
	VolatilityWindow int     // default 20
	MinHistory       int     // bars required before a ticker is usable, default 50

	// Position guidance inputs (restored sizing heuristic)
	RiskPct float64 // default 1.0
	Equity  float64 // default 10000
}

func (o *Options) setDefaults() {
	if o.BuyThreshold == 0 {
		o.BuyThreshold = 0.5
	}
	if o.SellThreshold == 0 {
		o.SellThreshold = -0.5
	}
	if o.VolatilityFactor == 0 {
		o.VolatilityFactor = 0.5
	}
	if o.Lookback <= 0 {
		o.Lookback = defaultLookback
	}
	if o.VolatilityWindow <= 0 {
		o.VolatilityWindow = defaultVolWindow
	}
	if o.MinHistory <= 0 {
		o.MinHistory = defaultMinHistory
	}
	if o.RiskPct <= 0 {
		o.RiskPct = 1.0
	}
	if o.Equity <= 0 {
		o.Equity = 10000
	}
}

// Recommender aggregates per-strategy signals into ranked,
// confidence-scored recommendations.
type Recommender struct {
	provider     PriceProvider
	fundamentals FundamentalProvider
	engine       *strategy.Engine
	opts         Options
	names        []string // weighted strategies, sorted for determinism
	history      *signalHistory
	logger       *zap.Logger
}

// New creates a Recommender. Configuration problems are rejected here,
// before any computation starts.
func New(provider PriceProvider, engine *strategy.Engine, opts Options, logger *zap.Logger) (*Recommender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.setDefaults()

	if opts.SellThreshold >= opts.BuyThreshold {
		return nil, core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("sell threshold %.2f must be below buy threshold %.2f",
				opts.SellThreshold, opts.BuyThreshold))
	}

	var total float64
	names := make([]string, 0, len(opts.Weights))
	for name, w := range opts.Weights {
		if w < 0 {
			return nil, core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("strategy %s has negative weight %.2f", name, w))
		}
		if w > 0 {
			names = append(names, name)
			total += w
		}
	}
	if total == 0 {
		return nil, core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("total strategy weight is zero"))
	}
	sort.Strings(names)

	return &Recommender{
		provider: provider,
		engine:   engine,
		opts:     opts,
		names:    names,
		history:  newSignalHistory(opts.Lookback),
		logger:   logger,
	}, nil
}

// WithFundamentals attaches an optional fundamentals source.
func (r *Recommender) WithFundamentals(p FundamentalProvider) *Recommender {
	r.fundamentals = p
	return r
}

// Strategies returns the weighted strategy names in deterministic order.
func (r *Recommender) Strategies() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// lookbackDays sizes the calendar window fetched per ticker so the most
// demanding strategy sees a full history even across non-trading days.
func (r *Recommender) lookbackDays() int {
	days := r.engine.MaxRequiredBars(r.names) * 2
	if days < 365 {
		days = 365
	}
	return days
}

// Recommend produces one ranked recommendation per requested ticker.
// Independent tickers are evaluated in parallel; a ticker with no usable
// history yields a flagged HOLD instead of failing the batch.
func (r *Recommender) Recommend(ctx context.Context, tickers []string, assetType core.AssetType, rankBy RankBy) ([]core.Recommendation, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -r.lookbackDays())

	recs := make([]core.Recommendation, len(tickers))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bars, err := r.provider.FetchHistory(ctx, ticker, assetType, start, now)
			if err != nil {
				r.logger.Warn("price history unavailable",
					zap.String("ticker", ticker), zap.Error(err))
				bars = nil
			}
			recs[i] = r.Evaluate(ctx, ticker, assetType, bars, r.fetchFundamentals(ctx, ticker))
		}(i, ticker)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rank(recs, rankBy)
	return recs, nil
}

// Evaluate runs the full aggregation pipeline for one ticker on the
// supplied bars. It is the unit the backtester replays: pure over its
// inputs apart from the rolling signal history.
func (r *Recommender) Evaluate(ctx context.Context, ticker string, assetType core.AssetType, bars core.Series, fundamentals map[string]float64) core.Recommendation {
	rec := core.Recommendation{
		Ticker:         ticker,
		AssetType:      assetType,
		Recommendation: core.ActionHold,
		GeneratedAt:    time.Now(),
	}

	if len(bars) < r.opts.MinHistory {
		// Data gap: flagged HOLD with zero confidence, never an error
		rec.InsufficientData = true
		if last, ok := bars.Last(); ok {
			rec.CurrentPrice = last.Close
		}
		return rec
	}

	sctx := strategy.Context{
		Ticker:       ticker,
		AssetType:    assetType,
		Bars:         bars,
		Fundamentals: fundamentals,
		Now:          rec.GeneratedAt,
	}

	raw, err := r.engine.Signals(ctx, sctx, r.names)
	if err != nil {
		rec.InsufficientData = true
		return rec
	}
	rec.ContributingSignals = raw

	normalized := make(map[string]float64, len(raw))
	var weightedSum, activeWeight float64
	for _, name := range r.names {
		score, ok := raw[name]
		if !ok {
			continue
		}
		strat, found := r.engine.Get(name)
		if found && !strat.Active() {
			// Inactive strategies contribute nothing and must not
			// dilute the denominator for the active ones.
			continue
		}

		r.history.observe(ticker, name, score)
		z := r.normalize(ticker, name, score)
		normalized[name] = z

		w := r.opts.Weights[name]
		weightedSum += w * z
		activeWeight += w
	}

	var aggregate float64
	if activeWeight > 0 {
		aggregate = weightedSum / activeWeight
	}

	vol := r.annualizedVolatility(bars)
	rec.Volatility = vol
	clamped := clamp(vol, 0, 1)

	rec.Score = aggregate * (1 - r.opts.VolatilityFactor*clamped)
	rec.Recommendation = r.mapAction(rec.Score)
	rec.Confidence = r.confidence(rec.Score, normalized, clamped)

	closes := bars.Closes()
	rec.CurrentPrice = closes[len(closes)-1]
	if len(closes) >= 2 && closes[len(closes)-2] != 0 {
		rec.PriceChangePct = (closes[len(closes)-1] - closes[len(closes)-2]) / closes[len(closes)-2] * 100
	}
	rec.Sparkline = sparkline(closes, 20)
	rec.Guidance = positionGuidance(bars, rec.Recommendation, r.opts.RiskPct, r.opts.Equity)

	return rec
}

// AssetSignals exposes the raw per-strategy signals for one ticker
// without touching the rolling normalization history.
func (r *Recommender) AssetSignals(ctx context.Context, ticker string, assetType core.AssetType) (map[string]float64, error) {
	now := time.Now()
	bars, err := r.provider.FetchHistory(ctx, ticker, assetType, now.AddDate(0, 0, -r.lookbackDays()), now)
	if err != nil {
		return nil, core.WrapError(core.ErrDataGap, err)
	}
	if len(bars) == 0 {
		return nil, core.ErrDataGap
	}

	sctx := strategy.Context{
		Ticker:       ticker,
		AssetType:    assetType,
		Bars:         bars,
		Fundamentals: r.fetchFundamentals(ctx, ticker),
		Now:          now,
	}
	return r.engine.Signals(ctx, sctx, r.names)
}

// normalize converts a raw signal to a z-score against the pair's own
// rolling distribution. Degenerate distributions (too few samples or
// zero spread) fall back to the raw value clipped to [-3,3].
func (r *Recommender) normalize(ticker, name string, score float64) float64 {
	mean, std, n := r.history.stats(ticker, name)
	if n < minSamples || std == 0 {
		return clamp(score, -zClip, zClip)
	}
	return (score - mean) / (std + 1e-8)
}

func (r *Recommender) annualizedVolatility(bars core.Series) float64 {
	returns := indicator.Returns(bars.Closes())
	w := r.opts.VolatilityWindow
	if len(returns) < w {
		return 0
	}
	return indicator.StdDev(returns[len(returns)-w:]) * math.Sqrt(periodsPerYear)
}

func (r *Recommender) mapAction(score float64) core.Action {
	switch {
	case score >= r.opts.BuyThreshold:
		return core.ActionBuy
	case score <= r.opts.SellThreshold:
		return core.ActionSell
	default:
		return core.ActionHold
	}
}

// confidence blends signal strength relative to the buy threshold (up
// to 50), cross-strategy agreement (up to 30), and an inverse
// volatility penalty on a base of 20. Monotone in strength and
// agreement by construction.
func (r *Recommender) confidence(score float64, normalized map[string]float64, vol float64) float64 {
	strength := math.Abs(score) / math.Max(r.opts.BuyThreshold, 1e-8)
	if strength > 2 {
		strength = 2
	}

	var agree, active float64
	for _, z := range normalized {
		active++
		if z*score > 0 {
			agree++
		}
	}
	agreement := 0.0
	if active > 0 {
		agreement = agree / active
	}

	return clamp(strength*25+agreement*30+20-vol*20, 0, 100)
}

func (r *Recommender) fetchFundamentals(ctx context.Context, ticker string) map[string]float64 {
	if r.fundamentals == nil {
		return nil
	}
	f, err := r.fundamentals.Fundamentals(ctx, ticker)
	if err != nil {
		r.logger.Debug("fundamentals unavailable",
			zap.String("ticker", ticker), zap.Error(err))
		return nil
	}
	return f
}

// rank orders recommendations, breaking ties by ticker for determinism.
func rank(recs []core.Recommendation, by RankBy) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		var ka, kb float64
		if by == RankByMagnitude {
			ka, kb = math.Abs(a.Score), math.Abs(b.Score)
		} else {
			ka, kb = a.Score, b.Score
		}
		if ka != kb {
			return ka > kb
		}
		return a.Ticker < b.Ticker
	})
}

func sparkline(closes []float64, n int) []float64 {
	if len(closes) < n {
		n = len(closes)
	}
	out := make([]float64, n)
	copy(out, closes[len(closes)-n:])
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
