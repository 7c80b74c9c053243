package app

import (
	"context"
	"time"

	"github.com/quantrail/quantrail/internal/backtest"
	"github.com/quantrail/quantrail/internal/config"
	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/metrics"
	"github.com/quantrail/quantrail/internal/provider"
	"github.com/quantrail/quantrail/internal/recommend"
	"github.com/quantrail/quantrail/internal/strategy"
	"github.com/quantrail/quantrail/internal/strategy/classifier"
	"github.com/quantrail/quantrail/internal/strategy/ma_crossover"
	"github.com/quantrail/quantrail/internal/strategy/multi_factor"
	"github.com/quantrail/quantrail/internal/strategy/rsi_reversion"
	"github.com/quantrail/quantrail/internal/strategy/vol_breakout"
	"github.com/quantrail/quantrail/internal/strategy/volume_anomaly"
	"go.uber.org/zap"
)

// App is the main application orchestrator. It wires configuration into
// the strategy engine, the recommender and the backtester, and exposes
// the library surface the CLI is built on.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	engine     *strategy.Engine
	rec        *recommend.Recommender
	backtester *backtest.Backtester
	metrics    *metrics.Registry
}

// Option customizes App construction.
type Option func(*options)

type options struct {
	provider     recommend.PriceProvider
	fundamentals recommend.FundamentalProvider
	model        classifier.Model
}

// WithProvider overrides the configured price source.
func WithProvider(p recommend.PriceProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithFundamentals attaches a fundamentals source for the multi-factor
// strategy's value leg.
func WithFundamentals(p recommend.FundamentalProvider) Option {
	return func(o *options) { o.fundamentals = p }
}

// WithModel supplies a trained model for the classifier strategy.
// Without one the strategy stays inactive.
func WithModel(m classifier.Model) Option {
	return func(o *options) { o.model = m }
}

// New creates an App from a validated configuration.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	engine := strategy.NewEngine(logger)
	strategies := []strategy.Strategy{
		ma_crossover.New(50, 200),
		rsi_reversion.New(14),
		multi_factor.New(126),
		volume_anomaly.New(20),
		vol_breakout.New(14, 1.5),
		classifier.New(o.model),
	}
	for _, s := range strategies {
		sc := cfg.Strategies[s.Name()]
		if err := s.Init(strategy.Config{
			Enabled: sc.Enabled,
			Weight:  sc.Weight,
			Params:  sc.Params,
		}); err != nil {
			return nil, err
		}
		engine.Register(s)
	}

	priceSource := o.provider
	if priceSource == nil {
		switch cfg.Data.Source {
		case "csv":
			priceSource = provider.NewCSV(cfg.Data.Dir)
		default:
			priceSource = provider.NewMemory()
		}
	}

	recOpts := recommend.Options{
		Weights:          cfg.Weights(),
		BuyThreshold:     cfg.Recommender.BuyThreshold,
		SellThreshold:    cfg.Recommender.SellThreshold,
		VolatilityFactor: cfg.Recommender.VolatilityFactor,
		Lookback:         cfg.Recommender.Lookback,
		VolatilityWindow: cfg.Recommender.VolatilityWindow,
		MinHistory:       cfg.Recommender.MinHistory,
		RiskPct:          cfg.Recommender.RiskPct,
		Equity:           cfg.Recommender.Equity,
	}
	rec, err := recommend.New(priceSource, engine, recOpts, logger)
	if err != nil {
		return nil, err
	}
	if o.fundamentals != nil {
		rec.WithFundamentals(o.fundamentals)
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		engine:     engine,
		rec:        rec,
		backtester: backtest.New(priceSource, engine, recOpts, logger),
		metrics:    metrics.NewRegistry(),
	}, nil
}

// GetRecommendations evaluates the given tickers and returns ranked,
// confidence-scored recommendations.
func (a *App) GetRecommendations(ctx context.Context, tickers []string, assetType core.AssetType) ([]core.Recommendation, error) {
	start := time.Now()
	recs, err := a.rec.Recommend(ctx, tickers, assetType, recommend.RankByScore)
	if err != nil {
		return nil, err
	}

	a.metrics.RecordEvaluation(time.Since(start).Seconds())
	for _, rec := range recs {
		a.metrics.RecordRecommendation(string(rec.Recommendation))
		if rec.InsufficientData {
			a.metrics.RecordTickerSkipped()
			continue
		}
		for name := range rec.ContributingSignals {
			a.metrics.RecordSignal(name)
		}
	}
	return recs, nil
}

// GetAssetSignals returns the raw per-strategy signals for one ticker,
// without touching the recommender's signal history.
func (a *App) GetAssetSignals(ctx context.Context, ticker string) (map[string]float64, error) {
	return a.rec.AssetSignals(ctx, ticker, core.AssetStocks)
}

// RunBacktest executes a backtest, filling unset fields of cfg from the
// application defaults.
func (a *App) RunBacktest(ctx context.Context, cfg backtest.Config) (*backtest.Result, error) {
	defaults := a.cfg.Backtest
	if cfg.RebalancePeriod == 0 {
		cfg.RebalancePeriod = defaults.RebalancePeriod
	}
	if cfg.TopN == 0 {
		cfg.TopN = defaults.TopN
	}
	if cfg.InitialCapital == 0 {
		cfg.InitialCapital = defaults.InitialCapital
	}
	if cfg.Commission == 0 {
		cfg.Commission = defaults.Commission
	}
	if cfg.Slippage == 0 {
		cfg.Slippage = defaults.Slippage
	}
	if cfg.Weighting == "" {
		cfg.Weighting = backtest.Weighting(defaults.Weighting)
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = defaults.RiskFreeRate
	}
	if cfg.AssetType == "" {
		cfg.AssetType = core.AssetStocks
	}

	start := time.Now()
	result, err := a.backtester.Run(ctx, cfg)
	if err != nil {
		a.metrics.RecordBacktest(string(backtest.StatusFailed), time.Since(start).Seconds())
		return nil, err
	}
	a.metrics.RecordBacktest(string(result.Status), time.Since(start).Seconds())

	a.logger.Info("backtest finished",
		zap.String("run_id", result.RunID),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("total_return", result.Stats.TotalReturn),
	)
	return result, nil
}

// Strategies returns the registered strategies.
func (a *App) Strategies() []strategy.Strategy {
	return a.engine.GetAll()
}

// Metrics exposes the Prometheus registry for scraping.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}
