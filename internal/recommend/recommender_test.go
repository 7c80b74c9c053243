package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/quantrail/quantrail/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStrategy returns a fixed raw score
type stubStrategy struct {
	name   string
	score  float64
	active bool
}

func (s *stubStrategy) Name() string                   { return s.name }
func (s *stubStrategy) Description() string            { return "stub" }
func (s *stubStrategy) RequiredBars() int              { return 1 }
func (s *stubStrategy) Active() bool                   { return s.active }
func (s *stubStrategy) Init(cfg strategy.Config) error { return nil }
func (s *stubStrategy) Signal(ctx strategy.Context) (float64, error) {
	return s.score, nil
}

// fakeProvider serves canned series per ticker
type fakeProvider struct {
	data map[string]core.Series
	err  error
}

func (f *fakeProvider) FetchHistory(ctx context.Context, ticker string, assetType core.AssetType, start, end time.Time) (core.Series, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[ticker], nil
}

func flatSeries(n int, price float64) core.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(core.Series, n)
	for i := range bars {
		bars[i] = core.Bar{Date: base.AddDate(0, 0, i), High: price + 1, Low: price - 1, Close: price, Volume: 1000}
	}
	return bars
}

func newTestRecommender(t *testing.T, weights map[string]float64, strats ...strategy.Strategy) *Recommender {
	t.Helper()
	engine := strategy.NewEngine()
	for _, s := range strats {
		engine.Register(s)
	}
	r, err := New(&fakeProvider{}, engine, Options{Weights: weights}, nil)
	require.NoError(t, err)
	return r
}

func TestNew_RejectsBadConfig(t *testing.T) {
	engine := strategy.NewEngine()

	_, err := New(&fakeProvider{}, engine, Options{Weights: map[string]float64{"a": 0}}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig, "zero total weight must fail eagerly")

	_, err = New(&fakeProvider{}, engine, Options{
		Weights:       map[string]float64{"a": 1},
		BuyThreshold:  0.5,
		SellThreshold: 0.5,
	}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig, "sell >= buy must fail eagerly")

	_, err = New(&fakeProvider{}, engine, Options{Weights: map[string]float64{"a": -1}}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig, "negative weight must fail eagerly")
}

func TestEvaluate_SingleStrategyIdentity(t *testing.T) {
	// With one active strategy and no volatility, the final score is
	// that strategy's normalized value exactly.
	r := newTestRecommender(t,
		map[string]float64{"solo": 1.0},
		&stubStrategy{name: "solo", score: 1.2, active: true},
	)

	rec := r.Evaluate(context.Background(), "AAPL", core.AssetStocks, flatSeries(100, 100), nil)

	// Fresh history: fewer than minSamples, so normalized == raw (clipped)
	assert.InDelta(t, 1.2, rec.Score, 1e-9)
	assert.Equal(t, core.ActionBuy, rec.Recommendation)
	assert.False(t, rec.InsufficientData)
}

func TestEvaluate_WeightOrderInvariant(t *testing.T) {
	build := func(weights map[string]float64) float64 {
		r := newTestRecommender(t, weights,
			&stubStrategy{name: "a", score: 2, active: true},
			&stubStrategy{name: "b", score: -1, active: true},
			&stubStrategy{name: "c", score: 0.5, active: true},
		)
		return r.Evaluate(context.Background(), "X", core.AssetStocks, flatSeries(100, 100), nil).Score
	}

	first := build(map[string]float64{"a": 1, "b": 2, "c": 0.5})
	second := build(map[string]float64{"c": 0.5, "b": 2, "a": 1})
	assert.Equal(t, first, second, "aggregate must not depend on map insertion order")
}

func TestEvaluate_ThresholdBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  core.Action
	}{
		{0.5, core.ActionBuy},   // exactly at buy threshold
		{-0.5, core.ActionSell}, // exactly at sell threshold
		{0.49, core.ActionHold},
		{-0.49, core.ActionHold},
		{0, core.ActionHold},
	}

	for _, tc := range cases {
		r := newTestRecommender(t,
			map[string]float64{"solo": 1.0},
			&stubStrategy{name: "solo", score: tc.score, active: true},
		)
		rec := r.Evaluate(context.Background(), "X", core.AssetStocks, flatSeries(100, 100), nil)
		assert.Equal(t, tc.want, rec.Recommendation, "score %f", tc.score)
	}
}

func TestEvaluate_InactiveExcludedFromDenominator(t *testing.T) {
	// The inactive classifier contributes 0 and must not dilute the
	// active strategy's weight.
	r := newTestRecommender(t,
		map[string]float64{"active": 1.0, "inactive": 1.0},
		&stubStrategy{name: "active", score: 2, active: true},
		&stubStrategy{name: "inactive", score: 0, active: false},
	)

	rec := r.Evaluate(context.Background(), "X", core.AssetStocks, flatSeries(100, 100), nil)
	assert.InDelta(t, 2.0, rec.Score, 1e-9, "inactive strategy diluted the aggregate")
}

func TestEvaluate_InsufficientData(t *testing.T) {
	r := newTestRecommender(t,
		map[string]float64{"solo": 1.0},
		&stubStrategy{name: "solo", score: 3, active: true},
	)

	rec := r.Evaluate(context.Background(), "THIN", core.AssetStocks, flatSeries(10, 100), nil)

	assert.True(t, rec.InsufficientData)
	assert.Equal(t, core.ActionHold, rec.Recommendation)
	assert.Zero(t, rec.Confidence)
	assert.Zero(t, rec.Score)
}

func TestRecommend_BatchSurvivesBadTicker(t *testing.T) {
	engine := strategy.NewEngine()
	engine.Register(&stubStrategy{name: "solo", score: 1, active: true})

	provider := &fakeProvider{data: map[string]core.Series{
		"GOOD": flatSeries(100, 100),
		// "BAD" has no data at all
	}}
	r, err := New(provider, engine, Options{Weights: map[string]float64{"solo": 1}}, nil)
	require.NoError(t, err)

	recs, err := r.Recommend(context.Background(), []string{"GOOD", "BAD"}, core.AssetStocks, RankByScore)
	require.NoError(t, err, "one bad ticker must not fail the batch")
	require.Len(t, recs, 2)

	byTicker := map[string]core.Recommendation{}
	for _, rec := range recs {
		byTicker[rec.Ticker] = rec
	}
	assert.False(t, byTicker["GOOD"].InsufficientData)
	assert.True(t, byTicker["BAD"].InsufficientData)
	assert.Equal(t, core.ActionHold, byTicker["BAD"].Recommendation)
}

func TestRecommend_TieBrokenByTicker(t *testing.T) {
	engine := strategy.NewEngine()
	engine.Register(&stubStrategy{name: "solo", score: 1, active: true})

	provider := &fakeProvider{data: map[string]core.Series{
		"ZZZ": flatSeries(100, 100),
		"AAA": flatSeries(100, 100),
	}}
	r, err := New(provider, engine, Options{Weights: map[string]float64{"solo": 1}}, nil)
	require.NoError(t, err)

	recs, err := r.Recommend(context.Background(), []string{"ZZZ", "AAA"}, core.AssetStocks, RankByScore)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "AAA", recs[0].Ticker, "equal scores rank by ticker")
}

func TestConfidence_Monotone(t *testing.T) {
	r := newTestRecommender(t, map[string]float64{"solo": 1.0},
		&stubStrategy{name: "solo", score: 0, active: true})

	// Monotone in magnitude, all else equal
	low := r.confidence(0.2, map[string]float64{"a": 0.2}, 0)
	high := r.confidence(0.8, map[string]float64{"a": 0.8}, 0)
	assert.Greater(t, high, low)

	// Monotone in agreement, all else equal
	split := r.confidence(0.5, map[string]float64{"a": 0.5, "b": -0.5}, 0)
	aligned := r.confidence(0.5, map[string]float64{"a": 0.5, "b": 0.5}, 0)
	assert.Greater(t, aligned, split)

	// Volatility penalizes
	calm := r.confidence(0.5, map[string]float64{"a": 0.5}, 0)
	noisy := r.confidence(0.5, map[string]float64{"a": 0.5}, 1)
	assert.Greater(t, calm, noisy)
}

func TestAssetSignals_DataGap(t *testing.T) {
	engine := strategy.NewEngine()
	engine.Register(&stubStrategy{name: "solo", score: 1, active: true})

	r, err := New(&fakeProvider{err: errors.New("source down")}, engine,
		Options{Weights: map[string]float64{"solo": 1}}, nil)
	require.NoError(t, err)

	_, err = r.AssetSignals(context.Background(), "AAPL", core.AssetStocks)
	assert.ErrorIs(t, err, core.ErrDataGap)
}

func TestPositionGuidance(t *testing.T) {
	bars := flatSeries(30, 100) // constant 2-point true range -> ATR 2

	g := positionGuidance(bars, core.ActionBuy, 1.0, 10000)
	require.NotNil(t, g)
	assert.InDelta(t, 97, g.StopLoss, 1e-9)    // 100 - 1.5*2
	assert.InDelta(t, 106, g.TakeProfit, 1e-9) // 100 + 3*2
	assert.InDelta(t, 10000*0.01/3, g.RecommendedSize, 1e-9)

	assert.Nil(t, positionGuidance(bars, core.ActionHold, 1.0, 10000), "HOLD gets no guidance")
}
