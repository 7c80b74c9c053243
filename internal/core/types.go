package core

import (
	"sort"
	"time"
)

// AssetType represents the type of financial asset
type AssetType string

const (
	AssetStocks AssetType = "stocks"
	AssetCrypto AssetType = "crypto"
	AssetForex  AssetType = "forex"
)

// Action represents a categorical recommendation
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Bar represents one OHLCV candlestick for one trading period
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Series is a chronological sequence of bars for one ticker.
// Invariant: strictly increasing dates, no duplicates. Gaps are allowed.
type Series []Bar

// Closes extracts the closing prices in order
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Volumes extracts the volumes in order
func (s Series) Volumes() []float64 {
	vols := make([]float64, len(s))
	for i, b := range s {
		vols[i] = float64(b.Volume)
	}
	return vols
}

// Last returns the most recent bar. The second return is false for an
// empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Before returns the prefix of the series with dates strictly before cutoff.
// The series is chronological, so this is a binary search plus a slice.
func (s Series) Before(cutoff time.Time) Series {
	n := sort.Search(len(s), func(i int) bool {
		return !s[i].Date.Before(cutoff)
	})
	return s[:n]
}

// Validate checks the series ordering invariant
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return ErrSeriesOrder
		}
	}
	return nil
}

// PositionGuidance holds ATR-derived sizing suggestions for a
// non-HOLD recommendation.
type PositionGuidance struct {
	RiskPct         float64
	RecommendedSize float64
	StopLoss        float64
	TakeProfit      float64
}

// Recommendation is the ranked, confidence-scored output for one ticker
type Recommendation struct {
	Ticker              string
	AssetType           AssetType
	Score               float64
	Confidence          float64 // 0-100
	Recommendation      Action
	Volatility          float64
	ContributingSignals map[string]float64
	CurrentPrice        float64
	PriceChangePct      float64
	Sparkline           []float64
	Guidance            *PositionGuidance
	InsufficientData    bool
	GeneratedAt         time.Time
}
