package strategy

import (
	"time"

	"github.com/quantrail/quantrail/internal/core"
)

// Config holds per-strategy configuration
type Config struct {
	Enabled bool
	Weight  float64
	Params  map[string]any
}

// Context provides data to strategies. Bars is the full price history
// available as of Now; strategies must not assume any minimum length.
type Context struct {
	Ticker       string
	AssetType    core.AssetType
	Bars         core.Series
	Fundamentals map[string]float64
	Now          time.Time
}

// Strategy converts price history into one directional signal.
// Sign indicates direction, magnitude indicates strength; the scale is
// strategy-specific and normalized by the recommender, not here.
type Strategy interface {
	Name() string
	Description() string
	RequiredBars() int
	Init(cfg Config) error

	// Active reports whether the strategy can currently produce
	// meaningful signals. An inactive strategy (e.g. a classifier
	// without a fitted model) still returns 0 from Signal but must be
	// excluded from aggregation weight renormalization.
	Active() bool

	// Signal returns the raw score for the given context. Strategies
	// degrade to 0 (neutral) on short histories instead of failing.
	Signal(ctx Context) (float64, error)
}
