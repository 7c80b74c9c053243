package classifier

import (
	"github.com/quantrail/quantrail/internal/indicator"
	"github.com/quantrail/quantrail/internal/strategy"
)

// FeatureCount is the fixed width of the feature vector fed to the model.
const FeatureCount = 5

// Model is the capability boundary to an externally-fitted binary
// classifier. PredictProba returns p(up) in [0,1] for a feature vector.
// Training and loading are the caller's concern; this strategy only
// consumes predictions.
type Model interface {
	PredictProba(features []float64) (float64, error)
}

// Classifier maps a fitted model's up-probability to a signal in [-1,1].
// Without a model the strategy is inactive: it signals 0 and callers
// must exclude it from aggregation weight renormalization.
type Classifier struct {
	model Model
}

// New creates a classifier strategy. A nil model is allowed and leaves
// the strategy inactive.
func New(model Model) *Classifier {
	return &Classifier{model: model}
}

func (c *Classifier) Name() string {
	return "ml_strategy"
}

func (c *Classifier) Description() string {
	return "Classifier probability signal (2*p(up)-1)"
}

func (c *Classifier) RequiredBars() int {
	return 21 // 20 periods of returns plus the current bar
}

func (c *Classifier) Active() bool {
	return c.model != nil
}

func (c *Classifier) Init(cfg strategy.Config) error {
	return nil
}

func (c *Classifier) Signal(ctx strategy.Context) (float64, error) {
	if c.model == nil {
		return 0, nil
	}
	if len(ctx.Bars) < c.RequiredBars() {
		return 0, nil
	}

	proba, err := c.model.PredictProba(Features(ctx.Bars.Closes()))
	if err != nil {
		return 0, err
	}

	if proba < 0 {
		proba = 0
	}
	if proba > 1 {
		proba = 1
	}
	return 2*proba - 1, nil
}

// Features builds the fixed feature vector: 1-period return, 5-period
// return, distance from the 20-period SMA, centered RSI, and 20-period
// return stddev. Missing inputs are zero-filled so the vector width is
// stable.
func Features(closes []float64) []float64 {
	features := make([]float64, FeatureCount)
	n := len(closes)

	if n >= 2 && closes[n-2] != 0 {
		features[0] = (closes[n-1] - closes[n-2]) / closes[n-2]
	}
	if n >= 6 && closes[n-6] != 0 {
		features[1] = (closes[n-1] - closes[n-6]) / closes[n-6]
	}
	if n >= 20 {
		if ma, err := indicator.SMA(closes, 20); err == nil {
			last := ma[len(ma)-1]
			if last != 0 {
				features[2] = (closes[n-1] - last) / last
			}
		}
	}
	if n >= 15 {
		if rsi, err := indicator.RSI(closes, 14); err == nil {
			features[3] = (rsi[len(rsi)-1] - 50) / 50
		}
	}
	if n >= 21 {
		returns := indicator.Returns(closes)
		features[4] = indicator.StdDev(returns[len(returns)-20:])
	}

	return features
}
