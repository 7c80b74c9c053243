package backtest

import (
	"fmt"
	"time"

	"github.com/quantrail/quantrail/internal/core"
)

// Weighting selects how capital is spread across selected instruments.
type Weighting string

const (
	WeightEqual Weighting = "equal"
	WeightScore Weighting = "score"
)

// Status is the terminal state of a run. A run either fully completes
// or is rejected up front; there are no partial results.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Config is the immutable input of one backtest run.
type Config struct {
	Tickers         []string
	Strategies      []string // subset of configured strategies; empty means all
	AssetType       core.AssetType
	Start           time.Time
	End             time.Time
	RebalancePeriod int     // trading periods between rebalances
	TopN            int     // instruments held after each rebalance
	InitialCapital  float64
	Commission      float64 // proportional cost on traded notional
	Slippage        float64 // proportional cost on traded notional
	Weighting       Weighting
	RiskFreeRate    float64 // annualized, for the Sharpe ratio
}

// Validate rejects malformed configuration before any computation.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return core.WrapError(core.ErrInvalidConfig, fmt.Errorf("no tickers"))
	}
	if c.End.Before(c.Start) {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("end %s before start %s", c.End.Format("2006-01-02"), c.Start.Format("2006-01-02")))
	}
	if c.RebalancePeriod < 1 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("rebalance period %d must be positive", c.RebalancePeriod))
	}
	if c.TopN < 1 {
		return core.WrapError(core.ErrInvalidConfig, fmt.Errorf("top_n %d must be positive", c.TopN))
	}
	if c.InitialCapital <= 0 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("initial capital %.2f must be positive", c.InitialCapital))
	}
	if c.Commission < 0 || c.Commission >= 0.5 || c.Slippage < 0 || c.Slippage >= 0.5 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("commission %.4f / slippage %.4f out of range", c.Commission, c.Slippage))
	}
	if c.Weighting != "" && c.Weighting != WeightEqual && c.Weighting != WeightScore {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("unknown weighting %q", c.Weighting))
	}
	return nil
}

// Trade is one executed simulated order.
type Trade struct {
	Date     time.Time
	Ticker   string
	Action   core.Action
	Price    float64
	Quantity float64
	Value    float64
}

// EquityPoint is one mark-to-market observation of portfolio value.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

// Stats holds the performance statistics of a completed run.
type Stats struct {
	TotalReturn      float64
	AnnualizedReturn float64
	SharpeRatio      float64
	MaxDrawdown      float64
	Volatility       float64
	WinRate          float64 // fraction of rebalance intervals with positive return
}

// Result is the complete output of one run, owned by the caller.
type Result struct {
	RunID       string
	Status      Status
	Config      Config
	EquityCurve []EquityPoint
	Trades      []Trade
	Stats       Stats
	StartedAt   time.Time
	FinishedAt  time.Time
}
