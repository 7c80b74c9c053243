package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/quantrail/quantrail/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Strategies  map[string]StrategyConfig `mapstructure:"strategies"`
	Recommender RecommenderConfig         `mapstructure:"recommender"`
	Backtest    BacktestConfig            `mapstructure:"backtest"`
	Data        DataConfig                `mapstructure:"data"`
	Metrics     MetricsConfig             `mapstructure:"metrics"`
	Logging     LoggingConfig             `mapstructure:"logging"`
}

type StrategyConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Weight  float64        `mapstructure:"weight"`
	Params  map[string]any `mapstructure:"params"`
}

type RecommenderConfig struct {
	BuyThreshold     float64 `mapstructure:"buy_threshold"`
	SellThreshold    float64 `mapstructure:"sell_threshold"`
	VolatilityFactor float64 `mapstructure:"volatility_factor"`
	Lookback         int     `mapstructure:"lookback"`
	VolatilityWindow int     `mapstructure:"volatility_window"`
	MinHistory       int     `mapstructure:"min_history"`
	RiskPct          float64 `mapstructure:"risk_pct"`
	Equity           float64 `mapstructure:"equity"`
}

type BacktestConfig struct {
	RebalancePeriod int     `mapstructure:"rebalance_period"`
	TopN            int     `mapstructure:"top_n"`
	InitialCapital  float64 `mapstructure:"initial_capital"`
	Commission      float64 `mapstructure:"commission"`
	Slippage        float64 `mapstructure:"slippage"`
	RiskFreeRate    float64 `mapstructure:"risk_free_rate"`
	Weighting       string  `mapstructure:"weighting"` // "equal" or "score"
}

type DataConfig struct {
	Source string `mapstructure:"source"` // "csv"
	Dir    string `mapstructure:"dir"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Strategies: map[string]StrategyConfig{
			"ma_crossover": {
				Enabled: true,
				Weight:  1.0,
				Params:  map[string]any{"short_window": 50, "long_window": 200},
			},
			"rsi_mean_reversion": {
				Enabled: true,
				Weight:  1.0,
				Params:  map[string]any{"period": 14},
			},
			"multi_factor": {
				Enabled: true,
				Weight:  1.5,
				Params:  map[string]any{"momentum_window": 126},
			},
			"volume_anomaly": {
				Enabled: true,
				Weight:  0.5,
				Params:  map[string]any{"lookback": 20},
			},
			"volatility_breakout": {
				Enabled: true,
				Weight:  0.5,
				Params:  map[string]any{"atr_window": 14, "multiplier": 1.5},
			},
			"ml_strategy": {
				Enabled: false,
				Weight:  2.0,
			},
		},
		Recommender: RecommenderConfig{
			BuyThreshold:     0.5,
			SellThreshold:    -0.5,
			VolatilityFactor: 0.5,
			Lookback:         60,
			VolatilityWindow: 20,
			MinHistory:       50,
			RiskPct:          1.0,
			Equity:           10000,
		},
		Backtest: BacktestConfig{
			RebalancePeriod: 5,
			TopN:            3,
			InitialCapital:  100000,
			Commission:      0.001,
			Slippage:        0.0005,
			Weighting:       "equal",
		},
		Data: DataConfig{
			Source: "csv",
			Dir:    "data",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Development: false,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var total float64
	for name, sc := range c.Strategies {
		if sc.Weight < 0 {
			return core.WrapError(core.ErrInvalidConfig,
				fmt.Errorf("strategy %s has negative weight %f", name, sc.Weight))
		}
		if sc.Enabled {
			total += sc.Weight
		}
	}
	if total == 0 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("total weight of enabled strategies is zero"))
	}

	if c.Recommender.SellThreshold >= c.Recommender.BuyThreshold {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("sell_threshold %f must be below buy_threshold %f",
				c.Recommender.SellThreshold, c.Recommender.BuyThreshold))
	}
	if c.Recommender.Lookback < 0 || c.Recommender.VolatilityWindow < 0 || c.Recommender.MinHistory < 0 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("recommender windows cannot be negative"))
	}

	bt := c.Backtest
	if bt.RebalancePeriod < 1 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("rebalance_period must be at least 1, got %d", bt.RebalancePeriod))
	}
	if bt.TopN < 1 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("top_n must be at least 1, got %d", bt.TopN))
	}
	if bt.InitialCapital <= 0 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("initial_capital must be positive, got %f", bt.InitialCapital))
	}
	if bt.Commission < 0 || bt.Commission >= 0.5 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("commission must be in [0, 0.5), got %f", bt.Commission))
	}
	if bt.Slippage < 0 || bt.Slippage >= 0.5 {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("slippage must be in [0, 0.5), got %f", bt.Slippage))
	}
	if bt.Weighting != "equal" && bt.Weighting != "score" {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("weighting must be equal or score, got %q", bt.Weighting))
	}

	if c.Data.Source != "csv" && c.Data.Source != "memory" {
		return core.WrapError(core.ErrInvalidConfig,
			fmt.Errorf("data source must be csv or memory, got %q", c.Data.Source))
	}

	return nil
}

// Weights returns the aggregation weight of each enabled strategy.
func (c *Config) Weights() map[string]float64 {
	weights := make(map[string]float64)
	for name, sc := range c.Strategies {
		if sc.Enabled && sc.Weight > 0 {
			weights[name] = sc.Weight
		}
	}
	return weights
}
