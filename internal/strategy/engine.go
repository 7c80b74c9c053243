package strategy

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Engine manages registered strategies and fans signal computation out
// over them.
type Engine struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	logger     *zap.Logger
}

// NewEngine creates a new strategy engine
func NewEngine(logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{
		strategies: make(map[string]Strategy),
		logger:     l,
	}
}

// Register adds a strategy to the engine
func (e *Engine) Register(s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies[s.Name()] = s
}

// Get retrieves a strategy by name
func (e *Engine) Get(name string) (Strategy, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.strategies[name]
	return s, ok
}

// GetAll returns all registered strategies
func (e *Engine) GetAll() []Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]Strategy, 0, len(e.strategies))
	for _, s := range e.strategies {
		result = append(result, s)
	}
	return result
}

// MaxRequiredBars returns the largest history requirement among the
// named strategies, used by callers to size their lookback fetch.
func (e *Engine) MaxRequiredBars(names []string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	maxBars := 0
	for _, name := range names {
		if s, ok := e.strategies[name]; ok && s.RequiredBars() > maxBars {
			maxBars = s.RequiredBars()
		}
	}
	return maxBars
}

// Signals computes the raw signal of each named strategy for the given
// context. A strategy failure is absorbed as a neutral 0 so one bad
// strategy never poisons the batch; unknown names are skipped.
func (e *Engine) Signals(ctx context.Context, sctx Context, names []string) (map[string]float64, error) {
	signals := make(map[string]float64, len(names))

	for _, name := range names {
		select {
		case <-ctx.Done():
			return signals, ctx.Err()
		default:
		}

		s, ok := e.Get(name)
		if !ok {
			e.logger.Warn("unknown strategy requested", zap.String("strategy", name))
			continue
		}

		score, err := s.Signal(sctx)
		if err != nil {
			e.logger.Warn("strategy signal failed",
				zap.String("strategy", name),
				zap.String("ticker", sctx.Ticker),
				zap.Error(err),
			)
			score = 0
		}
		signals[name] = score
	}

	return signals, nil
}
