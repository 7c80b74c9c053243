package provider

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quantrail/quantrail/internal/core"
)

// Memory is a map-backed price and fundamentals source. It is the
// provider used by tests and by backtests over pre-loaded data.
type Memory struct {
	mu           sync.RWMutex
	series       map[string]core.Series
	fundamentals map[string]map[string]float64
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{
		series:       make(map[string]core.Series),
		fundamentals: make(map[string]map[string]float64),
	}
}

// Add stores price history for a ticker, replacing any previous bars.
// Bars are sorted by date before storage.
func (m *Memory) Add(ticker string, bars core.Series) {
	sorted := make(core.Series, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[ticker] = sorted
}

// SetFundamentals stores fundamental metrics (e.g. "pe") for a ticker.
func (m *Memory) SetFundamentals(ticker string, values map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fundamentals[ticker] = values
}

// FetchHistory returns the stored bars inside [start, end], inclusive.
func (m *Memory) FetchHistory(_ context.Context, ticker string, _ core.AssetType, start, end time.Time) (core.Series, error) {
	m.mu.RLock()
	bars, ok := m.series[ticker]
	m.mu.RUnlock()
	if !ok {
		return nil, core.ErrNoData
	}
	return sliceRange(bars, start, end), nil
}

// Fundamentals returns the stored metrics for a ticker, or ErrNoData.
func (m *Memory) Fundamentals(_ context.Context, ticker string) (map[string]float64, error) {
	m.mu.RLock()
	values, ok := m.fundamentals[ticker]
	m.mu.RUnlock()
	if !ok {
		return nil, core.ErrNoData
	}

	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out, nil
}

// sliceRange cuts a date-sorted series down to [start, end] inclusive.
func sliceRange(bars core.Series, start, end time.Time) core.Series {
	lo := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(start) })
	hi := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(end) })
	if lo >= hi {
		return core.Series{}
	}
	return bars[lo:hi:hi]
}
