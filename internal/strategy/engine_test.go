package strategy

import (
	"context"
	"errors"
	"testing"
)

type mockStrategy struct {
	name     string
	score    float64
	required int
	active   bool
	err      error
}

func (m *mockStrategy) Name() string        { return m.name }
func (m *mockStrategy) Description() string { return "mock strategy" }
func (m *mockStrategy) RequiredBars() int   { return m.required }
func (m *mockStrategy) Active() bool        { return m.active }
func (m *mockStrategy) Init(cfg Config) error {
	return nil
}
func (m *mockStrategy) Signal(ctx Context) (float64, error) {
	return m.score, m.err
}

func TestEngine_Signals(t *testing.T) {
	engine := NewEngine()
	engine.Register(&mockStrategy{name: "a", score: 1.5, active: true})
	engine.Register(&mockStrategy{name: "b", score: -0.5, active: true})

	signals, err := engine.Signals(context.Background(), Context{Ticker: "AAPL"}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(signals))
	}
	if signals["a"] != 1.5 || signals["b"] != -0.5 {
		t.Errorf("unexpected signals: %v", signals)
	}
}

func TestEngine_Signals_AbsorbsFailure(t *testing.T) {
	engine := NewEngine()
	engine.Register(&mockStrategy{name: "good", score: 2, active: true})
	engine.Register(&mockStrategy{name: "bad", err: errors.New("boom"), active: true})

	signals, err := engine.Signals(context.Background(), Context{Ticker: "AAPL"}, []string{"good", "bad"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if signals["bad"] != 0 {
		t.Errorf("failed strategy should contribute 0, got %f", signals["bad"])
	}
	if signals["good"] != 2 {
		t.Errorf("healthy strategy should be unaffected, got %f", signals["good"])
	}
}

func TestEngine_Signals_SkipsUnknown(t *testing.T) {
	engine := NewEngine()
	engine.Register(&mockStrategy{name: "known", score: 1, active: true})

	signals, err := engine.Signals(context.Background(), Context{}, []string{"known", "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(signals) != 1 {
		t.Errorf("expected 1 signal, got %d", len(signals))
	}
	if _, ok := signals["missing"]; ok {
		t.Error("unknown strategy should not appear in the result")
	}
}

func TestEngine_MaxRequiredBars(t *testing.T) {
	engine := NewEngine()
	engine.Register(&mockStrategy{name: "short", required: 15})
	engine.Register(&mockStrategy{name: "long", required: 200})

	if got := engine.MaxRequiredBars([]string{"short", "long"}); got != 200 {
		t.Errorf("MaxRequiredBars = %d, want 200", got)
	}
	if got := engine.MaxRequiredBars([]string{"short"}); got != 15 {
		t.Errorf("MaxRequiredBars = %d, want 15", got)
	}
}

func TestEngine_Signals_Cancelled(t *testing.T) {
	engine := NewEngine()
	engine.Register(&mockStrategy{name: "a", score: 1, active: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Signals(ctx, Context{}, []string{"a"}); err == nil {
		t.Error("expected context error")
	}
}
