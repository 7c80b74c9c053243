package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/quantrail/quantrail/internal/core"
)

func TestMACD_Alignment(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + math.Sin(float64(i)/5)*10
	}

	result, err := MACD(prices, 12, 26, 9)
	if err != nil {
		t.Fatalf("MACD() error = %v", err)
	}

	if want := len(prices) - 26 + 1; len(result.MACD) != want {
		t.Errorf("MACD len = %d, want %d", len(result.MACD), want)
	}
	if want := len(result.MACD) - 9 + 1; len(result.Signal) != want {
		t.Errorf("Signal len = %d, want %d", len(result.Signal), want)
	}
	if len(result.Hist) != len(result.Signal) {
		t.Errorf("Hist len = %d, want %d", len(result.Hist), len(result.Signal))
	}

	// Histogram is macd minus signal, on the aligned tail
	for i := range result.Signal {
		want := result.MACD[i+9-1] - result.Signal[i]
		if math.Abs(result.Hist[i]-want) > 1e-9 {
			t.Errorf("Hist[%d] = %f, want %f", i, result.Hist[i], want)
		}
	}
}

func TestMACD_ConstantPrices(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 42
	}

	result, err := MACD(prices, 12, 26, 9)
	if err != nil {
		t.Fatalf("MACD() error = %v", err)
	}
	for i, v := range result.MACD {
		if math.Abs(v) > 1e-9 {
			t.Errorf("MACD[%d] = %f on a constant series, want 0", i, v)
		}
	}
	for i, v := range result.Hist {
		if math.Abs(v) > 1e-9 {
			t.Errorf("Hist[%d] = %f on a constant series, want 0", i, v)
		}
	}
}

func TestMACD_InsufficientData(t *testing.T) {
	_, err := MACD(make([]float64, 30), 12, 26, 9)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestMACD_InvalidSpans(t *testing.T) {
	_, err := MACD(make([]float64, 60), 26, 12, 9)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("fast >= slow should be rejected, got %v", err)
	}
}
