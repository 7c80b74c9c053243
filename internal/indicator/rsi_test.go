package indicator

import (
	"errors"
	"testing"

	"github.com/quantrail/quantrail/internal/core"
)

func TestRSI_OutputLength(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	result, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("RSI() error = %v", err)
	}
	if want := len(prices) - 14; len(result) != want {
		t.Errorf("len = %d, want %d", len(result), want)
	}
}

func TestRSI_Extremes(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
		flat[i] = 100
	}

	upRSI, err := RSI(up, 14)
	if err != nil {
		t.Fatalf("RSI() error = %v", err)
	}
	for _, v := range upRSI {
		if v != 100 {
			t.Errorf("all-gain series RSI = %f, want 100", v)
		}
	}

	downRSI, _ := RSI(down, 14)
	for _, v := range downRSI {
		if v != 0 {
			t.Errorf("all-loss series RSI = %f, want 0", v)
		}
	}

	flatRSI, _ := RSI(flat, 14)
	for _, v := range flatRSI {
		if v != 50 {
			t.Errorf("flat series RSI = %f, want 50", v)
		}
	}
}

func TestRSI_Bounds(t *testing.T) {
	prices := []float64{44, 44.5, 43.8, 44.2, 45, 44.7, 45.3, 46, 45.5, 46.2,
		46.8, 46.4, 47, 46.6, 47.2, 46.9, 47.5, 48, 47.6, 48.2}

	result, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("RSI() error = %v", err)
	}
	for i, v := range result {
		if v < 0 || v > 100 {
			t.Errorf("result[%d] = %f out of [0,100]", i, v)
		}
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	prices := make([]float64, 14) // needs window+1
	_, err := RSI(prices, 14)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}
