package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is(t *testing.T) {
	wrapped := WrapError(ErrInsufficientData, fmt.Errorf("need 200 bars, have 50"))

	if !errors.Is(wrapped, ErrInsufficientData) {
		t.Error("wrapped error should match its base by code")
	}
	if errors.Is(wrapped, ErrInvalidConfig) {
		t.Error("wrapped error should not match a different code")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	wrapped := WrapError(ErrBacktestFailed, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestError_Message(t *testing.T) {
	err := WrapError(ErrDataGap, fmt.Errorf("ticker XYZ"))
	msg := err.Error()

	if msg == "" {
		t.Fatal("expected non-empty message")
	}
	if msg != "[DATA_GAP] no usable price history: ticker XYZ" {
		t.Errorf("unexpected message: %s", msg)
	}
}
