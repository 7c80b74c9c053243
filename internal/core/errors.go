package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrDataGap          = &Error{Code: "DATA_GAP", Message: "no usable price history"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for requested window"}
	ErrSeriesOrder      = &Error{Code: "SERIES_ORDER", Message: "price series dates not strictly increasing"}

	// Strategy errors
	ErrStrategyFailed = &Error{Code: "STRATEGY_FAILED", Message: "strategy signal computation failed"}

	// Config errors
	ErrInvalidConfig = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}

	// Backtest errors
	ErrBacktestFailed = &Error{Code: "BACKTEST_FAILED", Message: "backtest has no usable tickers"}
)
