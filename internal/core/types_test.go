package core

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestSeries_Before(t *testing.T) {
	s := Series{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 101},
		{Date: day(2), Close: 102},
		{Date: day(3), Close: 103},
	}

	prefix := s.Before(day(2))
	if len(prefix) != 2 {
		t.Fatalf("expected 2 bars before cutoff, got %d", len(prefix))
	}
	if prefix[len(prefix)-1].Close != 101 {
		t.Errorf("last bar before cutoff = %.0f, want 101", prefix[len(prefix)-1].Close)
	}

	// Cutoff before the first bar yields an empty prefix
	if got := s.Before(day(-1)); len(got) != 0 {
		t.Errorf("expected empty prefix, got %d bars", len(got))
	}

	// Cutoff after the last bar yields the whole series
	if got := s.Before(day(10)); len(got) != 4 {
		t.Errorf("expected full series, got %d bars", len(got))
	}
}

func TestSeries_Validate(t *testing.T) {
	good := Series{{Date: day(0)}, {Date: day(1)}, {Date: day(3)}}
	if err := good.Validate(); err != nil {
		t.Errorf("gapped but increasing series should be valid: %v", err)
	}

	dup := Series{{Date: day(0)}, {Date: day(0)}}
	if err := dup.Validate(); err == nil {
		t.Error("duplicate dates should fail validation")
	}
}

func TestSeries_Last(t *testing.T) {
	if _, ok := (Series{}).Last(); ok {
		t.Error("empty series should report no last bar")
	}

	s := Series{{Date: day(0), Close: 9}, {Date: day(1), Close: 10}}
	last, ok := s.Last()
	if !ok || last.Close != 10 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}
