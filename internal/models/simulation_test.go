package models

import (
	"testing"
)

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobStatusPending, JobStatusRunning, true},
		{JobStatusRunning, JobStatusCompleted, true},
		{JobStatusRunning, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusPending, JobStatusFailed, false},
		{JobStatusRunning, JobStatusPending, false},
		{JobStatusRunning, JobStatusRunning, false},
		{JobStatusCompleted, JobStatusRunning, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusFailed, JobStatusRunning, false},
		{JobStatusFailed, JobStatusCompleted, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}

	for _, s := range []JobStatus{JobStatusCompleted, JobStatusFailed} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
	for _, s := range []JobStatus{JobStatusPending, JobStatusRunning} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestGarchPayloadNormalization(t *testing.T) {
	r := &GarchResult{
		Volatility: []float64{1, 2, 3},
		LastPrice:  100.456,
	}
	p := r.Payload()

	if p.Type != ModelTypeGARCH {
		t.Fatalf("unexpected type %s", p.Type)
	}
	if len(p.Dates) != 3 || p.Dates[0] != "+1d" || p.Dates[2] != "+3d" {
		t.Fatalf("unexpected dates %v", p.Dates)
	}
	for i, price := range p.Prices {
		if price != 100.456 {
			t.Fatalf("prices[%d] must repeat the last price, got %f", i, price)
		}
	}
	if p.ConfidenceInterval != nil {
		t.Fatal("volatility payloads carry no confidence interval")
	}
	if p.Metrics.AvgVolatility == nil || *p.Metrics.AvgVolatility != 2 {
		t.Fatalf("unexpected Avg_Volatility %v", p.Metrics.AvgVolatility)
	}
	if p.Metrics.CurrentPrice == nil || *p.Metrics.CurrentPrice != 100.46 {
		t.Fatalf("Current_Price must round to cents, got %v", p.Metrics.CurrentPrice)
	}
	if p.Metrics.TargetPrice != nil || p.Metrics.Trend != "" {
		t.Fatal("volatility payloads carry no price-path metrics")
	}
}

func TestArimaPayloadNormalization(t *testing.T) {
	r := &ArimaResult{
		Prices: []float64{100, 105, 98.333},
		Upper:  []float64{110, 115, 108},
		Lower:  []float64{90, 95, 88},
	}
	p := r.Payload()

	if p.Type != ModelTypeARIMA {
		t.Fatalf("unexpected type %s", p.Type)
	}
	for i, v := range p.Volatility {
		if v != 0 {
			t.Fatalf("volatility[%d] must be zero, got %f", i, v)
		}
	}
	if p.ConfidenceInterval == nil {
		t.Fatal("price-path payloads must carry a confidence interval")
	}
	if len(p.ConfidenceInterval.Upper) != 3 || len(p.ConfidenceInterval.Lower) != 3 {
		t.Fatalf("band lengths must match the horizon")
	}
	if p.Metrics.Trend != "Bearish" {
		t.Fatalf("path ending below its start must be Bearish, got %q", p.Metrics.Trend)
	}
	if p.Metrics.TargetPrice == nil || *p.Metrics.TargetPrice != 98.33 {
		t.Fatalf("Target_Price must round to cents, got %v", p.Metrics.TargetPrice)
	}
	if p.Metrics.AvgVolatility != nil || p.Metrics.CurrentPrice != nil {
		t.Fatal("price-path payloads carry no volatility metrics")
	}

	up := &ArimaResult{Prices: []float64{100, 101}, Upper: []float64{105, 106}, Lower: []float64{95, 96}}
	if got := up.Payload().Metrics.Trend; got != "Bullish" {
		t.Fatalf("rising path must be Bullish, got %q", got)
	}
}
