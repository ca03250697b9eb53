package odds

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestComputeDifference(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		name    string
		lay     float64
		back    float64
		wantAbs float64
		wantPct float64
	}{
		{"ten percent up", 2.00, 2.20, 0.20, 10.0},
		{"equal prices", 2.00, 2.00, 0, 0},
		{"back below lay", 2.00, 1.90, -0.10, -5.0},
		{"small gap", 1.50, 1.53, 0.03, 2.0},
		{"zero lay invalid", 0, 2.00, 0, 0},
		{"negative back invalid", 2.00, -1, 0, 0},
		{"lay above cap invalid", 1000, 2.00, 0, 0},
		{"back above cap invalid", 2.00, 999.01, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, pct := c.ComputeDifference(tt.lay, tt.back)
			if math.Abs(abs-tt.wantAbs) > tolerance {
				t.Errorf("absolute = %v, want %v", abs, tt.wantAbs)
			}
			if math.Abs(pct-tt.wantPct) > tolerance {
				t.Errorf("percentage = %v, want %v", pct, tt.wantPct)
			}
		})
	}
}

func TestIsAcceptableBand(t *testing.T) {
	c := New(Config{}) // defaults: band, [-1, +30]

	tests := []struct {
		name string
		lay  float64
		back float64
		want bool
	}{
		{"inside band", 2.00, 2.20, true},
		{"equal prices zero pct", 2.00, 2.00, true},
		{"lower boundary inclusive", 100, 99, true},  // exactly -1%
		{"upper boundary inclusive", 100, 130, true}, // exactly +30%
		{"below lower boundary", 2.00, 1.95, false},     // -2.5%
		{"above upper boundary", 2.00, 2.61, false},     // +30.5%
		{"invalid lay", 0, 2.00, false},
		{"invalid back", 2.00, 0, false},
		{"odds above cap", 2.00, 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsAcceptable(tt.lay, tt.back); got != tt.want {
				t.Errorf("IsAcceptable(%v, %v) = %v, want %v", tt.lay, tt.back, got, tt.want)
			}
		})
	}
}

func TestIsAcceptableCustomBand(t *testing.T) {
	c := New(Config{Policy: PolicyBand, MinPct: 2.0, MaxPct: 15.0})

	if c.IsAcceptable(2.00, 2.02) {
		t.Error("1% gap should be below a 2% floor")
	}
	if !c.IsAcceptable(2.00, 2.04) {
		t.Error("2% gap should clear a 2% floor")
	}
	if c.IsAcceptable(2.00, 2.40) {
		t.Error("20% gap should exceed a 15% ceiling")
	}
}

func TestIsAcceptableLayBack(t *testing.T) {
	t.Run("plain lay le back", func(t *testing.T) {
		c := New(Config{Policy: PolicyLayBack})
		if !c.IsAcceptable(2.00, 2.00) {
			t.Error("equal prices should be acceptable")
		}
		if !c.IsAcceptable(2.00, 2.10) {
			t.Error("back above lay should be acceptable")
		}
		if c.IsAcceptable(2.10, 2.00) {
			t.Error("lay above back should be rejected")
		}
	})

	t.Run("minimum gaps", func(t *testing.T) {
		c := New(Config{Policy: PolicyLayBack, MinDiffAbs: 0.05, MinDiffPct: 2.0})
		if c.IsAcceptable(2.00, 2.02) {
			t.Error("0.02 gap should fail the 0.05 absolute minimum")
		}
		if c.IsAcceptable(3.00, 3.05) {
			t.Error("1.67% gap should fail the 2% percentage minimum")
		}
		if !c.IsAcceptable(2.00, 2.10) {
			t.Error("0.10 / 5% gap should clear both minimums")
		}
	})
}

func TestFormatDifference(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		name string
		lay  float64
		back float64
		want string
	}{
		{"positive", 2.00, 2.20, "+0.2000 (+10.00%)"},
		{"zero", 2.00, 2.00, "+0.0000 (+0.00%)"},
		{"negative", 2.00, 1.90, "-0.1000 (-5.00%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.FormatDifference(tt.lay, tt.back); got != tt.want {
				t.Errorf("FormatDifference(%v, %v) = %q, want %q", tt.lay, tt.back, got, tt.want)
			}
		})
	}
}

func TestDifference(t *testing.T) {
	c := New(Config{})
	d := c.Difference(2.00, 2.20)
	if math.Abs(d.Absolute-0.20) > tolerance || math.Abs(d.Percentage-10.0) > tolerance {
		t.Errorf("Difference = %+v, want {0.20 10}", d)
	}
}
