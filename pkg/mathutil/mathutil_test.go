package mathutil

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lo       float64
		hi       float64
		expected float64
	}{
		{"Inside", 1.2, 0.6, 1.5, 1.2},
		{"Below", 0.1, 0.6, 1.5, 0.6},
		{"Above", 2.0, 0.6, 1.5, 1.5},
		{"At lower edge", 0.6, 0.6, 1.5, 0.6},
		{"Negative range", -0.5, -0.07, 0.07, -0.07},
		{"Inverted bounds upper wins", 5, 10, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clamp(tt.value, tt.lo, tt.hi)
			if result != tt.expected {
				t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tt.value, tt.lo, tt.hi, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100, 100.5, 1) {
		t.Errorf("expected 100 and 100.5 to be within 1")
	}
	if WithinTolerance(100, 102, 1) {
		t.Errorf("expected 100 and 102 to be outside 1")
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Zero", 0, true},
		{"Large", 1e300, true},
		{"NaN", math.NaN(), false},
		{"Positive infinity", math.Inf(1), false},
		{"Negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsFinite(tt.input); result != tt.expected {
				t.Errorf("IsFinite(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"Forty percent", 80, 40, 32},
		{"Zero percent", 80, 0, 0},
		{"Full percent", 80, 100, 80},
		{"Fractional", 50, 12.5, 6.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(tt.value, tt.percentage)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ApplyPercentage(%v, %v) = %v, expected %v", tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}
