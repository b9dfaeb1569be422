package engine

import (
	"fmt"
	"strings"
)

// ThresholdMode selects how the acceptable band is adapted from the
// segment-neutral survey baseline.
type ThresholdMode int

const (
	// ModeGlobal applies the survey band unchanged to every segment.
	ModeGlobal ThresholdMode = iota
	// ModeDerived scales the band by the segment's elasticity relative to med.
	ModeDerived
	// ModePerSegment stands in for per-segment survey data with stronger
	// scaling than ModeDerived.
	ModePerSegment

	modeCount = 3
)

// bandScaling holds the elasticity-driven scaling for one mode. Each edge is
// scaled by 1 - clamp(rel*coef, -limit, limit).
type bandScaling struct {
	enabled        bool
	cheapCoef      float64
	cheapLimit     float64
	expensiveCoef  float64
	expensiveLimit float64
}

var modeScaling = [modeCount]bandScaling{
	ModeGlobal:     {},
	ModeDerived:    {enabled: true, cheapCoef: 0.35, cheapLimit: 0.25, expensiveCoef: 0.45, expensiveLimit: 0.30},
	ModePerSegment: {enabled: true, cheapCoef: 0.50, cheapLimit: 0.35, expensiveCoef: 0.60, expensiveLimit: 0.40},
}

var modeNames = [modeCount]string{
	ModeGlobal:     "global",
	ModeDerived:    "derived",
	ModePerSegment: "per-segment",
}

// ThresholdModes returns every mode.
func ThresholdModes() []ThresholdMode {
	return []ThresholdMode{ModeGlobal, ModeDerived, ModePerSegment}
}

// ParseThresholdMode converts a configuration or request value into a mode.
func ParseThresholdMode(value string) (ThresholdMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "global":
		return ModeGlobal, nil
	case "derived":
		return ModeDerived, nil
	case "per-segment", "per_segment", "persegment", "segment":
		return ModePerSegment, nil
	default:
		return 0, fmt.Errorf("unknown threshold mode %q (expected global, derived or per-segment)", value)
	}
}

// Valid reports whether m is one of the enumerated modes.
func (m ThresholdMode) Valid() bool {
	return m >= ModeGlobal && m <= ModePerSegment
}

func (m ThresholdMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText encodes the mode by name.
func (m ThresholdMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid threshold mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText decodes a mode name.
func (m *ThresholdMode) UnmarshalText(text []byte) error {
	parsed, err := ParseThresholdMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
