// Package interpolate provides piecewise-linear interpolation over sampled
// series. Lookups outside the sampled range clamp to the nearest endpoint
// rather than extrapolating.
package interpolate

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when x and y samples differ in length.
	ErrLengthMismatch = errors.New("interpolate: x and y must have the same length")

	// ErrEmptySeries is returned when no samples are provided.
	ErrEmptySeries = errors.New("interpolate: series must contain at least one sample")
)

// Series is an immutable sampled function. X values are expected in
// ascending order.
type Series struct {
	xs []float64
	ys []float64
}

// NewSeries copies the samples into a Series.
func NewSeries(xs, ys []float64) (*Series, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w (got %d and %d)", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, ErrEmptySeries
	}

	s := &Series{
		xs: make([]float64, len(xs)),
		ys: make([]float64, len(ys)),
	}
	copy(s.xs, xs)
	copy(s.ys, ys)
	return s, nil
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.xs)
}

// At returns the interpolated value at x.
func (s *Series) At(x float64) float64 {
	last := len(s.xs) - 1
	if x <= s.xs[0] {
		return s.ys[0]
	}
	if x >= s.xs[last] {
		return s.ys[last]
	}

	for i := 0; i < last; i++ {
		x0, x1 := s.xs[i], s.xs[i+1]
		if x >= x0 && x <= x1 {
			if x1 == x0 {
				return s.ys[i]
			}
			t := (x - x0) / (x1 - x0)
			return s.ys[i] + t*(s.ys[i+1]-s.ys[i])
		}
	}

	// Only reachable when xs is not sorted.
	return s.ys[0]
}

// Linear interpolates y at x over the given samples. It is the one-shot form
// of NewSeries followed by At, for callers that look up a single value.
func Linear(x float64, xs, ys []float64) (float64, error) {
	s, err := NewSeries(xs, ys)
	if err != nil {
		return 0, err
	}
	return s.At(x), nil
}
