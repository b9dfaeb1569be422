// Package optimizer locates the price that maximizes an arbitrary
// price-to-value function using a deterministic grid search.
package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/price-sensitivity/pkg/constants"
	"github.com/iwvelando/price-sensitivity/pkg/optimization"
)

var (
	// ErrInvalidStep is returned when the grid step is not strictly positive.
	ErrInvalidStep = errors.New("optimizer: step must be greater than zero")

	// ErrInvalidRange is returned when the search bounds are reversed or not finite.
	ErrInvalidRange = errors.New("optimizer: min must not exceed max")

	// ErrGridTooLarge is returned when the step is too fine for the range.
	ErrGridTooLarge = errors.New("optimizer: price grid exceeds the point limit")
)

// ValueFunc maps a price to the quantity being maximized.
type ValueFunc func(price float64) float64

// GridSize returns how many points FindPeak evaluates for the given bounds.
func GridSize(min, max, step float64) (int, error) {
	if err := validate(min, max, step); err != nil {
		return 0, err
	}
	// The epsilon keeps max on the grid when (max-min)/step lands a hair
	// below an integer. Counting in float64 keeps the limit check ahead of
	// the int conversion.
	count := math.Floor((max-min)/step+1e-9) + 1
	if count > constants.MaxGridPoints {
		return 0, fmt.Errorf("%w (%v..%v at step %v needs %.0f points, limit %d)",
			ErrGridTooLarge, min, max, step, count, constants.MaxGridPoints)
	}
	return int(count), nil
}

// FindPeak evaluates fn at min, min+step, ... up to max and returns the
// first point holding the maximum value. Ties keep the earlier, lower price.
func FindPeak(fn ValueFunc, min, max, step float64) (optimization.PeakPoint, error) {
	if fn == nil {
		return optimization.PeakPoint{}, fmt.Errorf("optimizer: value function cannot be nil")
	}
	n, err := GridSize(min, max, step)
	if err != nil {
		return optimization.PeakPoint{}, err
	}

	best := optimization.PeakPoint{Price: min, Value: fn(min)}
	for i := 1; i < n; i++ {
		p := min + float64(i)*step
		if v := fn(p); v > best.Value {
			best = optimization.PeakPoint{Price: p, Value: v}
		}
	}
	return best, nil
}

// Peaks searches the revenue and profit curves over the same grid.
func Peaks(revenue, profit ValueFunc, min, max, step float64) (optimization.Summary, error) {
	revenuePeak, err := FindPeak(revenue, min, max, step)
	if err != nil {
		return optimization.Summary{}, fmt.Errorf("revenue peak: %w", err)
	}
	profitPeak, err := FindPeak(profit, min, max, step)
	if err != nil {
		return optimization.Summary{}, fmt.Errorf("profit peak: %w", err)
	}
	n, _ := GridSize(min, max, step)
	return optimization.Summary{
		Revenue:     revenuePeak,
		Profit:      profitPeak,
		Evaluations: 2 * n,
	}, nil
}

func validate(min, max, step float64) error {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return fmt.Errorf("%w (got %v)", ErrInvalidStep, step)
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return fmt.Errorf("%w (bounds must be finite, got %v..%v)", ErrInvalidRange, min, max)
	}
	if min > max {
		return fmt.Errorf("%w (got %v > %v)", ErrInvalidRange, min, max)
	}
	return nil
}
