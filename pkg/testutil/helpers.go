// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/price-sensitivity/internal/simulate"
)

// FindSimulation finds a simulation by name in the results slice.
// Returns a pointer to the simulation if found, nil otherwise.
func FindSimulation(results []simulate.Simulation, name string) *simulate.Simulation {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// NearlyEqual reports whether a and b differ by at most tol, scaled by the
// larger magnitude when both exceed one.
func NearlyEqual(a, b, tol float64) bool {
	diff := math.Abs(a - b)
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return diff <= tol*scale
}
