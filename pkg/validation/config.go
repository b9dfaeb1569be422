// Package validation provides configuration validation utilities.
package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/price-sensitivity/pkg/constants"
)

var (
	// ErrInvalidPriceRange is returned when a simulated price range is unusable.
	ErrInvalidPriceRange = errors.New("invalid price range")

	// ErrInvalidStep is returned for a non-positive curve sampling step or one
	// too fine for the range.
	ErrInvalidStep = errors.New("invalid price step")
)

// ScenarioInputs are the user-controlled values of one pricing scenario.
type ScenarioInputs struct {
	Name            string
	Price           float64
	CompetitorPrice float64
	CostPct         float64
}

// ValidatePriceRange checks the simulated price range and sampling step.
func ValidatePriceRange(priceMin, priceMax, step float64) error {
	if math.IsNaN(priceMin) || math.IsNaN(priceMax) || math.IsInf(priceMin, 0) || math.IsInf(priceMax, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidPriceRange)
	}
	if priceMin < 0 {
		return fmt.Errorf("%w: priceMin %v is negative", ErrInvalidPriceRange, priceMin)
	}
	if priceMax-priceMin < 1 {
		return fmt.Errorf("%w: priceMax %v must exceed priceMin %v by at least 1", ErrInvalidPriceRange, priceMax, priceMin)
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}
	if points := math.Floor((priceMax-priceMin)/step+1e-9) + 1; points > constants.MaxGridPoints {
		return fmt.Errorf("%w: %v yields %.0f prices over %v..%v, limit %d",
			ErrInvalidStep, step, points, priceMin, priceMax, constants.MaxGridPoints)
	}
	return nil
}

// ValidateScenario returns warnings for inputs that are accepted but
// produce degenerate or surprising results.
func ValidateScenario(s ScenarioInputs, priceMin, priceMax float64) []string {
	var warnings []string

	if s.CostPct < 0 || s.CostPct > 100 {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s' cost percentage %.1f is outside [0, 100]",
			s.Name, s.CostPct))
	}

	if s.CompetitorPrice <= 0 {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s' competitor price %.2f is not positive - demand falls back to the baseline",
			s.Name, s.CompetitorPrice))
	}

	if s.Price < priceMin || s.Price > priceMax {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s' price %.2f is outside the simulated range (%.2f to %.2f)",
			s.Name, s.Price, priceMin, priceMax))
	}

	return warnings
}

// ValidateAll validates every scenario and returns the combined warnings.
func ValidateAll(scenarios []ScenarioInputs, priceMin, priceMax float64) []string {
	var warnings []string
	for _, s := range scenarios {
		warnings = append(warnings, ValidateScenario(s, priceMin, priceMax)...)
	}
	return warnings
}
