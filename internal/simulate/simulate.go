// Package simulate runs pricing scenarios against the engine: it samples the
// revenue and profit curves, locates their peaks, derives the acceptable
// price band and summarizes the result for the chosen price.
package simulate

import (
	"errors"
	"fmt"

	"github.com/iwvelando/price-sensitivity/internal/config"
	"github.com/iwvelando/price-sensitivity/internal/engine"
	"github.com/iwvelando/price-sensitivity/internal/optimizer"
	"github.com/iwvelando/price-sensitivity/internal/segment"
	"github.com/iwvelando/price-sensitivity/pkg/constants"
	"github.com/iwvelando/price-sensitivity/pkg/format"
	"github.com/iwvelando/price-sensitivity/pkg/mathutil"
	"github.com/iwvelando/price-sensitivity/pkg/optimization"
	"github.com/iwvelando/price-sensitivity/pkg/validation"
	"go.uber.org/zap"
)

const (
	belowCompetitorHint = "Priced below competitor - good for market penetration"
	aboveCompetitorHint = "Priced above competitor - premium positioning"
)

var (
	// ErrInvalidPrice is returned when the evaluated price is not a finite number.
	ErrInvalidPrice = errors.New("simulate: price must be finite")

	// ErrNilEngine is returned when Run is called without an engine.
	ErrNilEngine = errors.New("simulate: engine cannot be nil")
)

// Params are the inputs of one simulation run.
type Params struct {
	Name            string               `json:"name,omitempty"`
	Price           float64              `json:"price"`
	Segment         segment.Key          `json:"segment"`
	CompetitorPrice float64              `json:"competitorPrice"`
	CostPct         float64              `json:"costPct"`
	Mode            engine.ThresholdMode `json:"thresholdMode"`
	PriceMin        float64              `json:"priceMin"`
	PriceMax        float64              `json:"priceMax"`
	Step            float64              `json:"step"`
}

// DefaultParams returns the inputs used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Price:           constants.DefaultPrice,
		Segment:         segment.Med,
		CompetitorPrice: constants.DefaultCompetitorPrice,
		CostPct:         constants.DefaultCostPct,
		Mode:            engine.ModeDerived,
		PriceMin:        constants.DefaultPriceMin,
		PriceMax:        constants.DefaultPriceMax,
		Step:            constants.DefaultPriceStep,
	}
}

// PricingCurve holds revenue and profit sampled on an ascending price grid.
// All three slices have the same length.
type PricingCurve struct {
	Prices  []float64 `json:"prices"`
	Revenue []float64 `json:"revenue"`
	Profit  []float64 `json:"profit"`
}

// Len returns the number of sampled prices.
func (c PricingCurve) Len() int {
	return len(c.Prices)
}

// Metrics are the modeled outcomes at a single price.
type Metrics struct {
	Demand  float64 `json:"demand"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// Insights are the human-readable hints shown next to a simulation.
type Insights struct {
	RangeHint       string `json:"rangeHint"`
	CompetitionHint string `json:"competitionHint"`
	WithinOptimal   bool   `json:"withinOptimal"`
}

// Simulation is the complete result of one run.
type Simulation struct {
	Name       string                 `json:"name"`
	Params     Params                 `json:"params"`
	Curve      PricingCurve           `json:"curve"`
	Peaks      optimization.Summary   `json:"peaks"`
	Thresholds engine.ThresholdResult `json:"thresholds"`
	Current    Metrics                `json:"current"`
	Insights   Insights               `json:"insights"`
}

// Validate checks that the parameters can be simulated.
func (p Params) Validate() error {
	if !mathutil.IsFinite(p.Price) {
		return fmt.Errorf("%w (got %v)", ErrInvalidPrice, p.Price)
	}
	if !p.Segment.Valid() {
		return fmt.Errorf("%w: %v", engine.ErrInvalidSegment, p.Segment)
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: %v", engine.ErrInvalidMode, p.Mode)
	}
	return validation.ValidatePriceRange(p.PriceMin, p.PriceMax, p.Step)
}

// ParamsFromScenario converts a configured scenario into run parameters.
func ParamsFromScenario(sim config.SimulationConfig, sc config.Scenario) (Params, error) {
	seg, err := sc.SegmentKey()
	if err != nil {
		return Params{}, err
	}
	mode, err := sc.Mode()
	if err != nil {
		return Params{}, err
	}
	return Params{
		Name:            sc.Name,
		Price:           sc.Price,
		Segment:         seg,
		CompetitorPrice: sc.Competitor(),
		CostPct:         sc.Cost(),
		Mode:            mode,
		PriceMin:        sim.PriceMin,
		PriceMax:        sim.PriceMax,
		Step:            sim.Step,
	}, nil
}

// Curve samples revenue and profit at PriceMin + i*Step up to PriceMax.
func Curve(eng *engine.Engine, p Params) (PricingCurve, error) {
	n, err := optimizer.GridSize(p.PriceMin, p.PriceMax, p.Step)
	if err != nil {
		return PricingCurve{}, err
	}

	curve := PricingCurve{
		Prices:  make([]float64, n),
		Revenue: make([]float64, n),
		Profit:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		price := p.PriceMin + float64(i)*p.Step
		curve.Prices[i] = price
		curve.Revenue[i] = eng.CalcRevenue(price, p.Segment, p.CompetitorPrice)
		curve.Profit[i] = eng.CalcProfit(price, p.Segment, p.CompetitorPrice, p.CostPct)
	}
	return curve, nil
}

// BuildInsights summarizes where price sits relative to the optimal price
// and the competitor.
func BuildInsights(price, competitorPrice, opp float64, seg segment.Key) Insights {
	competition := aboveCompetitorHint
	if price < competitorPrice {
		competition = belowCompetitorHint
	}

	window := float64(constants.OptimalWindow)
	return Insights{
		RangeHint: fmt.Sprintf("Optimal range %s–%s for %s sensitivity segment",
			format.WholeCurrency(opp-window), format.WholeCurrency(opp+window), seg),
		CompetitionHint: competition,
		WithinOptimal:   mathutil.WithinTolerance(price, opp, window),
	}
}

// Run simulates a single parameter set.
func Run(logger *zap.Logger, eng *engine.Engine, p Params) (Simulation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eng == nil {
		return Simulation{}, ErrNilEngine
	}
	if err := p.Validate(); err != nil {
		return Simulation{}, fmt.Errorf("scenario %q: %w", p.Name, err)
	}

	curve, err := Curve(eng, p)
	if err != nil {
		return Simulation{}, fmt.Errorf("scenario %q: sampling curve: %w", p.Name, err)
	}

	peaks, err := optimizer.Peaks(
		func(price float64) float64 { return eng.CalcRevenue(price, p.Segment, p.CompetitorPrice) },
		func(price float64) float64 { return eng.CalcProfit(price, p.Segment, p.CompetitorPrice, p.CostPct) },
		p.PriceMin, p.PriceMax, p.Step,
	)
	if err != nil {
		return Simulation{}, fmt.Errorf("scenario %q: locating peaks: %w", p.Name, err)
	}

	thresholds, err := eng.ComputeThresholds(p.Segment, p.CompetitorPrice, p.CostPct, p.PriceMin, p.PriceMax, p.Mode)
	if err != nil {
		return Simulation{}, fmt.Errorf("scenario %q: computing thresholds: %w", p.Name, err)
	}

	current := Metrics{
		Demand:  eng.GetDemand(p.Price, p.Segment, p.CompetitorPrice),
		Revenue: eng.CalcRevenue(p.Price, p.Segment, p.CompetitorPrice),
		Profit:  eng.CalcProfit(p.Price, p.Segment, p.CompetitorPrice, p.CostPct),
	}

	logger.Debug("simulated scenario",
		zap.String("op", "simulate.Run"),
		zap.String("scenario", p.Name),
		zap.Stringer("segment", p.Segment),
		zap.Stringer("mode", p.Mode),
		zap.Float64("pmc", thresholds.PMC),
		zap.Float64("opp", thresholds.OPP),
		zap.Float64("pme", thresholds.PME),
	)

	return Simulation{
		Name:       p.Name,
		Params:     p,
		Curve:      curve,
		Peaks:      peaks,
		Thresholds: thresholds,
		Current:    current,
		Insights:   BuildInsights(p.Price, p.CompetitorPrice, thresholds.OPP, p.Segment),
	}, nil
}

// GetSimulations runs every active scenario in the configuration.
func GetSimulations(logger *zap.Logger, eng *engine.Engine, conf config.Configuration) ([]Simulation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Simulation
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "simulate.GetSimulations"),
			)
			continue
		}

		params, err := ParamsFromScenario(conf.Simulation, scenario)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		result, err := Run(logger, eng, params)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}
