package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/price-sensitivity/internal/fixture"
	"github.com/iwvelando/price-sensitivity/internal/optimizer"
	"github.com/iwvelando/price-sensitivity/internal/segment"
	"github.com/iwvelando/price-sensitivity/pkg/mathutil"
)

const (
	competitorSensitivity = 0.15
	maxCompetitorShift    = 0.07

	// Minimum distance between the band edges.
	minBandWidth = 1.0

	// Resolution of the profit peak search backing OPP.
	peakStep = 1.0
)

var (
	// ErrInvalidSegment is returned for a segment outside low/med/high.
	ErrInvalidSegment = errors.New("engine: invalid segment")

	// ErrInvalidMode is returned for an unknown threshold mode.
	ErrInvalidMode = errors.New("engine: invalid threshold mode")

	// ErrPriceRangeTooNarrow is returned when the price range cannot hold a band.
	ErrPriceRangeTooNarrow = errors.New("engine: price range must span at least one unit")
)

// Band is a lower/upper pair of acceptable prices.
type Band struct {
	Cheap     float64 `json:"cheap"`
	Expensive float64 `json:"expensive"`
}

// ThresholdMeta explains how a ThresholdResult was derived.
type ThresholdMeta struct {
	PeakProfitPrice float64              `json:"peakProfitPrice"`
	VW              fixture.VWThresholds `json:"vw"`
	SegmentFactor   float64              `json:"segmentFactor"`
	CompetitorShift float64              `json:"competitorShift"`
	Adjusted        Band                 `json:"adjusted"`
	Scaled          Band                 `json:"scaled"`
	Mode            ThresholdMode        `json:"mode"`
}

// ThresholdResult is the acceptable price band. PMC < PME and
// PMC <= OPP <= PME always hold.
type ThresholdResult struct {
	PMC  float64       `json:"pmc"`
	OPP  float64       `json:"opp"`
	PME  float64       `json:"pme"`
	Meta ThresholdMeta `json:"meta"`
}

// ScaledBand applies the mode's elasticity scaling to the survey baseline.
// The med segment is the reference and is never scaled.
func ScaledBand(vw fixture.VWThresholds, seg segment.Key, mode ThresholdMode) Band {
	band := Band{Cheap: vw.Cheap, Expensive: vw.Expensive}
	s := modeScaling[mode]
	if !s.enabled {
		return band
	}

	med := segment.Med.Elasticity()
	rel := (seg.Elasticity() - med) / med
	band.Cheap *= 1 - mathutil.Clamp(rel*s.cheapCoef, -s.cheapLimit, s.cheapLimit)
	band.Expensive *= 1 - mathutil.Clamp(rel*s.expensiveCoef, -s.expensiveLimit, s.expensiveLimit)
	return band
}

// CompetitorShift is the relative band shift caused by the competitor's
// price sitting above (positive) or below (negative) the band midpoint.
func CompetitorShift(band Band, competitorPrice float64) float64 {
	mid := (band.Cheap + band.Expensive) / 2
	if mid <= 0 {
		return 0
	}
	relDiff := (competitorPrice - mid) / mid
	return mathutil.Clamp(relDiff*competitorSensitivity, -maxCompetitorShift, maxCompetitorShift)
}

// ComputeThresholds derives the PMC/OPP/PME band for a segment, competitor
// price, cost percentage and mode over [priceMin, priceMax]. OPP is the
// modeled profit peak constrained to the band.
func (e *Engine) ComputeThresholds(seg segment.Key, competitorPrice, costPct, priceMin, priceMax float64, mode ThresholdMode) (ThresholdResult, error) {
	if !seg.Valid() {
		return ThresholdResult{}, fmt.Errorf("%w: %v", ErrInvalidSegment, seg)
	}
	if !mode.Valid() {
		return ThresholdResult{}, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	if priceMax-priceMin < minBandWidth {
		return ThresholdResult{}, fmt.Errorf("%w (got %v..%v)", ErrPriceRangeTooNarrow, priceMin, priceMax)
	}

	vw := e.AggregateVW()
	scaled := ScaledBand(vw, seg, mode)
	segmentFactor := seg.BandOffset()
	shift := CompetitorShift(scaled, competitorPrice)

	// A pricier competitor lifts the upper edge more than the lower one.
	cheapAdj := scaled.Cheap * (1 + segmentFactor - shift*0.5)
	expensiveAdj := scaled.Expensive * (1 + segmentFactor + shift*0.5)

	// The lower edge keeps room for a one-unit band below priceMax. Bounding it
	// by expensiveAdj alone breaks narrow ranges: over 25..40 the low segment's
	// edges land near 69 and 133, which would put PMC near 69 above PME 40.
	adjCheap := math.Max(priceMin, math.Min(cheapAdj, math.Min(expensiveAdj, priceMax)-minBandWidth))
	adjExpensive := math.Min(priceMax, math.Max(expensiveAdj, adjCheap+minBandWidth))

	peak, err := optimizer.FindPeak(func(p float64) float64 {
		return e.CalcProfit(p, seg, competitorPrice, costPct)
	}, priceMin, priceMax, peakStep)
	if err != nil {
		return ThresholdResult{}, fmt.Errorf("profit peak search failed: %w", err)
	}

	opp := math.Min(math.Max(peak.Price, adjCheap), adjExpensive)

	return ThresholdResult{
		PMC: adjCheap,
		OPP: opp,
		PME: adjExpensive,
		Meta: ThresholdMeta{
			PeakProfitPrice: peak.Price,
			VW:              vw,
			SegmentFactor:   segmentFactor,
			CompetitorShift: shift,
			Adjusted:        Band{Cheap: adjCheap, Expensive: adjExpensive},
			Scaled:          scaled,
			Mode:            mode,
		},
	}, nil
}
