package engine

import (
	"math"

	"github.com/iwvelando/price-sensitivity/internal/segment"
	"github.com/iwvelando/price-sensitivity/pkg/mathutil"
)

const (
	// Steepness of the tanh smoothing applied to the relative price gap.
	gapSteepness = 2.0

	minDemandFactor = 0.6
	maxDemandFactor = 1.5
)

// CompetitiveFactor is the multiplier applied to baseline demand for being
// priced at price against competitorPrice. It lies in [0.6, 1.5]. A
// non-positive competitor price neutralizes the adjustment.
func CompetitiveFactor(seg segment.Key, price, competitorPrice float64) float64 {
	rel := 0.0
	if competitorPrice > 0 {
		rel = (competitorPrice - price) / competitorPrice
	}
	smooth := math.Tanh(rel * gapSteepness)
	return mathutil.Clamp(1+seg.Elasticity()*smooth, minDemandFactor, maxDemandFactor)
}

// Baseline returns the fixture-interpolated demand before any competitive
// adjustment. Prices outside the table clamp to the boundary samples. It
// panics on an invalid segment.
func (e *Engine) Baseline(price float64, seg segment.Key) float64 {
	return e.table.Demand(seg, price)
}

// GetDemand returns modeled unit demand for seg at price. It panics on an
// invalid segment; ComputeThresholds reports the same input as ErrInvalidSegment.
func (e *Engine) GetDemand(price float64, seg segment.Key, competitorPrice float64) float64 {
	return e.Baseline(price, seg) * CompetitiveFactor(seg, price, competitorPrice)
}

// CalcRevenue is price times modeled demand. It panics on an invalid segment.
func (e *Engine) CalcRevenue(price float64, seg segment.Key, competitorPrice float64) float64 {
	return price * e.GetDemand(price, seg, competitorPrice)
}

// CalcProfit is unit margin times modeled demand, where unit cost is costPct
// percent of price. costPct is expected in [0, 100] but is not validated.
// It panics on an invalid segment.
func (e *Engine) CalcProfit(price float64, seg segment.Key, competitorPrice, costPct float64) float64 {
	unitProfit := price - mathutil.ApplyPercentage(price, costPct)
	return unitProfit * e.GetDemand(price, seg, competitorPrice)
}
