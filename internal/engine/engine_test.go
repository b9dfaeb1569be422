package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/price-sensitivity/internal/fixture"
	"github.com/iwvelando/price-sensitivity/internal/optimizer"
	"github.com/iwvelando/price-sensitivity/internal/segment"
)

const (
	priceMin = 25.0
	priceMax = 150.0
)

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	table, err := fixture.Default()
	if err != nil {
		t.Fatalf("fixture.Default() error = %v", err)
	}
	e, err := New(table)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNewRequiresTable(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilTable) {
		t.Fatalf("expected ErrNilTable, got %v", err)
	}
}

func TestDemandAtFixturePriceEqualsBaseline(t *testing.T) {
	e := defaultEngine(t)

	for _, p := range e.Table().Points() {
		for _, seg := range segment.All() {
			got := e.GetDemand(p.Price, seg, p.Price)
			if got != p.DemandFor(seg) {
				t.Errorf("GetDemand(%v, %v, %v) = %v, expected fixture value %v", p.Price, seg, p.Price, got, p.DemandFor(seg))
			}
		}
	}
}

func TestDemandBoundaryClamping(t *testing.T) {
	e := defaultEngine(t)
	points := e.Table().Points()
	first, last := points[0], points[len(points)-1]

	tests := []struct {
		name     string
		price    float64
		boundary fixture.Point
	}{
		{"Below lowest fixture", 5, first},
		{"Above highest fixture", 300, last},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, seg := range segment.All() {
				competitor := 85.0
				want := tt.boundary.DemandFor(seg) * CompetitiveFactor(seg, tt.price, competitor)
				if got := e.GetDemand(tt.price, seg, competitor); got != want {
					t.Errorf("GetDemand(%v, %v) = %v, expected %v", tt.price, seg, got, want)
				}
			}
		})
	}
}

func TestDemandNonPositiveCompetitorUsesBaseline(t *testing.T) {
	e := defaultEngine(t)
	for _, competitor := range []float64{0, -10} {
		got := e.GetDemand(62.5, segment.Med, competitor)
		if math.Abs(got-715) > 1e-9 {
			t.Errorf("GetDemand(62.5, med, %v) = %v, expected baseline 715", competitor, got)
		}
	}
}

func TestDemandRespondsToCompetitor(t *testing.T) {
	e := defaultEngine(t)
	cheaper := e.GetDemand(80, segment.High, 120)
	parity := e.GetDemand(80, segment.High, 80)
	pricier := e.GetDemand(80, segment.High, 50)

	if !(cheaper > parity && parity > pricier) {
		t.Errorf("expected demand to fall as our price exceeds the competitor: %v, %v, %v", cheaper, parity, pricier)
	}
}

func TestCompetitiveFactorBounds(t *testing.T) {
	prices := []float64{0.5, 10, 25, 60, 85, 150, 400, 10000}
	competitors := []float64{-5, 0, 0.01, 1, 20, 85, 200, 1e6}

	for _, seg := range segment.All() {
		for _, p := range prices {
			for _, c := range competitors {
				f := CompetitiveFactor(seg, p, c)
				if f < 0.6 || f > 1.5 || math.IsNaN(f) {
					t.Fatalf("CompetitiveFactor(%v, %v, %v) = %v outside [0.6, 1.5]", seg, p, c, f)
				}
			}
		}
	}
}

func TestCompetitiveFactorSaturates(t *testing.T) {
	// Our price far above the competitor: tanh saturates at -1.
	if got := CompetitiveFactor(segment.High, 1000, 10); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("expected factor clamped to 0.6, got %v", got)
	}
	// Far below: tanh(2) bounds the uplift.
	want := 1 + 0.20*math.Tanh(2)
	if got := CompetitiveFactor(segment.Low, 0, 100); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected factor %v, got %v", want, got)
	}
	if got := CompetitiveFactor(segment.High, 0, 100); got != 1.5 {
		t.Errorf("expected high segment uplift clamped to 1.5, got %v", got)
	}
}

func TestRevenueAndProfit(t *testing.T) {
	e := defaultEngine(t)

	tests := []struct {
		name    string
		price   float64
		seg     segment.Key
		comp    float64
		costPct float64
	}{
		{"Med at parity", 85, segment.Med, 85, 40},
		{"Low below competitor", 60, segment.Low, 100, 25},
		{"High zero cost", 120, segment.High, 90, 0},
		{"Full cost", 70, segment.Med, 70, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			demand := e.GetDemand(tt.price, tt.seg, tt.comp)
			revenue := e.CalcRevenue(tt.price, tt.seg, tt.comp)
			profit := e.CalcProfit(tt.price, tt.seg, tt.comp, tt.costPct)

			if math.Abs(revenue-tt.price*demand) > 1e-9 {
				t.Errorf("revenue %v != price*demand %v", revenue, tt.price*demand)
			}
			wantProfit := (tt.price - tt.price*tt.costPct/100) * demand
			if math.Abs(profit-wantProfit) > 1e-6 {
				t.Errorf("profit %v, expected %v", profit, wantProfit)
			}
		})
	}

	if got := e.CalcProfit(85, segment.Med, 85, 40); math.Abs(got-85*0.6*520) > 1e-6 {
		t.Errorf("CalcProfit(85, med, 85, 40) = %v, expected %v", got, 85*0.6*520)
	}
}

func TestScenarioMedDerived(t *testing.T) {
	e := defaultEngine(t)

	result, err := e.ComputeThresholds(segment.Med, 85, 40, priceMin, priceMax, ModeDerived)
	if err != nil {
		t.Fatalf("ComputeThresholds() error = %v", err)
	}

	if !(result.PMC < result.OPP && result.OPP < result.PME) {
		t.Fatalf("expected pmc < opp < pme, got %v, %v, %v", result.PMC, result.OPP, result.PME)
	}
	if math.Abs(result.PMC-56.3944) > 1e-3 || math.Abs(result.PME-107.5277) > 1e-3 {
		t.Errorf("unexpected band %v..%v", result.PMC, result.PME)
	}
	if result.OPP != 60 || result.Meta.PeakProfitPrice != 60 {
		t.Errorf("expected OPP at profit peak 60, got opp=%v peak=%v", result.OPP, result.Meta.PeakProfitPrice)
	}

	peak, err := optimizer.FindPeak(func(p float64) float64 {
		return e.CalcProfit(p, segment.Med, 85, 40)
	}, priceMin, priceMax, 1)
	if err != nil {
		t.Fatalf("FindPeak() error = %v", err)
	}
	if got := e.CalcProfit(result.OPP, segment.Med, 85, 40); got < peak.Value*0.999 {
		t.Errorf("profit at OPP %v is not near the grid maximum %v", got, peak.Value)
	}

	meta := result.Meta
	if meta.SegmentFactor != 0 {
		t.Errorf("med segment factor = %v, expected 0", meta.SegmentFactor)
	}
	if meta.Adjusted.Cheap != result.PMC || meta.Adjusted.Expensive != result.PME {
		t.Errorf("adjusted band %+v does not match pmc/pme", meta.Adjusted)
	}
	if meta.Scaled.Cheap != meta.VW.Cheap {
		t.Errorf("med segment should not be scaled in derived mode")
	}
	if meta.Mode != ModeDerived {
		t.Errorf("meta mode = %v", meta.Mode)
	}
}

func TestThresholdsPerSegment(t *testing.T) {
	e := defaultEngine(t)

	tests := []struct {
		seg segment.Key
		pmc float64
		opp float64
		pme float64
	}{
		{segment.Low, 68.8708, 81, 133.1553},
		{segment.High, 41.7568, 49, 77.8256},
	}

	for _, tt := range tests {
		t.Run(tt.seg.String(), func(t *testing.T) {
			result, err := e.ComputeThresholds(tt.seg, 85, 40, priceMin, priceMax, ModeDerived)
			if err != nil {
				t.Fatalf("ComputeThresholds() error = %v", err)
			}
			if math.Abs(result.PMC-tt.pmc) > 1e-3 || result.OPP != tt.opp || math.Abs(result.PME-tt.pme) > 1e-3 {
				t.Errorf("got %v/%v/%v, expected %v/%v/%v", result.PMC, result.OPP, result.PME, tt.pmc, tt.opp, tt.pme)
			}
		})
	}
}

func TestOPPClampedToBand(t *testing.T) {
	e := defaultEngine(t)

	// The high segment's profit peaks at 49, below the unscaled global band.
	result, err := e.ComputeThresholds(segment.High, 85, 40, priceMin, priceMax, ModeGlobal)
	if err != nil {
		t.Fatalf("ComputeThresholds() error = %v", err)
	}
	if result.Meta.PeakProfitPrice != 49 {
		t.Fatalf("expected profit peak 49, got %v", result.Meta.PeakProfitPrice)
	}
	if result.OPP != result.PMC {
		t.Errorf("expected OPP clamped to PMC %v, got %v", result.PMC, result.OPP)
	}
}

func TestCompetitorShiftIsCapped(t *testing.T) {
	e := defaultEngine(t)

	tests := []struct {
		name       string
		competitor float64
		expected   float64
	}{
		{"Far cheaper competitor", 0, -0.07},
		{"Far pricier competitor", 200, 0.07},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.ComputeThresholds(segment.Med, tt.competitor, 40, priceMin, priceMax, ModeGlobal)
			if err != nil {
				t.Fatalf("ComputeThresholds() error = %v", err)
			}
			if math.Abs(result.Meta.CompetitorShift-tt.expected) > 1e-12 {
				t.Errorf("competitor shift = %v, expected %v", result.Meta.CompetitorShift, tt.expected)
			}
		})
	}
}

func TestCompetitorShiftZeroMidpoint(t *testing.T) {
	if got := CompetitorShift(Band{}, 85); got != 0 {
		t.Errorf("CompetitorShift on zero band = %v, expected 0", got)
	}
}

func TestBandOrderingAcrossInputs(t *testing.T) {
	e := defaultEngine(t)
	competitors := []float64{-10, 0, 20, 50, 85, 120, 200, 1000}
	costs := []float64{0, 20, 40, 80, 100}

	for _, seg := range segment.All() {
		for _, mode := range ThresholdModes() {
			for _, c := range competitors {
				for _, cost := range costs {
					r, err := e.ComputeThresholds(seg, c, cost, priceMin, priceMax, mode)
					if err != nil {
						t.Fatalf("ComputeThresholds(%v, %v, %v, %v) error = %v", seg, c, cost, mode, err)
					}
					if !(r.PMC < r.PME && r.PMC <= r.OPP && r.OPP <= r.PME) {
						t.Fatalf("band out of order for %v/%v/%v/%v: %v %v %v", seg, c, cost, mode, r.PMC, r.OPP, r.PME)
					}
					if r.PMC < priceMin || r.PME > priceMax {
						t.Fatalf("band %v..%v outside price range", r.PMC, r.PME)
					}
				}
			}
		}
	}
}

func TestBandOrderingNarrowRange(t *testing.T) {
	e := defaultEngine(t)

	ranges := [][2]float64{{25, 26}, {25, 40}, {100, 150}, {140, 150}, {10, 30}}
	for _, rng := range ranges {
		for _, seg := range segment.All() {
			r, err := e.ComputeThresholds(seg, 85, 40, rng[0], rng[1], ModePerSegment)
			if err != nil {
				t.Fatalf("ComputeThresholds(range %v) error = %v", rng, err)
			}
			if !(r.PMC < r.PME && r.PMC <= r.OPP && r.OPP <= r.PME) {
				t.Errorf("range %v %v: band out of order %v %v %v", rng, seg, r.PMC, r.OPP, r.PME)
			}
			if r.PMC < rng[0] || r.PME > rng[1] {
				t.Errorf("range %v %v: band %v..%v escapes range", rng, seg, r.PMC, r.PME)
			}
		}
	}
}

func TestLowerEdgeBoundedByRangeMax(t *testing.T) {
	e := defaultEngine(t)

	// The low segment's derived band sits well above 40, so both edges pin
	// to the top of the range with one unit between them.
	r, err := e.ComputeThresholds(segment.Low, 85, 40, 25, 40, ModeDerived)
	if err != nil {
		t.Fatalf("ComputeThresholds() error = %v", err)
	}
	if r.PMC != 39 || r.PME != 40 {
		t.Errorf("band = %v..%v, expected 39..40", r.PMC, r.PME)
	}
	if r.OPP < r.PMC || r.OPP > r.PME {
		t.Errorf("OPP %v outside band %v..%v", r.OPP, r.PMC, r.PME)
	}
}

func TestInvalidSegmentPanics(t *testing.T) {
	e := defaultEngine(t)
	invalid := segment.Key(42)

	tests := map[string]func(){
		"GetDemand":   func() { e.GetDemand(80, invalid, 85) },
		"CalcRevenue": func() { e.CalcRevenue(80, invalid, 85) },
		"CalcProfit":  func() { e.CalcProfit(80, invalid, 85, 40) },
	}

	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected panic for invalid segment", name)
				}
			}()
			call()
		})
	}
}

func TestModeMonotonicity(t *testing.T) {
	e := defaultEngine(t)

	for _, seg := range []segment.Key{segment.Low, segment.High} {
		t.Run(seg.String(), func(t *testing.T) {
			derived, err := e.ComputeThresholds(seg, 85, 40, priceMin, priceMax, ModeDerived)
			if err != nil {
				t.Fatalf("derived: %v", err)
			}
			perSegment, err := e.ComputeThresholds(seg, 85, 40, priceMin, priceMax, ModePerSegment)
			if err != nil {
				t.Fatalf("per-segment: %v", err)
			}

			vw := derived.Meta.VW
			deviation := func(b Band) (float64, float64) {
				return math.Abs(b.Cheap/vw.Cheap - 1), math.Abs(b.Expensive/vw.Expensive - 1)
			}
			dc, de := deviation(derived.Meta.Scaled)
			pc, pe := deviation(perSegment.Meta.Scaled)
			if pc < dc || pe < de {
				t.Errorf("per-segment deviation (%v, %v) smaller than derived (%v, %v)", pc, pe, dc, de)
			}
		})
	}
}

func TestMedUnaffectedByMode(t *testing.T) {
	e := defaultEngine(t)
	var results []ThresholdResult
	for _, mode := range ThresholdModes() {
		r, err := e.ComputeThresholds(segment.Med, 85, 40, priceMin, priceMax, mode)
		if err != nil {
			t.Fatalf("ComputeThresholds(%v) error = %v", mode, err)
		}
		results = append(results, r)
	}
	for _, r := range results[1:] {
		if r.PMC != results[0].PMC || r.PME != results[0].PME || r.OPP != results[0].OPP {
			t.Errorf("med band differs between modes: %+v vs %+v", r, results[0])
		}
	}
}

func TestComputeThresholdsErrors(t *testing.T) {
	e := defaultEngine(t)

	tests := []struct {
		name    string
		seg     segment.Key
		mode    ThresholdMode
		min     float64
		max     float64
		wantErr error
	}{
		{"Invalid segment", segment.Key(9), ModeDerived, 25, 150, ErrInvalidSegment},
		{"Invalid mode", segment.Med, ThresholdMode(9), 25, 150, ErrInvalidMode},
		{"Reversed range", segment.Med, ModeDerived, 150, 25, ErrPriceRangeTooNarrow},
		{"Degenerate range", segment.Med, ModeDerived, 50, 50.5, ErrPriceRangeTooNarrow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ComputeThresholds(tt.seg, 85, 40, tt.min, tt.max, tt.mode)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	e := defaultEngine(t)

	for _, seg := range segment.All() {
		if a, b := e.GetDemand(73.3, seg, 91), e.GetDemand(73.3, seg, 91); math.Float64bits(a) != math.Float64bits(b) {
			t.Errorf("GetDemand not bit-identical: %v vs %v", a, b)
		}
		if a, b := e.CalcProfit(73.3, seg, 91, 35), e.CalcProfit(73.3, seg, 91, 35); math.Float64bits(a) != math.Float64bits(b) {
			t.Errorf("CalcProfit not bit-identical: %v vs %v", a, b)
		}
		first, err := e.ComputeThresholds(seg, 91, 35, priceMin, priceMax, ModePerSegment)
		if err != nil {
			t.Fatalf("ComputeThresholds() error = %v", err)
		}
		second, err := e.ComputeThresholds(seg, 91, 35, priceMin, priceMax, ModePerSegment)
		if err != nil {
			t.Fatalf("ComputeThresholds() error = %v", err)
		}
		if first != second {
			t.Errorf("ComputeThresholds not identical: %+v vs %+v", first, second)
		}
	}
}

func TestOutputsAreFinite(t *testing.T) {
	e := defaultEngine(t)
	for _, seg := range segment.All() {
		for _, c := range []float64{-1, 0, 1e-9, 85, 1e9} {
			for _, p := range []float64{0, 25, 150, 1e6} {
				d := e.GetDemand(p, seg, c)
				if math.IsNaN(d) || math.IsInf(d, 0) {
					t.Fatalf("GetDemand(%v, %v, %v) = %v", p, seg, c, d)
				}
			}
		}
	}
}

func TestParseThresholdMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ThresholdMode
		wantErr  bool
	}{
		{"global", ModeGlobal, false},
		{"Derived", ModeDerived, false},
		{"per-segment", ModePerSegment, false},
		{"per_segment", ModePerSegment, false},
		{"", 0, true},
		{"adaptive", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseThresholdMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseThresholdMode(%q) error = %v", tt.input, err)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseThresholdMode(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}

	for _, mode := range ThresholdModes() {
		text, err := mode.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", mode, err)
		}
		var decoded ThresholdMode
		if err := decoded.UnmarshalText(text); err != nil || decoded != mode {
			t.Errorf("round trip of %v gave %v (err %v)", mode, decoded, err)
		}
	}
}

func TestAggregateVW(t *testing.T) {
	e := defaultEngine(t)
	vw := e.AggregateVW()
	if math.Abs(vw.Cheap-56.5556) > 1e-3 || math.Abs(vw.Expensive-107.2222) > 1e-3 {
		t.Errorf("unexpected VW averages %+v", vw)
	}
	if !(vw.TooCheap < vw.Cheap && vw.Cheap < vw.Expensive && vw.Expensive < vw.TooExpensive) {
		t.Errorf("VW averages out of order: %+v", vw)
	}
}
