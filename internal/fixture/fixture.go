// Package fixture holds the immutable, price-sorted reference table of demand
// and Van Westendorp samples the pricing engine is anchored on.
//
// A Table is built once at startup and never mutated afterwards, so it can be
// shared by reference between goroutines without locking.
package fixture

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/iwvelando/price-sensitivity/internal/segment"
	"github.com/iwvelando/price-sensitivity/pkg/interpolate"
	"github.com/iwvelando/price-sensitivity/pkg/mathutil"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// ErrEmptyTable is returned when a table would contain no samples. The engine
// cannot establish a baseline without at least one.
var ErrEmptyTable = errors.New("fixture table must contain at least one point")

// VWThresholds are the four Van Westendorp price-sensitivity answers.
type VWThresholds struct {
	TooCheap     float64 `yaml:"tooCheap" json:"tooCheap"`
	Cheap        float64 `yaml:"cheap" json:"cheap"`
	Expensive    float64 `yaml:"expensive" json:"expensive"`
	TooExpensive float64 `yaml:"tooExpensive" json:"tooExpensive"`
}

// Point is one empirically anchored sample on the price axis.
type Point struct {
	Price         float64      `yaml:"price" json:"price"`
	DemandLow     float64      `yaml:"demand_low" json:"demand_low"`
	DemandMed     float64      `yaml:"demand_med" json:"demand_med"`
	DemandHigh    float64      `yaml:"demand_high" json:"demand_high"`
	VanWestendorp VWThresholds `yaml:"vanWestendorp" json:"vanWestendorp"`
}

// DemandFor returns the sampled demand for the given segment. It panics on an
// invalid segment.
func (p Point) DemandFor(seg segment.Key) float64 {
	switch seg {
	case segment.Low:
		return p.DemandLow
	case segment.Med:
		return p.DemandMed
	case segment.High:
		return p.DemandHigh
	default:
		panic(fmt.Sprintf("fixture: invalid segment %d", int(seg)))
	}
}

// Table is the sorted, read-only fixture table.
type Table struct {
	points []Point
	demand [segment.Count]*interpolate.Series
}

// NewTable validates and sorts a copy of points.
func NewTable(points []Point) (*Table, error) {
	if len(points) == 0 {
		return nil, ErrEmptyTable
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	for i, p := range sorted {
		if err := validatePoint(p); err != nil {
			return nil, fmt.Errorf("fixture point %d (price %v): %w", i, p.Price, err)
		}
	}

	t := &Table{points: sorted}
	prices := make([]float64, len(sorted))
	for i, p := range sorted {
		prices[i] = p.Price
	}
	for _, seg := range segment.All() {
		values := make([]float64, len(sorted))
		for i, p := range sorted {
			values[i] = p.DemandFor(seg)
		}
		series, err := interpolate.NewSeries(prices, values)
		if err != nil {
			return nil, fmt.Errorf("building %s demand series: %w", seg, err)
		}
		t.demand[seg] = series
	}

	return t, nil
}

func validatePoint(p Point) error {
	values := []float64{
		p.Price, p.DemandLow, p.DemandMed, p.DemandHigh,
		p.VanWestendorp.TooCheap, p.VanWestendorp.Cheap,
		p.VanWestendorp.Expensive, p.VanWestendorp.TooExpensive,
	}
	for _, v := range values {
		if !mathutil.IsFinite(v) {
			return fmt.Errorf("values must be finite")
		}
	}
	if p.DemandLow < 0 || p.DemandMed < 0 || p.DemandHigh < 0 {
		return fmt.Errorf("demand cannot be negative")
	}
	return nil
}

// Parse decodes a YAML or JSON sequence of points into a Table.
func Parse(data []byte) (*Table, error) {
	var points []Point
	if err := yaml.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("unable to decode fixtures: %w", err)
	}
	return NewTable(points)
}

// Load reads a fixture file from disk.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Default returns the bundled reference table.
func Default() (*Table, error) {
	return Parse(defaultFixtures)
}

// LoadOrDefault loads path, or the bundled table when path is empty.
func LoadOrDefault(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Len returns the number of samples.
func (t *Table) Len() int {
	return len(t.points)
}

// Points returns a copy of the samples in ascending price order.
func (t *Table) Points() []Point {
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}

// MinPrice is the lowest sampled price.
func (t *Table) MinPrice() float64 {
	return t.points[0].Price
}

// MaxPrice is the highest sampled price.
func (t *Table) MaxPrice() float64 {
	return t.points[len(t.points)-1].Price
}

// Demand interpolates the segment's baseline demand at price, clamping to the
// boundary samples outside the table.
func (t *Table) Demand(seg segment.Key, price float64) float64 {
	return t.demand[seg].At(price)
}

// AverageVW is the arithmetic mean of each threshold across all samples.
func (t *Table) AverageVW() VWThresholds {
	var sum VWThresholds
	for _, p := range t.points {
		sum.TooCheap += p.VanWestendorp.TooCheap
		sum.Cheap += p.VanWestendorp.Cheap
		sum.Expensive += p.VanWestendorp.Expensive
		sum.TooExpensive += p.VanWestendorp.TooExpensive
	}
	n := float64(len(t.points))
	return VWThresholds{
		TooCheap:     sum.TooCheap / n,
		Cheap:        sum.Cheap / n,
		Expensive:    sum.Expensive / n,
		TooExpensive: sum.TooExpensive / n,
	}
}
