package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/price-sensitivity/internal/simulate"
	"github.com/parquet-go/parquet-go"
)

// CurveRecord is one sampled price of one simulation, flattened for
// columnar export. The band columns repeat on every row of a scenario.
type CurveRecord struct {
	Scenario        string  `parquet:"scenario"`
	Segment         string  `parquet:"segment"`
	ThresholdMode   string  `parquet:"threshold_mode"`
	CompetitorPrice float64 `parquet:"competitor_price"`
	CostPct         float64 `parquet:"cost_pct"`
	Price           float64 `parquet:"price"`
	Revenue         float64 `parquet:"revenue"`
	Profit          float64 `parquet:"profit"`
	PMC             float64 `parquet:"pmc"`
	OPP             float64 `parquet:"opp"`
	PME             float64 `parquet:"pme"`
}

// CurveRecords flattens the curves of all results, scenario by scenario.
func CurveRecords(results []simulate.Simulation) []CurveRecord {
	n := 0
	for _, result := range results {
		n += result.Curve.Len()
	}

	records := make([]CurveRecord, 0, n)
	for _, result := range results {
		for i, price := range result.Curve.Prices {
			records = append(records, CurveRecord{
				Scenario:        result.Name,
				Segment:         result.Params.Segment.String(),
				ThresholdMode:   result.Params.Mode.String(),
				CompetitorPrice: result.Params.CompetitorPrice,
				CostPct:         result.Params.CostPct,
				Price:           price,
				Revenue:         result.Curve.Revenue[i],
				Profit:          result.Curve.Profit[i],
				PMC:             result.Thresholds.PMC,
				OPP:             result.Thresholds.OPP,
				PME:             result.Thresholds.PME,
			})
		}
	}
	return records
}

// ExportParquet writes the curves of all results to a Parquet file at path,
// creating parent directories as needed.
func ExportParquet(path string, results []simulate.Simulation) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := parquet.WriteFile(path, CurveRecords(results)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadParquet loads curve records previously written by ExportParquet.
func ReadParquet(path string) ([]CurveRecord, error) {
	records, err := parquet.ReadFile[CurveRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}
