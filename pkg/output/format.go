// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"fmt"

	"github.com/iwvelando/price-sensitivity/internal/simulate"
	"github.com/iwvelando/price-sensitivity/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []simulate.Simulation) {
	p := message.NewPrinter(language.English)
	for _, result := range results {
		params := result.Params
		band := result.Thresholds

		fmt.Printf("--- Results for scenario %s ---\n", result.Name)
		fmt.Printf("Segment: %s | Competitor: %s | Cost: %.1f%% | Mode: %s\n",
			params.Segment, format.Currency(params.CompetitorPrice), params.CostPct, params.Mode)
		fmt.Printf("Acceptable band: PMC %s | OPP %s | PME %s\n",
			format.Currency(band.PMC), format.Currency(band.OPP), format.Currency(band.PME))
		fmt.Printf("Revenue peak: %s at %s\n", format.Currency(result.Peaks.Revenue.Value), format.Currency(result.Peaks.Revenue.Price))
		fmt.Printf("Profit peak: %s at %s\n", format.Currency(result.Peaks.Profit.Value), format.Currency(result.Peaks.Profit.Price))
		fmt.Printf("At %s: demand %s units | revenue %s | profit %s\n",
			format.Currency(params.Price), format.Units(result.Current.Demand),
			format.Currency(result.Current.Revenue), format.Currency(result.Current.Profit))

		status := "Outside optimal range"
		if result.Insights.WithinOptimal {
			status = "Within optimal range"
		}
		fmt.Printf("%s. %s\n", status, result.Insights.RangeHint)
		fmt.Printf("%s\n\n", result.Insights.CompetitionHint)

		fmt.Printf("Price    | Revenue       | Profit\n")
		fmt.Printf("_____    | _____________ | _____________\n")
		for i, price := range result.Curve.Prices {
			_, _ = p.Printf("$%.2f | $%.2f | $%.2f\n", price, result.Curve.Revenue[i], result.Curve.Profit[i])
		}
		if len(results) > 1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs the pricing curves in comma-separated value format.
func CsvFormat(results []simulate.Simulation) {
	if len(results) == 0 {
		return
	}

	// All results share the configured price grid, so grab the prices from the first
	prices := results[0].Curve.Prices
	fmt.Printf(`"price"`)
	for _, result := range results {
		fmt.Printf(`,"revenue (%s)","profit (%s)"`, result.Name, result.Name)
	}
	fmt.Printf("\n")
	for i, price := range prices {
		fmt.Printf(`"%.2f"`, price)
		for _, result := range results {
			if i >= result.Curve.Len() {
				fmt.Printf(`,"",""`)
				continue
			}
			fmt.Printf(`,"%.2f"`, result.Curve.Revenue[i])
			fmt.Printf(`,"%.2f"`, result.Curve.Profit[i])
		}
		fmt.Printf("\n")
	}
}
