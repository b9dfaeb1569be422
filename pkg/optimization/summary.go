// Package optimization provides shared data structures for optimization results.
package optimization

// PeakPoint is the arg-max/max pair found by a grid search.
type PeakPoint struct {
	Price float64 `json:"price"`
	Value float64 `json:"value"`
}

// Summary captures the revenue and profit peaks of one pricing curve.
type Summary struct {
	Revenue     PeakPoint `json:"revenue"`
	Profit      PeakPoint `json:"profit"`
	Evaluations int       `json:"evaluations"`
}
