// Package engine implements the pricing calculations: fixture-anchored demand
// with a competitor-aware elasticity adjustment, revenue and profit
// evaluation, and derivation of the PMC/OPP/PME acceptable price band.
//
// Every method is a pure function of its arguments and the injected fixture
// table. An Engine is safe for concurrent use.
package engine

import (
	"errors"

	"github.com/iwvelando/price-sensitivity/internal/fixture"
)

// ErrNilTable is returned by New when no fixture table is supplied.
var ErrNilTable = errors.New("engine: fixture table cannot be nil")

// Engine evaluates the pricing model over one fixture table.
type Engine struct {
	table *fixture.Table
}

// New constructs an Engine bound to table.
func New(table *fixture.Table) (*Engine, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	return &Engine{table: table}, nil
}

// Table returns the fixture table the engine reads from.
func (e *Engine) Table() *fixture.Table {
	return e.table
}

// AggregateVW returns the segment-neutral Van Westendorp baseline: the mean of
// each threshold across all fixtures.
func (e *Engine) AggregateVW() fixture.VWThresholds {
	return e.table.AverageVW()
}
