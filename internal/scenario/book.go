// Package scenario keeps a bounded, in-memory book of saved pricing
// scenarios. When the book is full the oldest entry is evicted.
package scenario

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/price-sensitivity/internal/config"
	"github.com/iwvelando/price-sensitivity/internal/engine"
	"github.com/iwvelando/price-sensitivity/internal/segment"
	"github.com/iwvelando/price-sensitivity/internal/simulate"
	"github.com/iwvelando/price-sensitivity/pkg/constants"
	"go.uber.org/zap"
)

// ErrNotFound is returned for an unknown scenario id.
var ErrNotFound = errors.New("scenario: not found")

// Entry is a saved scenario: the inputs plus the metrics and band computed
// when it was saved.
type Entry struct {
	ID              string               `json:"id"`
	Label           string               `json:"label"`
	SavedAt         time.Time            `json:"savedAt"`
	Price           float64              `json:"price"`
	Segment         segment.Key          `json:"segment"`
	CompetitorPrice float64              `json:"competitorPrice"`
	CostPct         float64              `json:"costPct"`
	ThresholdMode   engine.ThresholdMode `json:"thresholdMode"`
	Revenue         float64              `json:"revenue"`
	Profit          float64              `json:"profit"`
	PMC             float64              `json:"pmc"`
	OPP             float64              `json:"opp"`
	PME             float64              `json:"pme"`
}

// FromSimulation captures the inputs and results of a simulation.
func FromSimulation(sim simulate.Simulation) Entry {
	return Entry{
		Price:           sim.Params.Price,
		Segment:         sim.Params.Segment,
		CompetitorPrice: sim.Params.CompetitorPrice,
		CostPct:         sim.Params.CostPct,
		ThresholdMode:   sim.Params.Mode,
		Revenue:         sim.Current.Revenue,
		Profit:          sim.Current.Profit,
		PMC:             sim.Thresholds.PMC,
		OPP:             sim.Thresholds.OPP,
		PME:             sim.Thresholds.PME,
	}
}

// Params restores the saved inputs as simulation parameters over the
// given price range.
func (e Entry) Params(sim config.SimulationConfig) simulate.Params {
	return simulate.Params{
		Name:            e.Label,
		Price:           e.Price,
		Segment:         e.Segment,
		CompetitorPrice: e.CompetitorPrice,
		CostPct:         e.CostPct,
		Mode:            e.ThresholdMode,
		PriceMin:        sim.PriceMin,
		PriceMax:        sim.PriceMax,
		Step:            sim.Step,
	}
}

// Book is a fixed-capacity scenario list ordered oldest first. It is safe
// for concurrent use.
type Book struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	seq      int
	logger   *zap.Logger
	now      func() time.Time
}

// NewBook creates an empty book. A non-positive capacity uses the default.
func NewBook(capacity int, logger *zap.Logger) *Book {
	if capacity <= 0 {
		capacity = constants.DefaultScenarioCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

// Capacity returns the maximum number of entries kept.
func (b *Book) Capacity() int {
	return b.capacity
}

// Save stores e under a fresh id and a "Scenario N" label, evicting the
// oldest entry if the book is full. The stored entry is returned.
func (b *Book) Save(e Entry) Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	e.ID = uuid.New().String()
	e.Label = fmt.Sprintf("Scenario %d", b.seq)
	e.SavedAt = b.now()

	if len(b.entries) >= b.capacity {
		evicted := b.entries[0]
		b.entries = append(b.entries[:0], b.entries[1:]...)
		b.logger.Info("evicted oldest scenario",
			zap.String("op", "scenario.Save"),
			zap.String("id", evicted.ID),
			zap.String("label", evicted.Label),
		)
	}
	b.entries = append(b.entries, e)
	return e
}

// Get returns the entry with the given id.
func (b *Book) Get(id string) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range b.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns a copy of all entries, oldest first.
func (b *Book) List() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Delete removes the entry with the given id.
func (b *Book) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.entries {
		if e.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Len returns the number of saved entries.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
