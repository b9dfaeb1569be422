// Package server exposes the pricing engine over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/price-sensitivity/internal/config"
	"github.com/iwvelando/price-sensitivity/internal/engine"
	"github.com/iwvelando/price-sensitivity/internal/fixture"
	"github.com/iwvelando/price-sensitivity/internal/scenario"
	"github.com/iwvelando/price-sensitivity/internal/segment"
	"github.com/iwvelando/price-sensitivity/internal/simulate"
	"github.com/iwvelando/price-sensitivity/pkg/constants"
	"github.com/iwvelando/price-sensitivity/pkg/validation"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	engine      *engine.Engine
	book        *scenario.Book
	simulation  config.SimulationConfig
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the pricing API. A nil
// cfg uses DefaultConfig.
func NewHandler(logger *zap.Logger, eng *engine.Engine, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	maxBodySize := cfg.BodySizeBytes()
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		engine:      eng,
		book:        scenario.NewBook(cfg.ScenarioCapacity, logger),
		simulation:  cfg.Simulation,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/fixtures", h.handleFixtures)
		r.Get("/thresholds", h.handleThresholds)
		r.Post("/simulate", h.handleSimulate)
		r.Get("/scenarios", h.handleListScenarios)
		r.Post("/scenarios", h.handleSaveScenario)
		r.Get("/scenarios/{id}", h.handleGetScenario)
		r.Get("/scenarios/{id}/simulation", h.handleLoadScenario)
		r.Delete("/scenarios/{id}", h.handleDeleteScenario)
	})

	return r
}

// simulateRequest mirrors the interactive inputs. Omitted fields take the
// configured defaults; pointers keep an explicit zero distinguishable.
type simulateRequest struct {
	Name            string   `json:"name"`
	Price           *float64 `json:"price"`
	Segment         string   `json:"segment"`
	CompetitorPrice *float64 `json:"competitorPrice"`
	CostPct         *float64 `json:"costPct"`
	ThresholdMode   string   `json:"thresholdMode"`
}

func (req simulateRequest) params(sim config.SimulationConfig) (simulate.Params, error) {
	sc := config.Scenario{
		Name:            req.Name,
		Active:          true,
		Segment:         req.Segment,
		CompetitorPrice: req.CompetitorPrice,
		CostPct:         req.CostPct,
		ThresholdMode:   req.ThresholdMode,
	}
	if req.Price != nil {
		sc.Price = *req.Price
	}
	sc.Normalize(0)
	return simulate.ParamsFromScenario(sim, sc)
}

type fixturesResponse struct {
	PriceMin      float64              `json:"priceMin"`
	PriceMax      float64              `json:"priceMax"`
	Points        []fixture.Point      `json:"points"`
	VanWestendorp fixture.VWThresholds `json:"vanWestendorp"`
}

type scenariosResponse struct {
	Capacity  int              `json:"capacity"`
	Scenarios []scenario.Entry `json:"scenarios"`
}

type simulateResponse struct {
	simulate.Simulation
	Warnings []string `json:"warnings,omitempty"`
	Duration string   `json:"duration"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleFixtures(w http.ResponseWriter, r *http.Request) {
	table := h.engine.Table()
	h.writeJSON(w, http.StatusOK, fixturesResponse{
		PriceMin:      table.MinPrice(),
		PriceMax:      table.MaxPrice(),
		Points:        table.Points(),
		VanWestendorp: h.engine.AggregateVW(),
	})
}

func (h *handler) handleThresholds(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleThresholds"
	query := r.URL.Query()

	seg, err := segment.Parse(defaultString(query.Get("segment"), constants.DefaultSegment))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	mode, err := engine.ParseThresholdMode(defaultString(query.Get("mode"), constants.DefaultThresholdMode))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	competitor, err := parseFloatParam(query.Get("competitorPrice"), constants.DefaultCompetitorPrice)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("competitorPrice: %v", err), op)
		return
	}
	costPct, err := parseFloatParam(query.Get("costPct"), constants.DefaultCostPct)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("costPct: %v", err), op)
		return
	}

	result, err := h.engine.ComputeThresholds(seg, competitor, costPct, h.simulation.PriceMin, h.simulation.PriceMax, mode)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	start := time.Now()

	sim, status, err := h.simulateFromBody(w, r)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	warnings := validation.ValidateScenario(validation.ScenarioInputs{
		Name:            sim.Name,
		Price:           sim.Params.Price,
		CompetitorPrice: sim.Params.CompetitorPrice,
		CostPct:         sim.Params.CostPct,
	}, sim.Params.PriceMin, sim.Params.PriceMax)

	duration := time.Since(start)
	h.logger.Debug("simulation complete",
		zap.String("op", op),
		zap.String("scenario", sim.Name),
		zap.Duration("duration", duration),
	)

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Simulation: sim,
		Warnings:   warnings,
		Duration:   duration.String(),
	})
}

func (h *handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, scenariosResponse{
		Capacity:  h.book.Capacity(),
		Scenarios: h.book.List(),
	})
}

func (h *handler) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveScenario"

	sim, status, err := h.simulateFromBody(w, r)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	saved := h.book.Save(scenario.FromSimulation(sim))
	h.logger.Info("saved scenario",
		zap.String("op", op),
		zap.String("id", saved.ID),
		zap.String("label", saved.Label),
	)
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	entry, err := h.book.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), "server.handleGetScenario")
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

// handleLoadScenario re-runs a saved scenario's inputs against the current engine.
func (h *handler) handleLoadScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLoadScenario"

	entry, err := h.book.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	sim, err := simulate.Run(h.logger, h.engine, entry.Params(h.simulation))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, sim)
}

func (h *handler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.book.Delete(chi.URLParam(r, "id")); err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), "server.handleDeleteScenario")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// simulateFromBody decodes a simulateRequest and runs it. An empty body
// simulates the defaults.
func (h *handler) simulateFromBody(w http.ResponseWriter, r *http.Request) (simulate.Simulation, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return simulate.Simulation{}, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds limit of %d bytes", h.maxBodySize)
		}
		return simulate.Simulation{}, http.StatusBadRequest, fmt.Errorf("invalid JSON payload: %w", err)
	}

	params, err := req.params(h.simulation)
	if err != nil {
		return simulate.Simulation{}, http.StatusBadRequest, err
	}

	sim, err := simulate.Run(h.logger, h.engine, params)
	if err != nil {
		return simulate.Simulation{}, http.StatusBadRequest, err
	}
	return sim, http.StatusOK, nil
}

func statusFor(err error) int {
	if errors.Is(err, scenario.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func parseFloatParam(value string, fallback float64) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", value)
	}
	return v, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("pricing request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
