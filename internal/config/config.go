// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating the config.
package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/price-sensitivity/internal/engine"
	"github.com/iwvelando/price-sensitivity/internal/segment"
	"github.com/iwvelando/price-sensitivity/pkg/constants"
	"github.com/iwvelando/price-sensitivity/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. PRICING_LOGGING_LEVEL.
const EnvPrefix = "PRICING"

// Configuration holds all configuration for price-sensitivity.
type Configuration struct {
	Fixtures   FixturesConfig   `yaml:"fixtures,omitempty" mapstructure:"fixtures"`
	Simulation SimulationConfig `yaml:"simulation,omitempty" mapstructure:"simulation"`
	Scenarios  []Scenario       `yaml:"scenarios" mapstructure:"scenarios"`
	Logging    LoggingConfig    `yaml:"logging,omitempty" mapstructure:"logging"`
	Output     OutputConfig     `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv
	Export string `yaml:"export,omitempty" mapstructure:"export"` // optional parquet curve export
}

// FixturesConfig points at an alternate fixture table. Empty uses the
// bundled table.
type FixturesConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// SimulationConfig is the price range sampled for every scenario.
type SimulationConfig struct {
	PriceMin float64 `yaml:"priceMin,omitempty" mapstructure:"priceMin"`
	PriceMax float64 `yaml:"priceMax,omitempty" mapstructure:"priceMax"`
	Step     float64 `yaml:"step,omitempty" mapstructure:"step"`
}

// Scenario holds the inputs of one pricing what-if. CompetitorPrice and
// CostPct are pointers so an explicit zero is distinguishable from unset.
type Scenario struct {
	Name            string   `yaml:"name" mapstructure:"name"`
	Active          bool     `yaml:"active" mapstructure:"active"`
	Price           float64  `yaml:"price,omitempty" mapstructure:"price"`
	Segment         string   `yaml:"segment,omitempty" mapstructure:"segment"`
	CompetitorPrice *float64 `yaml:"competitorPrice,omitempty" mapstructure:"competitorPrice"`
	CostPct         *float64 `yaml:"costPct,omitempty" mapstructure:"costPct"`
	ThresholdMode   string   `yaml:"thresholdMode,omitempty" mapstructure:"thresholdMode"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

// Normalize fills defaults and canonicalizes enumerated values.
func (c *Configuration) Normalize() {
	if c.Simulation.PriceMin == 0 && c.Simulation.PriceMax == 0 {
		c.Simulation.PriceMin = constants.DefaultPriceMin
		c.Simulation.PriceMax = constants.DefaultPriceMax
	}
	if c.Simulation.Step == 0 {
		c.Simulation.Step = constants.DefaultPriceStep
	}

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Fixtures.Path = strings.TrimSpace(c.Fixtures.Path)

	for i := range c.Scenarios {
		c.Scenarios[i].Normalize(i)
	}
}

// Normalize fills the scenario defaults. index is used for the fallback name.
func (s *Scenario) Normalize(index int) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = fmt.Sprintf("Scenario %d", index+1)
	}
	if s.Price == 0 {
		s.Price = constants.DefaultPrice
	}

	s.Segment = strings.ToLower(strings.TrimSpace(s.Segment))
	if s.Segment == "" {
		s.Segment = constants.DefaultSegment
	}
	s.ThresholdMode = strings.ToLower(strings.TrimSpace(s.ThresholdMode))
	if s.ThresholdMode == "" {
		s.ThresholdMode = constants.DefaultThresholdMode
	}

	if s.CompetitorPrice == nil {
		v := float64(constants.DefaultCompetitorPrice)
		s.CompetitorPrice = &v
	}
	if s.CostPct == nil {
		v := float64(constants.DefaultCostPct)
		s.CostPct = &v
	}
}

// Validate reports configuration errors that make a simulation impossible.
func (c *Configuration) Validate() error {
	if err := validation.ValidatePriceRange(c.Simulation.PriceMin, c.Simulation.PriceMax, c.Simulation.Step); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	if err := validation.ValidateExportPath(c.Output.Export); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	for _, s := range c.Scenarios {
		if _, err := s.SegmentKey(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if _, err := s.Mode(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	return nil
}

// SegmentKey parses the scenario's segment.
func (s Scenario) SegmentKey() (segment.Key, error) {
	return segment.Parse(s.Segment)
}

// Mode parses the scenario's threshold mode.
func (s Scenario) Mode() (engine.ThresholdMode, error) {
	return engine.ParseThresholdMode(s.ThresholdMode)
}

// Competitor returns the competitor price, or the default when unset.
func (s Scenario) Competitor() float64 {
	if s.CompetitorPrice == nil {
		return constants.DefaultCompetitorPrice
	}
	return *s.CompetitorPrice
}

// Cost returns the cost percentage, or the default when unset.
func (s Scenario) Cost() float64 {
	if s.CostPct == nil {
		return constants.DefaultCostPct
	}
	return *s.CostPct
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var inputs []validation.ScenarioInputs
	for _, s := range c.Scenarios {
		if !s.Active {
			continue
		}
		inputs = append(inputs, validation.ScenarioInputs{
			Name:            s.Name,
			Price:           s.Price,
			CompetitorPrice: s.Competitor(),
			CostPct:         s.Cost(),
		})
	}

	warnings := validation.ValidateAll(inputs, c.Simulation.PriceMin, c.Simulation.PriceMax)
	if len(inputs) == 0 {
		warnings = append(warnings, "No active scenarios configured - nothing will be simulated")
	}
	return warnings
}
