// Package constants provides shared constants for the price-sensitivity application.
package constants

// Simulation defaults
const (
	// DefaultPriceMin is the lower edge of the simulated price range
	DefaultPriceMin = 25.0

	// DefaultPriceMax is the upper edge of the simulated price range
	DefaultPriceMax = 150.0

	// DefaultPriceStep is the grid resolution used for curves and peak search
	DefaultPriceStep = 1.0

	// DefaultPrice is the price evaluated when a scenario does not set one
	DefaultPrice = 80.0

	// DefaultCompetitorPrice is the competitor price used when none is configured
	DefaultCompetitorPrice = 85.0

	// DefaultCostPct is the unit cost as a percentage of price
	DefaultCostPct = 40.0

	// DefaultSegment is the customer segment used when none is configured
	DefaultSegment = "med"

	// DefaultThresholdMode is the acceptable band strategy used when none is configured
	DefaultThresholdMode = "derived"

	// OptimalWindow is the distance from OPP still reported as within the optimal range
	OptimalWindow = 10.0

	// MaxGridPoints caps how many prices a single curve or peak search may evaluate
	MaxGridPoints = 1_000_000
)

// Scenario book defaults
const (
	// DefaultScenarioCapacity is the number of saved scenarios kept before eviction
	DefaultScenarioCapacity = 5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// ExportExtension is the file extension required for curve exports
	ExportExtension = ".parquet"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes caps JSON request bodies (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Numeric constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
