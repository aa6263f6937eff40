// Package constants provides shared constants for the open-logistics application.
package constants

// Version is the application version reported by the CLI and the HTTP API.
const Version = "1.0.2"

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// EnvPrefix prefixes environment variable overrides, e.g. OPENLOGISTICS_SERVER_ADDRESS.
	EnvPrefix = "OPENLOGISTICS"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (1 MB)
	DefaultMaxBodySizeBytes int64 = 1024 * 1024

	// DefaultRequestTimeout is the default deadline for a single engine call
	DefaultRequestTimeout = "5s"
)

// Forecasting defaults
const (
	// DefaultSmoothingAlpha weights recent observations in the smoothed level
	DefaultSmoothingAlpha = 0.3

	// DefaultSeasonalPeriod is the cycle length assumed for seasonal factors
	DefaultSeasonalPeriod = 7

	// DefaultMinSeasonalCycles is the number of full cycles needed before seasonality applies
	DefaultMinSeasonalCycles = 2

	// DefaultInitialConfidence is the confidence of the first forecast step
	DefaultInitialConfidence = 0.9

	// DefaultConfidenceDecay is the per-step multiplicative confidence decay
	DefaultConfidenceDecay = 0.95

	// DefaultConfidenceFloor is the lowest confidence a forecast step may report
	DefaultConfidenceFloor = 0.3

	// DefaultMaxHorizon is the largest time_horizon either engine accepts (ten years of days)
	DefaultMaxHorizon = 3650
)

// Optimization defaults
const (
	// DefaultCostPull is the adjustment factor pull of stock-conserving objectives
	DefaultCostPull = 0.9

	// Readiness pulls per priority level
	DefaultLowPriorityPull    = 1.05
	DefaultMediumPriorityPull = 1.15
	DefaultHighPriorityPull   = 1.30

	// DefaultUnitCost is the nominal cost of one allocated unit when no cost table is supplied
	DefaultUnitCost = 1.0

	// DefaultUtilization is reported for the budget resource when no budget constraint exists
	DefaultUtilization = 0.5

	// Horizon confidence term: full confidence up to HorizonFullConfidence periods,
	// decaying linearly to HorizonFloor at HorizonDecayEnd periods.
	DefaultHorizonFullConfidence = 30
	DefaultHorizonDecayEnd       = 180
	DefaultHorizonFloor          = 0.5

	// Constraint tightness term: full confidence up to TightnessThreshold utilization,
	// decaying linearly to TightnessFloor at full utilization.
	DefaultTightnessThreshold = 0.9
	DefaultTightnessFloor     = 0.5
)

// Numeric constants
const (
	// DecimalPrecision is the precision used when rounding plan quantities (2 decimal places)
	DecimalPrecision = 100

	// Tolerance is the tolerance for floating point comparisons of scores and quantities
	Tolerance = 1e-9

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
