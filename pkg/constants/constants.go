// Package constants provides shared constants for the feed-blend application.
package constants

// Blend constants
const (
	// MinIngredients is the fewest ingredients Pearson's Square can mix
	MinIngredients = 2

	// MaxIngredients is the most ingredients Pearson's Square can mix
	MaxIngredients = 3

	// MinPercent is the lower bound of a nutrient percentage
	MinPercent = 0.0

	// MaxPercent is the upper bound of a nutrient percentage
	MaxPercent = 100.0

	// DefaultUnit is the weight unit used when none is configured
	DefaultUnit = "kg"

	// DecimalPrecision is the precision for weight rounding (2 decimal places)
	DecimalPrecision = 100

	// WeightTolerance is the tolerance for displayed weight comparisons
	WeightTolerance = 0.01

	// RelativeTolerance is the tolerance for the weights-sum-to-final-weight check
	RelativeTolerance = 1e-9
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultHistoryLimit is the number of history entries returned when no limit is given
	DefaultHistoryLimit = 20

	// MaxHistoryLimit caps the history page size
	MaxHistoryLimit = 500
)
