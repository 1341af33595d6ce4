// Package constants provides shared constants for the fantasy-f1-optimiser application.
package constants

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

	// EnvPrefix prefixes environment overrides, e.g. F1OPT_SOLVER_TIMEOUT.
	EnvPrefix = "F1OPT"
)

// State and projection defaults
const (
	// DefaultStateBackend stores the team state as a JSON file
	DefaultStateBackend = "file"

	// DefaultStatePath is the team state file
	DefaultStatePath = "data/team.json"

	// DefaultBadgerDir holds the badger state store
	DefaultBadgerDir = "data/state"

	// DefaultProjectionsPath is the projection table read by the CLI
	DefaultProjectionsPath = "data/projections.csv"
)

// Solver defaults
const (
	// DefaultStartingBudget is the first-round cost cap
	DefaultStartingBudget = 100.0

	// DefaultSolverTimeout bounds a single mode solve
	DefaultSolverTimeout = "30s"

	// DefaultMaxNodes bounds the branch-and-bound search
	DefaultMaxNodes = 200000
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Display constants
const (
	// PointsTolerance is the tolerance for comparing projected points
	PointsTolerance = 1e-6

	// PricePrecision is the number of decimals prices are shown with
	PricePrecision = 1
)
