// Package constants provides shared constants for the vehicle-finance application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// CentPlaces is the number of decimal places every emitted currency figure carries
	CentPlaces = 2

	// ResidualRatePlaces is the scale of an interpolated lease residual rate
	ResidualRatePlaces = 4

	// DefaultPrecision is the working precision in significant digits for
	// intermediate (non-quantized) arithmetic
	DefaultPrecision = 28

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// MoneyFactorToAPR converts a lease money factor into an approximate APR percent
	MoneyFactorToAPR = 2400

	// MaxTermMonths is the longest loan or lease term accepted at the boundary
	MaxTermMonths = 96
)

// Calculator defaults. These are strings so they are parsed exactly into
// decimals rather than through a binary float.
const (
	// DefaultTaxRate is the Dallas combined sales tax applied to each loan payment
	DefaultTaxRate = "0.0825"

	// DefaultMoneyFactor is the lease money factor (~4.56% APR)
	DefaultMoneyFactor = "0.00190"

	// DefaultAcquisitionFee is the lease acquisition fee rolled into the cap cost
	DefaultAcquisitionFee = "695.00"
)

// Input bounds enforced at the request boundary. Rates entered as percents
// instead of fractions stay inside them so they can be warned about.
const (
	// MaxAmount caps vehicle amount, down payment and acquisition fee
	MaxAmount = "1000000000"

	// MaxAPRPercent caps the loan APR
	MaxAPRPercent = "100"

	// MaxTaxRate caps the loan tax rate
	MaxTaxRate = "100"

	// MaxMoneyFactor caps the lease money factor
	MaxMoneyFactor = "10"

	// MaxDecimalExponent bounds the base-10 exponent of any numeric input
	MaxDecimalExponent = 20
)

// Credit score bounds for the APR estimate table
const (
	MinCreditScore = 300
	MaxCreditScore = 850
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON emits the result bundle unmodified
	OutputFormatJSON = "json"

	// OutputFormatYAML emits the result bundle as YAML
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys
	EnvPrefix = "VF"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitRequests is the number of requests a client may make per window
	DefaultRateLimitRequests = 60

	// DefaultRateLimitWindow is the rate limit window
	DefaultRateLimitWindow = "1m"

	// RequestIDHeader carries the per-request correlation ID
	RequestIDHeader = "X-Request-ID"
)
