// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/mathutil"
	"github.com/iwvelando/vehicle-finance/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for vehicle-finance.
type Configuration struct {
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
	Calculator CalculatorConfig `yaml:"calculator,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, yaml
}

// CalculatorConfig holds the arithmetic precision and the defaults applied
// when a request omits an optional input. Decimal values are kept as strings
// so they are never routed through a float.
type CalculatorConfig struct {
	Precision      int32  `yaml:"precision,omitempty"`
	TaxRate        string `yaml:"taxRate,omitempty"`
	MoneyFactor    string `yaml:"moneyFactor,omitempty"`
	AcquisitionFee string `yaml:"acquisitionFee,omitempty"`
}

// Defaults are the parsed calculator defaults.
type Defaults struct {
	TaxRate        decimal.Decimal
	MoneyFactor    decimal.Decimal
	AcquisitionFee decimal.Decimal
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("calculator.precision", constants.DefaultPrecision)
	v.SetDefault("calculator.taxRate", constants.DefaultTaxRate)
	v.SetDefault("calculator.moneyFactor", constants.DefaultMoneyFactor)
	v.SetDefault("calculator.acquisitionFee", constants.DefaultAcquisitionFee)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults; environment
// variables prefixed with VF_ (e.g. VF_CALCULATOR_TAXRATE) override both.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %s", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the output format and that every calculator default
// parses as a non-negative decimal.
func (conf *Configuration) Validate() error {
	var errs []error
	if conf.Output.Format != "" {
		errs = append(errs, validation.ValidateOutputFormat(conf.Output.Format))
	}
	_, err := conf.Defaults()
	errs = append(errs, err)
	return errors.Join(errs...)
}

// Defaults parses the calculator defaults.
func (conf *Configuration) Defaults() (Defaults, error) {
	var errs []error
	parse := func(field, value, fallback string) decimal.Decimal {
		if strings.TrimSpace(value) == "" {
			value = fallback
		}
		d, err := mathutil.ToDecimal(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("calculator.%s: %w", field, err))
			return decimal.Zero
		}
		if d.IsNegative() {
			errs = append(errs, fmt.Errorf("calculator.%s must be >= 0, got %s", field, d))
		}
		return d
	}

	defaults := Defaults{
		TaxRate:        parse("taxRate", conf.Calculator.TaxRate, constants.DefaultTaxRate),
		MoneyFactor:    parse("moneyFactor", conf.Calculator.MoneyFactor, constants.DefaultMoneyFactor),
		AcquisitionFee: parse("acquisitionFee", conf.Calculator.AcquisitionFee, constants.DefaultAcquisitionFee),
	}
	return defaults, errors.Join(errs...)
}

// MathContext returns the arithmetic context for the configured precision.
func (conf *Configuration) MathContext() mathutil.Context {
	return mathutil.NewContext(conf.Calculator.Precision)
}
