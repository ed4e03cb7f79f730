// Package cmd implements the vehicle-finance command line.
package cmd

import (
	"fmt"

	"github.com/iwvelando/vehicle-finance/internal/config"
	"github.com/iwvelando/vehicle-finance/internal/logging"
	"github.com/iwvelando/vehicle-finance/pkg/constants"
	"github.com/iwvelando/vehicle-finance/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
	version      string
}

// runtime is everything a subcommand needs after configuration is loaded.
type runtime struct {
	conf         *config.Configuration
	defaults     config.Defaults
	logger       *zap.Logger
	outputFormat string
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	rootCmd := &cobra.Command{
		Use:   "vehicle-finance",
		Short: "Vehicle loan and lease amortization calculator",
		Long: `vehicle-finance computes month-by-month loan amortization and lease
payment schedules with exact decimal arithmetic, and serves the same
calculators over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json, yaml")

	rootCmd.AddCommand(
		newLoanCommand(opts),
		newLeaseCommand(opts),
		newAPRCommand(),
		newServeCommand(opts),
		newVersionCommand(opts),
	)
	return rootCmd
}

// load reads the configuration and builds the logger. CLI flags take
// precedence over the configuration file.
func (o *rootOptions) load() (*runtime, error) {
	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}

	logger, err := logging.New(conf.Logging, o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	outputFormat := conf.Output.Format
	if o.outputFormat != "" {
		outputFormat = o.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return nil, err
	}

	defaults, err := conf.Defaults()
	if err != nil {
		return nil, err
	}

	return &runtime{conf: conf, defaults: defaults, logger: logger, outputFormat: outputFormat}, nil
}

func (rt *runtime) close() {
	_ = rt.logger.Sync()
}
