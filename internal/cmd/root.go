// Package cmd implements the f1-optimiser command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/config"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath      string
	logLevel        string
	outputFormat    string
	projectionsPath string
}

// app carries what PersistentPreRunE resolved for the running subcommand.
type app struct {
	flags        globalFlags
	version      string
	conf         *config.Configuration
	logger       *zap.Logger
	outputFormat string
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(version).ExecuteContext(ctx)
}

func newRootCmd(version string) *cobra.Command {
	a := &app{version: version, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "f1-optimiser",
		Short: "Fantasy F1 roster optimiser",
		Long: `f1-optimiser picks the fantasy F1 roster of five drivers and two
constructors that maximises projected points under the cost cap, honouring
the transfer allowance carried from the previous round.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&a.flags.outputFormat, "output-format", "o", "", "type of output override: pretty, csv, json")
	pf.StringVarP(&a.flags.projectionsPath, "projections", "p", "", "projection table override (csv, json or yaml)")

	root.AddCommand(
		newSolveCmd(a),
		newCompareCmd(a),
		newStateCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads the configuration, builds the logger and resolves the output
// format before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	conf, err := config.LoadConfiguration(a.flags.configPath)
	missing := errors.Is(err, config.ErrConfigurationMissing)
	if err != nil && !missing {
		return fmt.Errorf("failed to load configuration at %s: %w", a.flags.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, a.flags.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.conf = conf

	if missing {
		logger.Info("configuration file not found, using defaults",
			zap.String("op", "cmd.setup"),
			zap.String("path", a.flags.configPath),
		)
	}

	a.outputFormat = conf.Output.Format
	if a.flags.outputFormat != "" {
		a.outputFormat = strings.ToLower(strings.TrimSpace(a.flags.outputFormat))
	}
	if a.outputFormat == "" {
		a.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		return err
	}

	if a.flags.projectionsPath != "" {
		a.conf.Projections.Path = a.flags.projectionsPath
	}

	logger.Debug("configuration loaded",
		zap.String("op", "cmd.setup"),
		zap.String("command", cmd.CommandPath()),
		zap.String("stateBackend", conf.State.Backend),
		zap.String("projections", conf.Projections.Path),
		zap.String("outputFormat", a.outputFormat),
	)
	return nil
}
