// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/validation"
	"github.com/spf13/viper"
)

// ErrConfigurationMissing is returned together with a default configuration
// when the configuration file does not exist.
var ErrConfigurationMissing = errors.New("configuration file not found")

// Configuration holds all configuration for fantasy-f1-optimiser.
type Configuration struct {
	Solver      SolverConfig      `yaml:"solver" mapstructure:"solver"`
	Budget      BudgetConfig      `yaml:"budget" mapstructure:"budget"`
	State       StateConfig       `yaml:"state" mapstructure:"state"`
	Projections ProjectionsConfig `yaml:"projections" mapstructure:"projections"`
	Logging     LoggingConfig     `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig      `yaml:"output,omitempty" mapstructure:"output"`
	Server      ServerConfig      `yaml:"server,omitempty" mapstructure:"server"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// BudgetConfig holds the first-round budget.
type BudgetConfig struct {
	Starting float64 `yaml:"starting" mapstructure:"starting"`
}

// StateConfig selects where the team state lives.
type StateConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"` // file, badger, memory
	Path      string `yaml:"path" mapstructure:"path"`
	BadgerDir string `yaml:"badger_dir" mapstructure:"badger_dir"`
}

// ProjectionsConfig locates the projection table.
type ProjectionsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Configuration {
	conf := &Configuration{
		Budget:      BudgetConfig{Starting: constants.DefaultStartingBudget},
		State:       StateConfig{Backend: constants.DefaultStateBackend, Path: constants.DefaultStatePath, BadgerDir: constants.DefaultBadgerDir},
		Projections: ProjectionsConfig{Path: constants.DefaultProjectionsPath},
		Output:      OutputConfig{Format: constants.OutputFormatPretty},
		Server:      ServerConfig{Address: constants.DefaultServerAddress},
	}
	conf.Solver.Normalize()
	return conf
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solver.price_change_weight", 0.0)
	v.SetDefault("solver.roll_transfer_weight", 0.0)
	v.SetDefault("solver.price_change_aware", false)
	v.SetDefault("solver.timeout", constants.DefaultSolverTimeout)
	v.SetDefault("solver.max_nodes", constants.DefaultMaxNodes)
	v.SetDefault("solver.concurrency", 0)
	v.SetDefault("budget.starting", constants.DefaultStartingBudget)
	v.SetDefault("state.backend", constants.DefaultStateBackend)
	v.SetDefault("state.path", constants.DefaultStatePath)
	v.SetDefault("state.badger_dir", constants.DefaultBadgerDir)
	v.SetDefault("projections.path", constants.DefaultProjectionsPath)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", "")
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with F1OPT_ override
// file values. A missing file yields the defaults (still subject to
// environment overrides) together with ErrConfigurationMissing.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath)

	var missing bool
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
		missing = true
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	if missing {
		return &configuration, fmt.Errorf("%w: %s", ErrConfigurationMissing, configPath)
	}
	return &configuration, nil
}

// Validate normalizes the configuration and reports the first unsupported
// setting.
func (c *Configuration) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if err := c.Server.Normalize(); err != nil {
		return err
	}
	if c.Budget.Starting < 0 {
		return fmt.Errorf("starting budget %.1f cannot be negative", c.Budget.Starting)
	}

	c.State.Backend = strings.ToLower(strings.TrimSpace(c.State.Backend))
	if c.State.Backend == "" {
		c.State.Backend = constants.DefaultStateBackend
	}
	switch c.State.Backend {
	case "file":
		if strings.TrimSpace(c.State.Path) == "" {
			return fmt.Errorf("state backend file requires state.path")
		}
	case "badger":
		if strings.TrimSpace(c.State.BadgerDir) == "" {
			return fmt.Errorf("state backend badger requires state.badger_dir")
		}
	case "memory":
	default:
		return fmt.Errorf("state backend %q is not supported", c.State.Backend)
	}

	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	return nil
}
