package config

import (
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
)

const (
	defaultSolverTimeout = 30 * time.Second
	maxSolverWeight      = 1000.0
)

// SolverConfig tunes the objective weights and the search limits.
type SolverConfig struct {
	PriceChangeWeight  float64       `yaml:"price_change_weight" mapstructure:"price_change_weight"`
	RollTransferWeight float64       `yaml:"roll_transfer_weight" mapstructure:"roll_transfer_weight"`
	PriceChangeAware   bool          `yaml:"price_change_aware" mapstructure:"price_change_aware"`
	Timeout            time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxNodes           int           `yaml:"max_nodes" mapstructure:"max_nodes"`
	// Concurrency bounds parallel mode solves during a comparison. Zero runs
	// every mode at once.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// Normalize ensures defaults are applied before validation.
func (s *SolverConfig) Normalize() {
	if s == nil {
		return
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultSolverTimeout
	}
	if s.MaxNodes <= 0 {
		s.MaxNodes = constants.DefaultMaxNodes
	}
	if s.Concurrency < 0 {
		s.Concurrency = 0
	}
}

// Validate returns an error when the solver configuration is unsupported.
func (s *SolverConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("solver configuration cannot be nil")
	}

	s.Normalize()

	for name, w := range map[string]float64{
		"price_change_weight":  s.PriceChangeWeight,
		"roll_transfer_weight": s.RollTransferWeight,
	} {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("solver %s must be finite", name)
		}
		if math.Abs(w) > maxSolverWeight {
			return fmt.Errorf("solver %s %.2f exceeds the supported magnitude %.0f", name, w, maxSolverWeight)
		}
	}
	if s.RollTransferWeight < 0 {
		return fmt.Errorf("solver roll_transfer_weight %.2f cannot be negative", s.RollTransferWeight)
	}
	return nil
}
