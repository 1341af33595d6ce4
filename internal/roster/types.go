// Package roster builds and solves the fantasy roster selection problem:
// five drivers and two constructors under a cost cap, with boost assignment,
// a transfer allowance and a budget carried between rounds.
package roster

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DriverSlots is the number of drivers on every roster.
	DriverSlots = 5
	// ConstructorSlots is the number of constructors on every roster.
	ConstructorSlots = 2
	// TransferPenalty is the points hit for each transfer over the allowance.
	TransferPenalty = 10.0
	// UnlimitedTransfers stands in for an unbounded allowance on the first round.
	UnlimitedTransfers = 1000
	// RolledAllowance is the allowance after a round that left a transfer unused.
	RolledAllowance = 3
	// BaseAllowance is the allowance after a round that used every transfer.
	BaseAllowance = 2
)

// DefaultStartingBudget is the cost cap for a team with no saved state.
var DefaultStartingBudget = decimal.NewFromInt(100)

var (
	// ErrInfeasible is returned when no roster satisfies every hard constraint.
	ErrInfeasible = errors.New("no feasible roster")
	// ErrInvalidProjections is returned for a projection table that breaks
	// its own invariants.
	ErrInvalidProjections = errors.New("invalid projections")
)

// ProjectionEntry is one selectable driver or constructor.
type ProjectionEntry struct {
	Name           string          `json:"name" yaml:"name"`
	IsDriver       bool            `json:"is_driver" yaml:"is_driver"`
	IsConstructor  bool            `json:"is_constructor" yaml:"is_constructor"`
	Price          decimal.Decimal `json:"price" yaml:"price"`
	XPts           float64         `json:"xPts" yaml:"xPts"`
	PriceChange    decimal.Decimal `json:"price_change" yaml:"price_change"`
	HasPriceChange bool            `json:"-" yaml:"-"`
}

// ValidateProjections checks that names are unique and that every entry holds
// exactly one role.
func ValidateProjections(entries []ProjectionEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidProjections, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidProjections, name)
		}
		seen[name] = struct{}{}
		if e.IsDriver == e.IsConstructor {
			return fmt.Errorf("%w: %q must be exactly one of driver or constructor", ErrInvalidProjections, name)
		}
		if e.Price.IsNegative() {
			return fmt.Errorf("%w: %q has negative price %s", ErrInvalidProjections, name, e.Price)
		}
		if math.IsNaN(e.XPts) || math.IsInf(e.XPts, 0) {
			return fmt.Errorf("%w: %q has non-finite xPts", ErrInvalidProjections, name)
		}
	}
	return nil
}

// TeamState is the roster and ledger carried between rounds.
type TeamState struct {
	Drivers            []string        `json:"drivers"`
	Constructors       []string        `json:"constructors"`
	AvailableTransfers int             `json:"available_transfers"`
	RemainingBudget    decimal.Decimal `json:"remaining_budget"`
}

// FirstRoundState is the state of a team that has never been saved.
func FirstRoundState() TeamState {
	return TeamState{
		Drivers:            []string{},
		Constructors:       []string{},
		AvailableTransfers: UnlimitedTransfers,
		RemainingBudget:    DefaultStartingBudget,
	}
}

// IsFirstRound reports whether the state holds no previous roster.
func (s TeamState) IsFirstRound() bool {
	return len(s.Drivers) == 0 && len(s.Constructors) == 0
}

// Clone returns a deep copy.
func (s TeamState) Clone() TeamState {
	s.Drivers = append([]string{}, s.Drivers...)
	s.Constructors = append([]string{}, s.Constructors...)
	return s
}

// BoostTier names a points multiplier applied to one driver.
type BoostTier string

const (
	// Boost2x doubles a driver's points.
	Boost2x BoostTier = "2x"
	// Boost3x triples a driver's points.
	Boost3x BoostTier = "3x"
)

// extraCopies is how many additional copies of a driver's points a tier adds.
func (t BoostTier) extraCopies() float64 {
	if t == Boost3x {
		return 2
	}
	return 1
}

// Transfer is one displayed roster change.
type Transfer struct {
	Out string `json:"out"`
	In  string `json:"in"`
}

func (t Transfer) String() string {
	return t.Out + " > " + t.In
}

// Result is the outcome of one solve. It is never modified after the engine
// returns it, and identical inputs produce identical results.
type Result struct {
	SolveName            string               `json:"solveName"`
	Mode                 Mode                 `json:"mode"`
	SelectedDrivers      []string             `json:"selectedDrivers"`
	SelectedConstructors []string             `json:"selectedConstructors"`
	Boosts               map[BoostTier]string `json:"boosts"`
	Transfers            []Transfer           `json:"transfers"`
	BaseXPts             float64              `json:"baseXPts"`
	ProjectedPriceChange decimal.Decimal      `json:"projectedPriceChange"`
	TransfersUsed        int                  `json:"transfersUsed"`
	PenaltyTransfers     float64              `json:"penaltyTransfers"`
	Objective            float64              `json:"objective"`
	AvailableTransfers   int                  `json:"availableTransfers"`
	CostCap              decimal.Decimal      `json:"costCap"`
	TotalCost            decimal.Decimal      `json:"totalCost"`
	RemainingBudget      decimal.Decimal      `json:"remainingBudget"`
	FirstRound           bool                 `json:"firstRound"`
	Notes                []string             `json:"notes,omitempty"`
}

// TransferStrings renders the transfers as "out > in".
func (r *Result) TransferStrings() []string {
	out := make([]string, len(r.Transfers))
	for i, t := range r.Transfers {
		out[i] = t.String()
	}
	return out
}
