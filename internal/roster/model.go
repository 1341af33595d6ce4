package roster

import (
	"fmt"
	"math"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/milp"
	"github.com/shopspring/decimal"
)

// rollBigM switches the roll condition off when roll_transfer is 0. It must
// exceed the largest possible transfer count.
//
// With it the roll is earned whenever fewer transfers are used than allowed,
// so one transfer out of two still rolls. The older row
// roll <= 1 - transfers/available only let an unused allowance roll, and
// left the roll free when the allowance was 1.
const rollBigM = DriverSlots + ConstructorSlots + 1

var posInf = math.Inf(1)

// modelInput is everything the builder needs for one formulation.
type modelInput struct {
	mode         Mode
	drivers      []ProjectionEntry
	constructors []ProjectionEntry
	cap          decimal.Decimal
	previous     TeamState
	available    int
}

// formulation is a built model together with the handles the objective
// composer and result extractor need.
type formulation struct {
	mode         Mode
	model        *milp.Model
	drivers      []ProjectionEntry
	constructors []ProjectionEntry

	driverVars      []milp.Var
	constructorVars []milp.Var
	boostVars       map[BoostTier][]milp.Var
	penalty         milp.Var
	roll            milp.Var
	hasRoll         bool
	transfers       milp.Expr
}

// splitRoles partitions entries by role, preserving input order.
func splitRoles(entries []ProjectionEntry) (drivers, constructors []ProjectionEntry) {
	for _, e := range entries {
		switch {
		case e.IsDriver:
			drivers = append(drivers, e)
		case e.IsConstructor:
			constructors = append(constructors, e)
		}
	}
	return drivers, constructors
}

// buildModel declares the decision variables and hard constraints for a mode.
func buildModel(in modelInput) (*formulation, error) {
	if len(in.drivers) < DriverSlots {
		return nil, fmt.Errorf("%w: %d drivers available, %d required", ErrInfeasible, len(in.drivers), DriverSlots)
	}
	if len(in.constructors) < ConstructorSlots {
		return nil, fmt.Errorf("%w: %d constructors available, %d required", ErrInfeasible, len(in.constructors), ConstructorSlots)
	}

	f := &formulation{
		mode:         in.mode,
		model:        milp.NewModel("fantasy_f1_" + in.mode.String()),
		drivers:      in.drivers,
		constructors: in.constructors,
		boostVars:    make(map[BoostTier][]milp.Var),
	}
	m := f.model

	prevDrivers := nameSet(in.previous.Drivers)
	prevConstructors := nameSet(in.previous.Constructors)

	var driverCount, constructorCount, cost milp.Expr
	for _, d := range in.drivers {
		v := m.Binary("driver_" + d.Name)
		f.driverVars = append(f.driverVars, v)
		driverCount.Add(v, 1)
		cost.Add(v, d.Price.InexactFloat64())
		if _, owned := prevDrivers[d.Name]; !owned {
			f.transfers.Add(v, 1)
		}
	}
	for _, c := range in.constructors {
		v := m.Binary("constructor_" + c.Name)
		f.constructorVars = append(f.constructorVars, v)
		constructorCount.Add(v, 1)
		cost.Add(v, c.Price.InexactFloat64())
		if _, owned := prevConstructors[c.Name]; !owned {
			f.transfers.Add(v, 1)
		}
	}

	m.Constrain("exactly_5_drivers", driverCount, milp.Equal, DriverSlots)
	m.Constrain("exactly_2_constructors", constructorCount, milp.Equal, ConstructorSlots)
	m.Constrain("cost_cap", cost, milp.LessEqual, in.cap.InexactFloat64())

	switch in.mode {
	case ModeNormal, ModeWildcard, ModeLimitless:
		boost := f.declareBoostTier(Boost2x)
		for i, d := range in.drivers {
			var link milp.Expr
			link.Add(boost[i], 1)
			link.Add(f.driverVars[i], -1)
			m.Constrain("boost_only_if_selected_"+d.Name, link, milp.LessEqual, 0)
		}
	case ModeDrsBoost:
		boost2x := f.declareBoostTier(Boost2x)
		boost3x := f.declareBoostTier(Boost3x)
		// One row covers "boost only if selected" and "never both boosts on
		// one driver".
		for i, d := range in.drivers {
			var link milp.Expr
			link.Add(boost2x[i], 1)
			link.Add(boost3x[i], 1)
			link.Add(f.driverVars[i], -1)
			m.Constrain("boosts_only_if_selected_"+d.Name, link, milp.LessEqual, 0)
		}
	default:
		return nil, fmt.Errorf("unsupported solve mode %v", in.mode)
	}

	f.penalty = m.Continuous("penalty_transfers", posInf)
	excess := milp.Expr{}
	excess.AddExpr(f.transfers, 1)
	excess.Add(f.penalty, -1)
	m.Constrain("penalty_transfers", excess, milp.LessEqual, float64(in.available))

	if in.mode == ModeDrsBoost && !in.previous.IsFirstRound() {
		f.roll = m.Binary("roll_transfer")
		f.hasRoll = true
		// roll_transfer = 1 only when fewer transfers are used than allowed.
		cond := milp.Expr{}
		cond.AddExpr(f.transfers, 1)
		cond.Add(f.roll, rollBigM)
		m.Constrain("roll_transfer_condition", cond, milp.LessEqual, float64(in.available-1+rollBigM))
	}

	return f, nil
}

// declareBoostTier adds one boost variable per driver and the row that hands
// the tier out exactly once.
//
// The boost rows pair each tier with each driver like a transportation
// problem, so once the driver selection is integral the best boost placement
// is integral too. Boosts are therefore continuous and the search only
// branches on selections.
func (f *formulation) declareBoostTier(tier BoostTier) []milp.Var {
	vars := make([]milp.Var, len(f.drivers))
	var count milp.Expr
	for i, d := range f.drivers {
		vars[i] = f.model.Continuous("boost"+string(tier)+"_"+d.Name, 1)
		count.Add(vars[i], 1)
	}
	f.model.Constrain("one_"+string(tier)+"_boost", count, milp.Equal, 1)
	f.boostVars[tier] = vars
	return vars
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
