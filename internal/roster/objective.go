package roster

import (
	"github.com/iwvelando/fantasy-f1-optimiser/internal/milp"
)

// Weights bias roster choice without entering reported points.
type Weights struct {
	// PriceChange multiplies the summed projected price change of the roster.
	PriceChange float64
	// RollTransfer rewards leaving a transfer unused (DRS Boost only).
	RollTransfer float64
}

// composeObjective sets the objective on f's model and returns it.
//
// Base points count every selected entry once plus one extra copy of the
// boosted driver per multiplier step. Each transfer over the allowance costs
// TransferPenalty points.
func composeObjective(f *formulation, w Weights, priceChangeAware bool) milp.Expr {
	var obj milp.Expr
	obj.AddExpr(basePoints(f), 1)
	obj.Add(f.penalty, -TransferPenalty)

	switch f.mode {
	case ModeDrsBoost:
		obj.AddExpr(priceChangeTerm(f), w.PriceChange)
		if f.hasRoll {
			obj.Add(f.roll, w.RollTransfer)
		}
	case ModeNormal, ModeWildcard, ModeLimitless:
		if priceChangeAware {
			obj.AddExpr(priceChangeTerm(f), w.PriceChange)
		}
	}

	f.model.Maximize(obj)
	return obj
}

func basePoints(f *formulation) milp.Expr {
	var e milp.Expr
	for i, d := range f.drivers {
		e.Add(f.driverVars[i], d.XPts)
	}
	for i, c := range f.constructors {
		e.Add(f.constructorVars[i], c.XPts)
	}
	for _, tier := range f.mode.boostTiers() {
		for i, d := range f.drivers {
			e.Add(f.boostVars[tier][i], d.XPts*tier.extraCopies())
		}
	}
	return e
}

func priceChangeTerm(f *formulation) milp.Expr {
	var e milp.Expr
	for i, d := range f.drivers {
		if d.HasPriceChange {
			e.Add(f.driverVars[i], d.PriceChange.InexactFloat64())
		}
	}
	for i, c := range f.constructors {
		if c.HasPriceChange {
			e.Add(f.constructorVars[i], c.PriceChange.InexactFloat64())
		}
	}
	return e
}
