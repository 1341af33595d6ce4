package roster

import (
	"github.com/shopspring/decimal"
)

// CostCap is the spending ceiling for a round and how it was derived.
type CostCap struct {
	TeamValue       decimal.Decimal
	RemainingBudget decimal.Decimal
	Cap             decimal.Decimal
	// Missing lists previous roster names absent from the projections. They
	// count as not owned.
	Missing []string
}

// ComputeCostCap values the previous roster at current prices and adds the
// banked budget. A team with no previous roster gets the starting budget.
func ComputeCostCap(prev TeamState, entries []ProjectionEntry, startingBudget decimal.Decimal) CostCap {
	if prev.IsFirstRound() {
		return CostCap{
			TeamValue:       decimal.Zero,
			RemainingBudget: startingBudget,
			Cap:             startingBudget,
		}
	}

	drivers := make(map[string]decimal.Decimal)
	constructors := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.IsDriver {
			drivers[e.Name] = e.Price
		} else if e.IsConstructor {
			constructors[e.Name] = e.Price
		}
	}

	value := decimal.Zero
	var missing []string
	for _, name := range prev.Drivers {
		if price, ok := drivers[name]; ok {
			value = value.Add(price)
		} else {
			missing = append(missing, name)
		}
	}
	for _, name := range prev.Constructors {
		if price, ok := constructors[name]; ok {
			value = value.Add(price)
		} else {
			missing = append(missing, name)
		}
	}

	return CostCap{
		TeamValue:       value,
		RemainingBudget: prev.RemainingBudget,
		Cap:             value.Add(prev.RemainingBudget),
		Missing:         missing,
	}
}
