package roster

import (
	"sort"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/milp"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// extraction carries the solve context the extractor reports alongside the
// selection.
type extraction struct {
	cap       CostCap
	previous  TeamState
	available int
	notes     []string
}

// extractResult turns an optimal assignment into a Result. Points are
// recomputed from the selected entries so weighted bonuses never leak into
// BaseXPts.
func extractResult(f *formulation, sol *milp.Solution, x extraction) *Result {
	var drivers, constructors []ProjectionEntry
	for i, d := range f.drivers {
		if sol.IsSet(f.driverVars[i]) {
			drivers = append(drivers, d)
		}
	}
	for i, c := range f.constructors {
		if sol.IsSet(f.constructorVars[i]) {
			constructors = append(constructors, c)
		}
	}

	boosts, points := assignBoosts(f.mode, drivers)

	totalCost := decimal.Zero
	priceChange := decimal.Zero
	for _, e := range append(append([]ProjectionEntry{}, drivers...), constructors...) {
		points += e.XPts
		totalCost = totalCost.Add(e.Price)
		if e.HasPriceChange {
			priceChange = priceChange.Add(e.PriceChange)
		}
	}

	driverNames := names(drivers)
	constructorNames := names(constructors)
	used := countNew(driverNames, x.previous.Drivers) + countNew(constructorNames, x.previous.Constructors)
	penalty := mathutil.ClampNonNegative(float64(used - x.available))
	points -= TransferPenalty * penalty

	transfers := pairTransfers(x.previous.Drivers, driverNames)
	transfers = append(transfers, pairTransfers(x.previous.Constructors, constructorNames)...)

	return &Result{
		SolveName:            f.mode.SolveName(),
		Mode:                 f.mode,
		SelectedDrivers:      driverNames,
		SelectedConstructors: constructorNames,
		Boosts:               boosts,
		Transfers:            transfers,
		BaseXPts:             points,
		ProjectedPriceChange: priceChange,
		TransfersUsed:        used,
		PenaltyTransfers:     penalty,
		Objective:            sol.Objective,
		AvailableTransfers:   x.available,
		CostCap:              x.cap.Cap,
		TotalCost:            totalCost,
		RemainingBudget:      x.cap.Cap.Sub(totalCost),
		FirstRound:           x.previous.IsFirstRound(),
		Notes:                x.notes,
	}
}

// assignBoosts hands the mode's tiers to the selected drivers with the most
// projected points, the largest multiplier first. Equal xPts keep projection
// order. It returns the assignment and the extra points it adds.
func assignBoosts(mode Mode, drivers []ProjectionEntry) (map[BoostTier]string, float64) {
	tiers := append([]BoostTier(nil), mode.boostTiers()...)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].extraCopies() > tiers[j].extraCopies() })

	ranked := append([]ProjectionEntry(nil), drivers...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].XPts > ranked[j].XPts })

	boosts := make(map[BoostTier]string, len(tiers))
	extra := 0.0
	for i, tier := range tiers {
		if i >= len(ranked) {
			break
		}
		boosts[tier] = ranked[i].Name
		extra += ranked[i].XPts * tier.extraCopies()
	}
	return boosts, extra
}

// pairTransfers pairs the i-th removed name with the i-th added name. An
// unmatched tail on either side is dropped from the display.
func pairTransfers(previous, selected []string) []Transfer {
	prev := nameSet(previous)
	sel := nameSet(selected)

	var added, removed []string
	for _, n := range selected {
		if _, ok := prev[n]; !ok {
			added = append(added, n)
		}
	}
	for _, n := range previous {
		if _, ok := sel[n]; !ok {
			removed = append(removed, n)
		}
	}

	pairs := min(len(added), len(removed))
	transfers := make([]Transfer, 0, pairs)
	for i := 0; i < pairs; i++ {
		transfers = append(transfers, Transfer{Out: removed[i], In: added[i]})
	}
	return transfers
}

func countNew(selected, previous []string) int {
	prev := nameSet(previous)
	n := 0
	for _, s := range selected {
		if _, ok := prev[s]; !ok {
			n++
		}
	}
	return n
}

func names(entries []ProjectionEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
