package roster

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func driver(name string, price float64, xPts float64) ProjectionEntry {
	return ProjectionEntry{Name: name, IsDriver: true, Price: decimal.NewFromFloat(price), XPts: xPts}
}

func constructor(name string, price float64, xPts float64) ProjectionEntry {
	return ProjectionEntry{Name: name, IsConstructor: true, Price: decimal.NewFromFloat(price), XPts: xPts}
}

func withChange(e ProjectionEntry, change float64) ProjectionEntry {
	e.PriceChange = decimal.NewFromFloat(change)
	e.HasPriceChange = true
	return e
}

// smallField is a hand-written table small enough for exhaustive checks.
func smallField() []ProjectionEntry {
	return []ProjectionEntry{
		withChange(driver("VER", 30.0, 25), 0.3),
		withChange(driver("NOR", 28.0, 22), 0.2),
		withChange(driver("LEC", 20.0, 18), -0.1),
		withChange(driver("PIA", 15.0, 14), 0.1),
		withChange(driver("RUS", 12.0, 12), 0.2),
		withChange(driver("HAM", 8.0, 9), 0.0),
		withChange(driver("ALB", 6.0, 7), 0.1),
		withChange(driver("GAS", 5.0, 4), -0.2),
		withChange(constructor("MCL", 25.0, 30), 0.2),
		withChange(constructor("RBR", 20.0, 24), 0.1),
		withChange(constructor("FER", 12.0, 15), 0.3),
		withChange(constructor("WIL", 8.0, 9), -0.1),
	}
}

// generatedField builds a reproducible table of the given size with prices in
// tenths.
func generatedField(seed int64, nDrivers, nConstructors int) []ProjectionEntry {
	rng := rand.New(rand.NewSource(seed))
	var out []ProjectionEntry
	for i := 0; i < nDrivers; i++ {
		tenths := 45 + rng.Intn(250)
		e := ProjectionEntry{
			Name:           "D" + string(rune('A'+i)),
			IsDriver:       true,
			Price:          decimal.New(int64(tenths), -1),
			XPts:           float64(tenths)/10*0.8 + float64(rng.Intn(80))/10,
			PriceChange:    decimal.New(int64(rng.Intn(7)-3), -1),
			HasPriceChange: true,
		}
		out = append(out, e)
	}
	for i := 0; i < nConstructors; i++ {
		tenths := 60 + rng.Intn(240)
		e := ProjectionEntry{
			Name:           "C" + string(rune('A'+i)),
			IsConstructor:  true,
			Price:          decimal.New(int64(tenths), -1),
			XPts:           float64(tenths)/10*0.9 + float64(rng.Intn(100))/10,
			PriceChange:    decimal.New(int64(rng.Intn(7)-3), -1),
			HasPriceChange: true,
		}
		out = append(out, e)
	}
	return out
}

func combinations(n, k int, visit func([]int)) {
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			visit(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}

// bruteForceObjective enumerates every roster and returns the best objective
// value the engine should reach.
func bruteForceObjective(mode Mode, entries []ProjectionEntry, prev TeamState, costCap float64, available int, w Weights, aware bool) float64 {
	drivers, constructors := splitRoles(entries)
	prevD := nameSet(prev.Drivers)
	prevC := nameSet(prev.Constructors)
	best := math.Inf(-1)

	combinations(len(drivers), DriverSlots, func(di []int) {
		combinations(len(constructors), ConstructorSlots, func(ci []int) {
			cost, points, change := 0.0, 0.0, 0.0
			used := 0
			xs := make([]float64, 0, DriverSlots)
			for _, i := range di {
				d := drivers[i]
				cost += d.Price.InexactFloat64()
				points += d.XPts
				change += d.PriceChange.InexactFloat64()
				xs = append(xs, d.XPts)
				if _, ok := prevD[d.Name]; !ok {
					used++
				}
			}
			for _, i := range ci {
				c := constructors[i]
				cost += c.Price.InexactFloat64()
				points += c.XPts
				change += c.PriceChange.InexactFloat64()
				if _, ok := prevC[c.Name]; !ok {
					used++
				}
			}
			if cost > costCap+1e-9 {
				return
			}
			sort.Sort(sort.Reverse(sort.Float64Slice(xs)))
			if mode == ModeDrsBoost {
				points += 2*xs[0] + xs[1]
			} else {
				points += xs[0]
			}
			obj := points - TransferPenalty*math.Max(0, float64(used-available))
			if mode == ModeDrsBoost || aware {
				obj += w.PriceChange * change
			}
			if mode == ModeDrsBoost && !prev.IsFirstRound() && used < available {
				obj += math.Max(0, w.RollTransfer)
			}
			if obj > best {
				best = obj
			}
		})
	})
	return best
}

// assertValidRoster checks the invariants every returned roster must hold.
func assertValidRoster(t *testing.T, r *Result, entries []ProjectionEntry) {
	t.Helper()
	require.NotNil(t, r)
	require.Len(t, r.SelectedDrivers, DriverSlots)
	require.Len(t, r.SelectedConstructors, ConstructorSlots)
	assert.True(t, r.TotalCost.LessThanOrEqual(r.CostCap), "total cost %s exceeds cap %s", r.TotalCost, r.CostCap)

	byName := make(map[string]ProjectionEntry)
	for _, e := range entries {
		byName[e.Name] = e
	}
	for _, n := range r.SelectedDrivers {
		assert.True(t, byName[n].IsDriver, "%s selected as driver", n)
	}
	for _, n := range r.SelectedConstructors {
		assert.True(t, byName[n].IsConstructor, "%s selected as constructor", n)
	}

	selected := nameSet(r.SelectedDrivers)
	tiers := r.Mode.boostTiers()
	require.Len(t, r.Boosts, len(tiers))
	seen := make(map[string]bool)
	for _, tier := range tiers {
		name, ok := r.Boosts[tier]
		require.True(t, ok, "missing %s boost", tier)
		_, isSelected := selected[name]
		assert.True(t, isSelected, "%s boost on unselected driver %s", tier, name)
		assert.False(t, seen[name], "driver %s holds more than one boost", name)
		seen[name] = true
	}
}
