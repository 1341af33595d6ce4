package milp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	feasibilityTolerance = 1e-9
	simplexTolerance     = 1e-10
)

var errNodeInfeasible = errors.New("milp: node infeasible")

type stdRow struct {
	coefs []float64
	slack float64
	rhs   float64
}

// relax solves the linear relaxation of m with the variables in fixed pinned
// to their values. NaN entries in fixed are free. The returned slice is a
// full assignment, fixed variables included.
//
// The bounded simplex handles the relaxation first. A relaxation it cannot
// settle within its iteration limit is retried through gonum's simplex.
func relax(m *Model, fixed []float64) ([]float64, error) {
	s, err := newBoundedSimplex(m, fixed)
	if err != nil {
		return nil, err
	}
	objective := make([]float64, len(m.vars))
	for _, t := range m.objective.Terms {
		objective[t.Var] += t.Coef
	}
	x, err := s.solve(objective, len(m.vars))
	if errors.Is(err, errIterationLimit) {
		return relaxStandardForm(m, fixed)
	}
	return x, err
}

// relaxStandardForm solves the same relaxation through lp.Simplex. The model
// is rewritten into the standard form it expects (minimize cᵀx, Ax = b,
// x ≥ 0): fixed variables are substituted out, inequalities and finite upper
// bounds receive their own slack column, rows left without a free variable
// are checked directly and dropped, and variables that appear in no remaining
// row are held at zero.
func relaxStandardForm(m *Model, fixed []float64) ([]float64, error) {
	n := len(m.vars)
	free := make([]int, n)
	nFree := 0
	for i := range m.vars {
		if math.IsNaN(fixed[i]) {
			free[i] = nFree
			nFree++
		} else {
			free[i] = -1
		}
	}

	rows := make([]stdRow, 0, len(m.constraints)+nFree)
	for _, c := range m.constraints {
		coefs := make([]float64, nFree)
		rhs := c.rhs - c.expr.Constant
		for _, t := range c.expr.Terms {
			if j := free[t.Var]; j >= 0 {
				coefs[j] += t.Coef
			} else {
				rhs -= t.Coef * fixed[t.Var]
			}
		}

		if allZero(coefs) {
			if !satisfied(c.sense, rhs) {
				return nil, errNodeInfeasible
			}
			continue
		}

		row := stdRow{coefs: coefs, rhs: rhs}
		switch c.sense {
		case LessEqual:
			row.slack = 1
		case GreaterEqual:
			row.slack = -1
		case Equal:
		default:
			return nil, fmt.Errorf("constraint %s has unknown sense %v", c.name, c.sense)
		}
		rows = append(rows, row)
	}

	for i, v := range m.vars {
		j := free[i]
		if j < 0 || math.IsInf(v.upper, 1) {
			continue
		}
		coefs := make([]float64, nFree)
		coefs[j] = 1
		rows = append(rows, stdRow{coefs: coefs, slack: 1, rhs: v.upper})
	}

	objective := make([]float64, nFree)
	for _, t := range m.objective.Terms {
		if j := free[t.Var]; j >= 0 {
			objective[j] += t.Coef
		}
	}

	// Columns referenced by at least one row enter the matrix.
	active := make([]int, 0, nFree)
	column := make([]int, nFree)
	for j := 0; j < nFree; j++ {
		column[j] = -1
		for _, r := range rows {
			if r.coefs[j] != 0 {
				column[j] = len(active)
				active = append(active, j)
				break
			}
		}
		if column[j] < 0 && objective[j] > feasibilityTolerance {
			return nil, errUnbounded
		}
	}

	x := make([]float64, n)
	for i := range m.vars {
		if free[i] < 0 {
			x[i] = fixed[i]
		}
	}
	if len(rows) == 0 {
		return x, nil
	}

	slacks := 0
	for _, r := range rows {
		if r.slack != 0 {
			slacks++
		}
	}
	cols := len(active) + slacks
	if cols < len(rows) {
		return nil, fmt.Errorf("relaxation has %d rows but only %d columns", len(rows), cols)
	}

	a := mat.NewDense(len(rows), cols, nil)
	b := make([]float64, len(rows))
	slackCol := len(active)
	for r, row := range rows {
		sign := 1.0
		if row.rhs < 0 {
			sign = -1
		}
		for k, j := range active {
			if row.coefs[j] != 0 {
				a.Set(r, k, sign*row.coefs[j])
			}
		}
		if row.slack != 0 {
			a.Set(r, slackCol, sign*row.slack)
			slackCol++
		}
		b[r] = sign * row.rhs
	}

	// lp.Simplex minimizes, the model maximizes.
	c := make([]float64, cols)
	for k, j := range active {
		c[k] = -objective[j]
	}

	opt, err := simplex(c, a, b)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, errNodeInfeasible
		}
		return nil, err
	}

	for i := range m.vars {
		j := free[i]
		if j < 0 {
			continue
		}
		if k := column[j]; k >= 0 {
			x[i] = opt[k]
		}
	}
	return x, nil
}

func simplex(c []float64, a mat.Matrix, b []float64) (x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplex panicked: %v", r)
		}
	}()
	_, x, err = lp.Simplex(c, a, b, simplexTolerance, nil)
	return x, err
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

func satisfied(sense Sense, rhs float64) bool {
	switch sense {
	case LessEqual:
		return rhs >= -feasibilityTolerance
	case GreaterEqual:
		return rhs <= feasibilityTolerance
	default:
		return math.Abs(rhs) <= feasibilityTolerance
	}
}
