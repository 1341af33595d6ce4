package milp

import (
	"errors"
	"fmt"
	"math"
)

const (
	pivotTolerance      = 1e-9
	optimalityTolerance = 1e-9
	phaseOneTolerance   = 1e-7
)

var (
	errIterationLimit = errors.New("milp: simplex iteration limit reached")
	errUnbounded      = errors.New("milp: relaxation is unbounded")
)

// boundedSimplex is a dense-tableau primal simplex over variables with
// explicit lower and upper bounds. Bounds never become rows, so a node
// relaxation carries one row per model constraint.
//
// Columns are laid out as the model's variables, then one slack per row,
// then one artificial per row. tab holds B⁻¹A and every non-basic column sits
// at one of its bounds.
type boundedSimplex struct {
	rows, cols int
	tab        [][]float64
	lower      []float64
	upper      []float64
	x          []float64
	basis      []int
	rowOf      []int
	reduced    []float64
	maxIter    int
}

// newBoundedSimplex builds the phase-one tableau for m with the variables in
// fixed pinned. NaN entries in fixed are free.
func newBoundedSimplex(m *Model, fixed []float64) (*boundedSimplex, error) {
	nVars := len(m.vars)
	rows := len(m.constraints)
	cols := nVars + 2*rows
	s := &boundedSimplex{
		rows:    rows,
		cols:    cols,
		tab:     make([][]float64, rows),
		lower:   make([]float64, cols),
		upper:   make([]float64, cols),
		x:       make([]float64, cols),
		basis:   make([]int, rows),
		rowOf:   make([]int, cols),
		reduced: make([]float64, cols),
		maxIter: 50*(rows+cols) + 100,
	}
	for j := range s.rowOf {
		s.rowOf[j] = -1
	}

	for j, v := range m.vars {
		if math.IsNaN(fixed[j]) {
			s.lower[j], s.upper[j] = 0, v.upper
		} else {
			s.lower[j], s.upper[j] = fixed[j], fixed[j]
		}
		s.x[j] = s.lower[j]
	}

	for i, c := range m.constraints {
		row := make([]float64, cols)
		rhs := c.rhs - c.expr.Constant
		for _, t := range c.expr.Terms {
			row[t.Var] += t.Coef
		}
		residual := rhs
		for j := 0; j < nVars; j++ {
			residual -= row[j] * s.x[j]
		}

		slack, art := nVars+i, nVars+rows+i
		row[slack] = 1
		switch c.sense {
		case LessEqual:
			s.lower[slack], s.upper[slack] = 0, math.Inf(1)
		case GreaterEqual:
			s.lower[slack], s.upper[slack] = math.Inf(-1), 0
		case Equal:
			s.lower[slack], s.upper[slack] = 0, 0
		default:
			return nil, fmt.Errorf("constraint %s has unknown sense %v", c.name, c.sense)
		}

		if residual >= s.lower[slack]-feasibilityTolerance && residual <= s.upper[slack]+feasibilityTolerance {
			s.x[slack] = residual
			s.lower[art], s.upper[art] = 0, 0
			s.setBasic(i, slack)
			s.tab[i] = row
			continue
		}

		// The slack rests on its nearest bound and the artificial absorbs
		// the rest. Rows are negated so the basic artificial has +1.
		s.x[slack] = math.Max(s.lower[slack], math.Min(s.upper[slack], residual))
		gap := residual - s.x[slack]
		if gap < 0 {
			for j := range row {
				row[j] = -row[j]
			}
		}
		row[art] = 1
		s.lower[art], s.upper[art] = 0, math.Inf(1)
		s.x[art] = math.Abs(gap)
		s.setBasic(i, art)
		s.tab[i] = row
	}
	return s, nil
}

func (s *boundedSimplex) setBasic(row, col int) {
	s.basis[row] = col
	s.rowOf[col] = row
}

// solve runs both phases and returns the values of the first n columns.
func (s *boundedSimplex) solve(objective []float64, n int) ([]float64, error) {
	artificial := make([]float64, s.cols)
	needPhaseOne := false
	for j := s.cols - s.rows; j < s.cols; j++ {
		artificial[j] = -1
		if s.x[j] > 0 {
			needPhaseOne = true
		}
	}

	if needPhaseOne {
		if err := s.iterate(artificial); err != nil {
			return nil, err
		}
		infeasibility := 0.0
		for j := s.cols - s.rows; j < s.cols; j++ {
			infeasibility += s.x[j]
		}
		if infeasibility > phaseOneTolerance {
			return nil, errNodeInfeasible
		}
	}
	for j := s.cols - s.rows; j < s.cols; j++ {
		s.lower[j], s.upper[j] = 0, 0
		s.x[j] = 0
	}

	cost := make([]float64, s.cols)
	copy(cost, objective)
	if err := s.iterate(cost); err != nil {
		return nil, err
	}
	return append([]float64(nil), s.x[:n]...), nil
}

// iterate maximizes cost·x from the current basis. Entering columns follow
// the largest reduced cost until a run of degenerate pivots, after which the
// lowest eligible index is taken to rule out cycling.
func (s *boundedSimplex) iterate(cost []float64) error {
	s.price(cost)

	bland := false
	degenerate := 0
	for iter := 0; ; iter++ {
		if iter >= s.maxIter {
			return errIterationLimit
		}

		q, dir := s.entering(bland)
		if q < 0 {
			return nil
		}

		step := s.upper[q] - s.lower[q]
		leave := -1
		leaveToUpper := false
		for i := 0; i < s.rows; i++ {
			alpha := s.tab[i][q]
			if math.Abs(alpha) < pivotTolerance {
				continue
			}
			j := s.basis[i]
			delta := -dir * alpha
			var t float64
			var toUpper bool
			if delta < 0 {
				if math.IsInf(s.lower[j], -1) {
					continue
				}
				t = (s.x[j] - s.lower[j]) / -delta
			} else {
				if math.IsInf(s.upper[j], 1) {
					continue
				}
				t = (s.upper[j] - s.x[j]) / delta
				toUpper = true
			}
			if t < 0 {
				t = 0
			}
			if t < step-pivotTolerance || (leave >= 0 && t <= step+pivotTolerance && j < s.basis[leave]) {
				step, leave, leaveToUpper = t, i, toUpper
			}
		}
		if math.IsInf(step, 1) {
			return errUnbounded
		}

		if step <= pivotTolerance {
			degenerate++
			if degenerate > s.rows+1 {
				bland = true
			}
		} else {
			degenerate = 0
		}

		s.x[q] += dir * step
		for i := 0; i < s.rows; i++ {
			if a := s.tab[i][q]; a != 0 {
				s.x[s.basis[i]] -= dir * a * step
			}
		}

		if leave < 0 {
			// Bound flip: q moved across its whole range.
			if dir > 0 {
				s.x[q] = s.upper[q]
			} else {
				s.x[q] = s.lower[q]
			}
			continue
		}

		out := s.basis[leave]
		if leaveToUpper {
			s.x[out] = s.upper[out]
		} else {
			s.x[out] = s.lower[out]
		}
		s.pivot(leave, q)
		s.rowOf[out] = -1
		s.setBasic(leave, q)
	}
}

// price recomputes the reduced costs of every column for cost.
func (s *boundedSimplex) price(cost []float64) {
	copy(s.reduced, cost)
	for i := 0; i < s.rows; i++ {
		cb := cost[s.basis[i]]
		if cb == 0 {
			continue
		}
		for j, a := range s.tab[i] {
			s.reduced[j] -= cb * a
		}
	}
}

// entering picks a non-basic column whose move improves the objective, and
// the direction it moves in.
func (s *boundedSimplex) entering(bland bool) (int, float64) {
	best, dir := -1, 0.0
	bestScore := 0.0
	for j := 0; j < s.cols; j++ {
		if s.rowOf[j] >= 0 || s.upper[j]-s.lower[j] <= pivotTolerance {
			continue
		}
		d := s.reduced[j]
		var move float64
		switch {
		case d > optimalityTolerance && s.x[j] < s.upper[j]-pivotTolerance:
			move = 1
		case d < -optimalityTolerance && s.x[j] > s.lower[j]+pivotTolerance:
			move = -1
		default:
			continue
		}
		if bland {
			return j, move
		}
		if score := math.Abs(d); score > bestScore {
			best, dir, bestScore = j, move, score
		}
	}
	return best, dir
}

func (s *boundedSimplex) pivot(row, col int) {
	pr := s.tab[row]
	inv := 1 / pr[col]
	for j := range pr {
		pr[j] *= inv
	}
	pr[col] = 1

	for i := 0; i < s.rows; i++ {
		if i == row {
			continue
		}
		r := s.tab[i]
		f := r[col]
		if f == 0 {
			continue
		}
		for j, a := range pr {
			if a != 0 {
				r[j] -= f * a
			}
		}
		r[col] = 0
	}

	if f := s.reduced[col]; f != 0 {
		for j, a := range pr {
			if a != 0 {
				s.reduced[j] -= f * a
			}
		}
		s.reduced[col] = 0
	}
}
