package milp

import (
	"context"
	"errors"
	"fmt"
)

// ErrSolver marks a search that ended without a verdict: a timeout, a
// cancelled context, the node limit, or a numerical failure in a relaxation.
var ErrSolver = errors.New("milp: solver error")

// Status is the terminal state of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Solution is the outcome of a solve. Values are only meaningful when Status
// is StatusOptimal.
type Solution struct {
	Status    Status
	Objective float64
	Nodes     int
	values    []float64
}

// Value returns the assignment of v, or 0 when v is unknown or no optimum
// was found.
func (s *Solution) Value(v Var) float64 {
	if s == nil || int(v) < 0 || int(v) >= len(s.values) {
		return 0
	}
	return s.values[v]
}

// IsSet reports whether a binary variable was assigned 1.
func (s *Solution) IsSet(v Var) bool {
	return s.Value(v) > 0.5
}

// Values returns a copy of the full assignment.
func (s *Solution) Values() []float64 {
	if s == nil {
		return nil
	}
	return append([]float64(nil), s.values...)
}

// Solver searches a model for an optimal assignment.
//
// Implementations return a Solution for every call. Infeasible models yield
// StatusInfeasible with a nil error; failures yield StatusError together with
// an error wrapping ErrSolver.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}
