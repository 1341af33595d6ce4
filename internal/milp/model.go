// Package milp defines a small mixed-integer linear program model and the
// solver adapter used to search it.
//
// Models hold binary and non-negative continuous variables, linear
// constraints and a linear objective to maximize. The search itself lives in
// BranchAndBound. Node relaxations run on a bounded-variable simplex, with
// gonum's simplex as the fallback for relaxations it cannot settle.
package milp

import (
	"fmt"
	"math"
)

// Var is a handle to a variable owned by a Model.
type Var int

// Kind classifies a variable's domain.
type Kind int

const (
	// Binary variables take the values 0 or 1.
	Binary Kind = iota
	// Continuous variables take any value in [0, upper].
	Continuous
)

// Sense is the comparison used by a constraint.
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Term is a single coefficient-variable product.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression: the sum of its terms plus a constant.
type Expr struct {
	Terms    []Term
	Constant float64
}

// Add appends coef*v to the expression.
func (e *Expr) Add(v Var, coef float64) {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
}

// AddExpr appends scale*other to the expression.
func (e *Expr) AddExpr(other Expr, scale float64) {
	for _, t := range other.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coef: t.Coef * scale})
	}
	e.Constant += other.Constant * scale
}

// AddConstant shifts the expression by c.
func (e *Expr) AddConstant(c float64) {
	e.Constant += c
}

// Eval evaluates the expression against a full assignment.
func (e Expr) Eval(values []float64) float64 {
	total := e.Constant
	for _, t := range e.Terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

type variable struct {
	name  string
	kind  Kind
	upper float64
}

type constraint struct {
	name  string
	expr  Expr
	sense Sense
	rhs   float64
}

// Model is a maximization problem over binary and continuous variables.
type Model struct {
	Name        string
	vars        []variable
	constraints []constraint
	objective   Expr
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// Binary adds a 0/1 variable.
func (m *Model) Binary(name string) Var {
	m.vars = append(m.vars, variable{name: name, kind: Binary, upper: 1})
	return Var(len(m.vars) - 1)
}

// Continuous adds a variable bounded to [0, upper]. Use math.Inf(1) for an
// unbounded variable.
func (m *Model) Continuous(name string, upper float64) Var {
	m.vars = append(m.vars, variable{name: name, kind: Continuous, upper: upper})
	return Var(len(m.vars) - 1)
}

// Constrain adds expr <sense> rhs.
func (m *Model) Constrain(name string, expr Expr, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, constraint{name: name, expr: expr, sense: sense, rhs: rhs})
}

// Maximize sets the objective.
func (m *Model) Maximize(expr Expr) {
	m.objective = expr
}

// Objective returns the objective expression.
func (m *Model) Objective() Expr {
	return m.objective
}

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumConstraints returns the number of explicit constraints, excluding
// variable bounds.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// VarName returns the name a variable was declared with.
func (m *Model) VarName(v Var) string {
	if int(v) < 0 || int(v) >= len(m.vars) {
		return fmt.Sprintf("var(%d)", int(v))
	}
	return m.vars[v].name
}

// ConstraintNames lists constraint names in declaration order.
func (m *Model) ConstraintNames() []string {
	names := make([]string, len(m.constraints))
	for i, c := range m.constraints {
		names[i] = c.name
	}
	return names
}

// validate checks that every expression references a declared variable.
func (m *Model) validate() error {
	check := func(where string, e Expr) error {
		for _, t := range e.Terms {
			if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
				return fmt.Errorf("%s references unknown variable %d", where, int(t.Var))
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("%s has non-finite coefficient on %s", where, m.vars[t.Var].name)
			}
		}
		return nil
	}
	for _, c := range m.constraints {
		if err := check("constraint "+c.name, c.expr); err != nil {
			return err
		}
		if math.IsNaN(c.rhs) || math.IsInf(c.rhs, 0) {
			return fmt.Errorf("constraint %s has non-finite right-hand side", c.name)
		}
	}
	for _, v := range m.vars {
		if v.upper < 0 {
			return fmt.Errorf("variable %s has negative upper bound", v.name)
		}
	}
	return check("objective", m.objective)
}
