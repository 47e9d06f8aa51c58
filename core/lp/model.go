// Package lp holds the abstract optimization model handed to the solver
// boundary: variables with bounds, linear constraints and a linear
// objective. It is the only mutable object during assembly and is owned
// exclusively by the assembling goroutine.
package lp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// VarID identifies a declared decision variable.
type VarID int

// Sense is the relation of a linear constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "=="
	}
}

// Term is one coefficient of a linear expression.
type Term struct {
	Var  VarID
	Coef float64
}

// Constraint is a linear relation sum(terms) sense rhs.
type Constraint struct {
	Terms []Term
	Sense Sense
	RHS   float64
}

// Stats summarizes the assembled model size.
type Stats struct {
	Variables   int
	Constraints int
}

// Model accumulates variables, constraints and the objective.
type Model struct {
	names []string
	lb    []float64
	ub    []float64
	obj   []float64
	cons  []Constraint
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// AddVariable declares a variable with the given bounds. Use math.Inf(1)
// for an unbounded upper bound. The objective coefficient starts at zero.
func (m *Model) AddVariable(name string, lb, ub float64) VarID {
	m.names = append(m.names, name)
	m.lb = append(m.lb, lb)
	m.ub = append(m.ub, ub)
	m.obj = append(m.obj, 0)
	return VarID(len(m.names) - 1)
}

// AddConstraint appends a linear constraint.
func (m *Model) AddConstraint(terms []Term, sense Sense, rhs float64) {
	m.cons = append(m.cons, Constraint{Terms: terms, Sense: sense, RHS: rhs})
}

// AddObjective accumulates c onto the objective coefficient of v.
func (m *Model) AddObjective(v VarID, c float64) {
	m.obj[v] += c
}

// Name returns the declared name of a variable.
func (m *Model) Name(v VarID) string { return m.names[v] }

// NumVariables returns the number of declared variables.
func (m *Model) NumVariables() int { return len(m.names) }

// NumConstraints returns the number of emitted constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Constraints returns the emitted constraints. Callers must not mutate.
func (m *Model) Constraints() []Constraint { return m.cons }

// Objective returns the objective coefficient of v.
func (m *Model) Objective(v VarID) float64 { return m.obj[v] }

// Bounds returns the declared bounds of v.
func (m *Model) Bounds(v VarID) (lb, ub float64) { return m.lb[v], m.ub[v] }

// Stats returns the model size.
func (m *Model) Stats() Stats {
	return Stats{Variables: len(m.names), Constraints: len(m.cons)}
}

// StandardForm converts the model into the equality standard form
// min c'x s.t. Ax = b, x >= 0 expected by the simplex solver. Inequalities
// gain a slack or surplus column, finite upper bounds and positive lower
// bounds become extra rows. The first NumVariables entries of a standard
// solution vector are the original variables.
func (m *Model) StandardForm() (c []float64, a *mat.Dense, b []float64, err error) {
	n := len(m.names)
	type row struct {
		terms []Term
		sense Sense
		rhs   float64
	}
	rows := make([]row, 0, len(m.cons)+n)
	for _, con := range m.cons {
		rows = append(rows, row{terms: con.Terms, sense: con.Sense, rhs: con.RHS})
	}
	for i := 0; i < n; i++ {
		if m.lb[i] < 0 {
			return nil, nil, nil, fmt.Errorf("variable %s: negative lower bound %v not supported", m.names[i], m.lb[i])
		}
		if m.lb[i] > 0 {
			rows = append(rows, row{terms: []Term{{Var: VarID(i), Coef: 1}}, sense: GE, rhs: m.lb[i]})
		}
		if !math.IsInf(m.ub[i], 1) {
			rows = append(rows, row{terms: []Term{{Var: VarID(i), Coef: 1}}, sense: LE, rhs: m.ub[i]})
		}
	}

	if len(rows) == 0 {
		return nil, nil, nil, fmt.Errorf("model has no constraints")
	}

	slacks := 0
	for _, r := range rows {
		if r.sense != EQ {
			slacks++
		}
	}
	cols := n + slacks
	a = mat.NewDense(len(rows), cols, nil)
	b = make([]float64, len(rows))
	c = make([]float64, cols)
	copy(c, m.obj)

	slack := n
	for i, r := range rows {
		for _, t := range r.terms {
			a.Set(i, int(t.Var), a.At(i, int(t.Var))+t.Coef)
		}
		b[i] = r.rhs
		switch r.sense {
		case LE:
			a.Set(i, slack, 1)
			slack++
		case GE:
			a.Set(i, slack, -1)
			slack++
		}
	}
	return c, a, b, nil
}
