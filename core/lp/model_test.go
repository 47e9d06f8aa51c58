package lp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelAccumulation(t *testing.T) {
	m := New()
	x := m.AddVariable("x", 0, math.Inf(1))
	y := m.AddVariable("y", 0, 5)

	require.Equal(t, "x", m.Name(x))
	require.Equal(t, 2, m.NumVariables())

	m.AddObjective(x, 1)
	m.AddObjective(x, 2)
	require.InDelta(t, 3, m.Objective(x), 1e-12)

	lb, ub := m.Bounds(y)
	require.Zero(t, lb)
	require.InDelta(t, 5, ub, 1e-12)

	m.AddConstraint([]Term{{Var: x, Coef: 1}, {Var: y, Coef: -1}}, EQ, 0)
	require.Equal(t, 1, m.NumConstraints())
	require.Equal(t, Stats{Variables: 2, Constraints: 1}, m.Stats())
}

func TestStandardFormShapes(t *testing.T) {
	m := New()
	x := m.AddVariable("x", 0, math.Inf(1))
	y := m.AddVariable("y", 0, math.Inf(1))
	m.AddObjective(x, 2)
	m.AddObjective(y, 3)

	m.AddConstraint([]Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, LE, 10)
	m.AddConstraint([]Term{{Var: x, Coef: 1}}, GE, 1)
	m.AddConstraint([]Term{{Var: y, Coef: 2}}, EQ, 4)

	c, a, b, err := m.StandardForm()
	require.NoError(t, err)

	// Two inequalities gain one slack column each.
	rows, cols := a.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 4, cols)
	require.Equal(t, []float64{10, 1, 4}, b)
	require.Equal(t, []float64{2, 3, 0, 0}, c)

	// LE slack enters with +1, GE surplus with -1.
	require.InDelta(t, 1, a.At(0, 2), 1e-12)
	require.InDelta(t, -1, a.At(1, 3), 1e-12)
	require.Zero(t, a.At(2, 2))
	require.Zero(t, a.At(2, 3))
	require.InDelta(t, 2, a.At(2, 1), 1e-12)
}

func TestStandardFormBoundsBecomeRows(t *testing.T) {
	m := New()
	x := m.AddVariable("x", 1, 3)
	m.AddConstraint([]Term{{Var: x, Coef: 1}}, EQ, 2)

	_, a, b, err := m.StandardForm()
	require.NoError(t, err)

	// One GE row for the lower bound, one LE row for the upper bound.
	rows, cols := a.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)
	require.Equal(t, []float64{2, 1, 3}, b)
	require.InDelta(t, -1, a.At(1, 1), 1e-12)
	require.InDelta(t, 1, a.At(2, 2), 1e-12)
}

func TestStandardFormRejectsNegativeLowerBound(t *testing.T) {
	m := New()
	m.AddVariable("x", -1, 1)
	_, _, _, err := m.StandardForm()
	require.Error(t, err)
	require.Contains(t, err.Error(), "negative lower bound")
}

func TestStandardFormRepeatedTermsAccumulate(t *testing.T) {
	m := New()
	x := m.AddVariable("x", 0, math.Inf(1))
	m.AddConstraint([]Term{{Var: x, Coef: 1}, {Var: x, Coef: 2}}, EQ, 3)
	_, a, _, err := m.StandardForm()
	require.NoError(t, err)
	require.InDelta(t, 3, a.At(0, 0), 1e-12)
}
