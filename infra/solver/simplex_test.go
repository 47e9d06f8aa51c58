package solver

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	corelp "github.com/lmeyrat/transopt/core/lp"
	coresolver "github.com/lmeyrat/transopt/core/solver"
)

func TestSolveOptimal(t *testing.T) {
	m := corelp.New()
	x := m.AddVariable("x", 0, math.Inf(1))
	y := m.AddVariable("y", 0, math.Inf(1))
	m.AddObjective(x, 2)
	m.AddObjective(y, 3)
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, corelp.GE, 4)

	sol, err := New(0, nil).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, coresolver.StatusOptimal, sol.Status)
	require.InDelta(t, 8, sol.Objective, 1e-9)
	require.InDelta(t, 4, sol.Value(x), 1e-9)
	require.InDelta(t, 0, sol.Value(y), 1e-9)
	require.Len(t, sol.Values, 2)
}

func TestSolveInfeasible(t *testing.T) {
	m := corelp.New()
	x := m.AddVariable("x", 0, math.Inf(1))
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}}, corelp.EQ, -1)

	sol, err := New(0, nil).Solve(context.Background(), m)
	require.Error(t, err)
	require.True(t, errors.Is(err, coresolver.ErrInfeasible))
	require.Equal(t, coresolver.StatusInfeasible, sol.Status)
}

func TestSolveUnbounded(t *testing.T) {
	m := corelp.New()
	x := m.AddVariable("x", 0, math.Inf(1))
	y := m.AddVariable("y", 0, math.Inf(1))
	m.AddObjective(x, -1)
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}, {Var: y, Coef: -1}}, corelp.EQ, 0)

	sol, err := New(0, nil).Solve(context.Background(), m)
	require.Error(t, err)
	require.True(t, errors.Is(err, coresolver.ErrUnbounded))
	require.Equal(t, coresolver.StatusUnbounded, sol.Status)
}

func TestSolveTimeout(t *testing.T) {
	orig := lpSolve
	defer func() { lpSolve = orig }()
	release := make(chan struct{})
	lpSolve = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
		<-release
		return 0, nil, nil
	}
	defer close(release)

	m := corelp.New()
	x := m.AddVariable("x", 0, math.Inf(1))
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}}, corelp.EQ, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	sol, err := New(0, nil).Solve(ctx, m)
	require.Error(t, err)
	require.True(t, errors.Is(err, coresolver.ErrTimeout))
	require.Equal(t, coresolver.StatusTimeout, sol.Status)
}

func TestSolvePanicRecovered(t *testing.T) {
	orig := lpSolve
	defer func() { lpSolve = orig }()
	lpSolve = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
		panic("singular basis")
	}

	m := corelp.New()
	x := m.AddVariable("x", 0, math.Inf(1))
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}}, corelp.EQ, 1)

	sol, err := New(0, nil).Solve(context.Background(), m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "singular basis")
	require.Equal(t, coresolver.StatusError, sol.Status)
}

// Variables pinned to zero by singleton equality rows never reach the
// simplex; the solution still reports them at full length.
func TestSolveEliminatesPinnedVariables(t *testing.T) {
	m := corelp.New()
	a := m.AddVariable("a", 0, math.Inf(1))
	b := m.AddVariable("b", 0, math.Inf(1))
	c := m.AddVariable("c", 0, math.Inf(1))
	m.AddObjective(c, 1)
	m.AddConstraint([]corelp.Term{{Var: a, Coef: 1}}, corelp.EQ, 0)
	// b is only pinned once a has been, so elimination must propagate.
	m.AddConstraint([]corelp.Term{{Var: b, Coef: 1}, {Var: a, Coef: -1}}, corelp.EQ, 0)
	m.AddConstraint([]corelp.Term{{Var: c, Coef: 1}}, corelp.GE, 2)

	red, remap, err := reduceZeroVars(m)
	require.NoError(t, err)
	require.Equal(t, 1, red.NumVariables())
	require.Equal(t, []int{-1, -1, 0}, remap)

	sol, err := New(0, nil).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, coresolver.StatusOptimal, sol.Status)
	require.InDelta(t, 2, sol.Objective, 1e-9)
	require.InDelta(t, 0, sol.Value(a), 1e-9)
	require.InDelta(t, 0, sol.Value(b), 1e-9)
	require.InDelta(t, 2, sol.Value(c), 1e-9)
}

func TestSolveAllVariablesPinned(t *testing.T) {
	m := corelp.New()
	x := m.AddVariable("x", 0, math.Inf(1))
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}}, corelp.EQ, 0)

	sol, err := New(0, nil).Solve(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, coresolver.StatusOptimal, sol.Status)
	require.Zero(t, sol.Objective)
	require.Equal(t, []float64{0}, sol.Values)
}

func TestSolvePinnedContradiction(t *testing.T) {
	m := corelp.New()
	x := m.AddVariable("x", 0, math.Inf(1))
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}}, corelp.EQ, 0)
	m.AddConstraint([]corelp.Term{{Var: x, Coef: 1}}, corelp.EQ, 3)

	sol, err := New(0, nil).Solve(context.Background(), m)
	require.Error(t, err)
	require.True(t, errors.Is(err, coresolver.ErrInfeasible))
	require.Equal(t, coresolver.StatusInfeasible, sol.Status)
}

func TestSolveStandardFormError(t *testing.T) {
	m := corelp.New()
	m.AddVariable("x", -1, 1)
	sol, err := New(0, nil).Solve(context.Background(), m)
	require.Error(t, err)
	require.Equal(t, coresolver.StatusError, sol.Status)
}
