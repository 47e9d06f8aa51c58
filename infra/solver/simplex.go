// Package solver adapts the gonum simplex implementation to the core
// solver boundary.
package solver

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	corelp "github.com/lmeyrat/transopt/core/lp"
	"github.com/lmeyrat/transopt/core/logger"
	coresolver "github.com/lmeyrat/transopt/core/solver"
)

// Simplex solves assembled models with gonum's dense simplex.
type Simplex struct {
	// Tol is the convergence tolerance passed to the simplex. Zero selects
	// the gonum default.
	Tol float64
	Log logger.Logger
}

// New returns a Simplex solver with the given tolerance.
func New(tol float64, log logger.Logger) *Simplex {
	return &Simplex{Tol: tol, Log: log}
}

type solveResult struct {
	opt float64
	x   []float64
	err error
}

// lpSolve points to the function used to run the simplex. It can be
// overridden in tests to simulate solver failures.
var lpSolve = func(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// Solve strips zero-pinned variables, converts the remaining model to
// standard form and runs the simplex in a separate goroutine so the context
// deadline can abandon it. Cancellation reports the timeout status; the
// computation is discarded, never rolled back into a partial model. A panic
// inside the simplex surfaces as an error, not a crash.
func (s *Simplex) Solve(ctx context.Context, m *corelp.Model) (coresolver.Solution, error) {
	red, remap, err := reduceZeroVars(m)
	if err != nil {
		if errors.Is(err, coresolver.ErrInfeasible) {
			return coresolver.Solution{Status: coresolver.StatusInfeasible}, err
		}
		return coresolver.Solution{Status: coresolver.StatusError}, err
	}
	if red.NumVariables() == 0 {
		return coresolver.Solution{
			Status: coresolver.StatusOptimal,
			Values: make([]float64, m.NumVariables()),
		}, nil
	}

	c, a, b, err := red.StandardForm()
	if err != nil {
		return coresolver.Solution{Status: coresolver.StatusError}, err
	}
	rows, cols := a.Dims()
	if s.Log != nil {
		s.Log.Debugw("solving", map[string]any{
			"rows": rows, "cols": cols, "pinned": m.NumVariables() - red.NumVariables(),
		})
	}

	ch := make(chan solveResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- solveResult{err: fmt.Errorf("simplex: %v", r)}
			}
		}()
		opt, x, err := lpSolve(c, a, b, s.Tol)
		ch <- solveResult{opt: opt, x: x, err: err}
	}()

	select {
	case <-ctx.Done():
		return coresolver.Solution{Status: coresolver.StatusTimeout}, coresolver.ErrTimeout
	case res := <-ch:
		if res.err != nil {
			switch {
			case errors.Is(res.err, lp.ErrInfeasible):
				return coresolver.Solution{Status: coresolver.StatusInfeasible}, coresolver.ErrInfeasible
			case errors.Is(res.err, lp.ErrUnbounded):
				return coresolver.Solution{Status: coresolver.StatusUnbounded}, coresolver.ErrUnbounded
			default:
				return coresolver.Solution{Status: coresolver.StatusError}, res.err
			}
		}
		values := make([]float64, m.NumVariables())
		for i, ni := range remap {
			if ni >= 0 {
				values[i] = res.x[ni]
			}
		}
		return coresolver.Solution{
			Status:    coresolver.StatusOptimal,
			Objective: res.opt,
			Values:    values,
		}, nil
	}
}
