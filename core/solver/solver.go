// Package solver defines the boundary to the external optimization solver.
// The core emits an abstract model and reads back variable values or a
// terminal status; no solver-specific tuning leaks into this contract.
package solver

import (
	"context"
	"errors"

	"github.com/lmeyrat/transopt/core/lp"
)

// Status is the terminal outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusTimeout
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// Terminal statuses are reported upward, never retried.
var (
	ErrInfeasible = errors.New("model is infeasible")
	ErrUnbounded  = errors.New("model is unbounded")
	ErrTimeout    = errors.New("solve abandoned on timeout")
)

// Solution carries the outcome of a solve. Values is indexed by lp.VarID
// and only valid when Status is StatusOptimal.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Value returns the solved value of a variable.
func (s Solution) Value(v lp.VarID) float64 { return s.Values[v] }

// Solver solves an assembled model. Implementations must honor the context
// deadline by abandoning the solve, never by returning a partial model
// state.
type Solver interface {
	Solve(ctx context.Context, m *lp.Model) (Solution, error)
}
